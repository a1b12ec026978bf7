package server

import (
	"github.com/gin-gonic/gin"
	ticketdomain "github.com/voltmesh/gridadmin/internal/ticket/domain"
)

func (s *Server) createTicket(c *gin.Context) {
	var req ticketdomain.CreateRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := s.ticketSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, resp)
}

func (s *Server) listTickets(c *gin.Context) {
	resp, err := s.ticketSvc.List(c.Request.Context(), ticketdomain.ListRequest{
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		Category:   c.Query("category"),
		AssigneeID: c.Query("assigneeId"),
		Search:     c.Query("search"),
		Page:       pageFromQuery(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondPage(c, resp.Tickets, resp.Pagination)
}

func (s *Server) getTicket(c *gin.Context) {
	resp, err := s.ticketSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, resp)
}

func (s *Server) updateTicket(c *gin.Context) {
	var req ticketdomain.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ID = c.Param("id")

	resp, err := s.ticketSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, resp)
}

func (s *Server) deleteTicket(c *gin.Context) {
	if err := s.ticketSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	respondMessage(c, "Ticket deleted")
}

type ticketStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (s *Server) updateTicketStatus(c *gin.Context) {
	var req ticketStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := s.ticketSvc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, resp)
}

type escalateRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) escalateTicket(c *gin.Context) {
	var req escalateRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := s.ticketSvc.Escalate(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, resp)
}

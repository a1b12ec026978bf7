package server

import (
	"github.com/gin-gonic/gin"
	consumerdomain "github.com/voltmesh/gridadmin/internal/consumer/domain"
)

func (s *Server) createConsumer(c *gin.Context) {
	var req consumerdomain.CreateRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := s.consumerSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, resp)
}

func (s *Server) listConsumers(c *gin.Context) {
	resp, err := s.consumerSvc.List(c.Request.Context(), consumerdomain.ListRequest{
		Search:     c.Query("search"),
		LocationID: c.Query("locationId"),
		Active:     boolQuery(c, "active"),
		Page:       pageFromQuery(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondPage(c, resp.Consumers, resp.Pagination)
}

func (s *Server) getConsumer(c *gin.Context) {
	resp, err := s.consumerSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, resp)
}

func (s *Server) updateConsumer(c *gin.Context) {
	var req consumerdomain.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ID = c.Param("id")

	resp, err := s.consumerSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, resp)
}

func (s *Server) deleteConsumer(c *gin.Context) {
	if err := s.consumerSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	respondMessage(c, "Consumer deleted")
}

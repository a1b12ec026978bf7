package server

import (
	"github.com/gin-gonic/gin"
	notificationdomain "github.com/voltmesh/gridadmin/internal/notification/domain"
)

func (s *Server) listNotifications(c *gin.Context) {
	resp, err := s.dispatcher.List(c.Request.Context(), notificationdomain.ListRequest{
		Type:     c.Query("type"),
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Page:     pageFromQuery(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondPage(c, resp.Notifications, resp.Pagination)
}

func (s *Server) getNotification(c *gin.Context) {
	resp, err := s.dispatcher.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, resp)
}

func (s *Server) announce(c *gin.Context) {
	var req notificationdomain.AnnounceRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := s.dispatcher.Announce(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, resp)
}

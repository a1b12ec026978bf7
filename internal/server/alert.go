package server

import (
	"github.com/gin-gonic/gin"
	alertdomain "github.com/voltmesh/gridadmin/internal/alert/domain"
)

func (s *Server) listAlerts(c *gin.Context) {
	resp, err := s.alertSvc.List(c.Request.Context(), alertdomain.ListRequest{
		Type:     c.Query("type"),
		Resolved: boolQuery(c, "resolved"),
		Page:     pageFromQuery(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondPage(c, resp.Alerts, resp.Pagination)
}

func (s *Server) resolveAlert(c *gin.Context) {
	resp, err := s.alertSvc.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, resp)
}

package server

import "github.com/gin-gonic/gin"

func (s *Server) getStats(c *gin.Context) {
	report, err := s.statsSvc.Compute(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, report)
}

package server

import (
	"github.com/gin-gonic/gin"
	meterdomain "github.com/voltmesh/gridadmin/internal/meter/domain"
)

func (s *Server) createMeter(c *gin.Context) {
	var req meterdomain.CreateRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := s.meterSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, resp)
}

func (s *Server) listMeters(c *gin.Context) {
	resp, err := s.meterSvc.List(c.Request.Context(), meterdomain.ListRequest{
		Serial:  c.Query("serialNumber"),
		DTRName: c.Query("dtrName"),
		Status:  c.Query("status"),
		Page:    pageFromQuery(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondPage(c, resp.Meters, resp.Pagination)
}

func (s *Server) getMeter(c *gin.Context) {
	// Lookup by serial number when requested, snowflake id otherwise.
	if serial := c.Query("serialNumber"); serial != "" {
		resp, err := s.meterSvc.GetBySerial(c.Request.Context(), serial)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		respondOK(c, resp)
		return
	}

	resp, err := s.meterSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, resp)
}

func (s *Server) updateMeter(c *gin.Context) {
	var req meterdomain.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ID = c.Param("id")

	resp, err := s.meterSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, resp)
}

func (s *Server) deleteMeter(c *gin.Context) {
	if err := s.meterSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	respondMessage(c, "Meter deleted")
}

func (s *Server) recordMeterReading(c *gin.Context) {
	var req meterdomain.ReadingRequest
	if !bindJSON(c, &req) {
		return
	}
	req.MeterID = c.Param("id")

	resp, err := s.meterSvc.RecordReading(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, resp)
}

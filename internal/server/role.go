package server

import (
	"github.com/gin-gonic/gin"
	roledomain "github.com/voltmesh/gridadmin/internal/role/domain"
)

func (s *Server) createRole(c *gin.Context) {
	var req roledomain.CreateRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := s.roleSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, resp)
}

func (s *Server) listRoles(c *gin.Context) {
	resp, err := s.roleSvc.List(c.Request.Context(), roledomain.ListRequest{
		Search:     c.Query("search"),
		LocationID: c.Query("locationId"),
		Page:       pageFromQuery(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondPage(c, resp.Roles, resp.Pagination)
}

func (s *Server) getRole(c *gin.Context) {
	resp, err := s.roleSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, resp)
}

func (s *Server) updateRole(c *gin.Context) {
	var req roledomain.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ID = c.Param("id")

	resp, err := s.roleSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, resp)
}

func (s *Server) deleteRole(c *gin.Context) {
	if err := s.roleSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	respondMessage(c, "Role deleted")
}

type replacePermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

func (s *Server) replaceRolePermissions(c *gin.Context) {
	var req replacePermissionsRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := s.roleSvc.ReplacePermissions(c.Request.Context(), c.Param("id"), req.Permissions)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, resp)
}

func (s *Server) listPermissions(c *gin.Context) {
	resp, err := s.roleSvc.ListPermissions(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, resp)
}

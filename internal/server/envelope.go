package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/voltmesh/gridadmin/pkg/db/pagination"
)

// envelope is the uniform response shape. Every endpoint answers with it,
// success and failure alike.
type envelope struct {
	Success    bool                 `json:"success"`
	Data       interface{}          `json:"data,omitempty"`
	Message    string               `json:"message,omitempty"`
	Error      string               `json:"error,omitempty"`
	Errors     []FieldError         `json:"errors,omitempty"`
	Pagination *pagination.PageInfo `json:"pagination,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message})
}

func respondPage(c *gin.Context, data interface{}, page pagination.PageInfo) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data, Pagination: &page})
}

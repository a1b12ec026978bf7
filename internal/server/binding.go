package server

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/voltmesh/gridadmin/pkg/db/pagination"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("validate")
	return v
}

// bindJSON decodes the body and runs struct validation. On failure the
// request is aborted with a validation error.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		AbortWithError(c, invalidBody(err))
		return false
	}
	if err := validate.Struct(dst); err != nil {
		AbortWithError(c, err)
		return false
	}
	return true
}

type bodyError struct{ cause error }

func (e *bodyError) Error() string { return "invalid_request" }

func invalidBody(err error) error { return &bodyError{cause: err} }

func pageFromQuery(c *gin.Context) pagination.Page {
	page := pagination.Page{}
	if v, err := strconv.Atoi(c.Query("page")); err == nil {
		page.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		page.Limit = v
	}
	return page.Normalize()
}

func boolQuery(c *gin.Context, name string) *bool {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	accountdomain "github.com/voltmesh/gridadmin/internal/account/domain"
	alertdomain "github.com/voltmesh/gridadmin/internal/alert/domain"
	"github.com/voltmesh/gridadmin/internal/auth"
	consumerdomain "github.com/voltmesh/gridadmin/internal/consumer/domain"
	meterdomain "github.com/voltmesh/gridadmin/internal/meter/domain"
	notificationdomain "github.com/voltmesh/gridadmin/internal/notification/domain"
	roledomain "github.com/voltmesh/gridadmin/internal/role/domain"
	ticketdomain "github.com/voltmesh/gridadmin/internal/ticket/domain"
	"gorm.io/gorm"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ErrorHandlingMiddleware maps errors recorded on the gin context onto the
// response envelope. Handlers call AbortWithError and never write error
// bodies themselves.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, body := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, body)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, envelope) {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		fields := make([]FieldError, 0, len(vErrs))
		for _, fe := range vErrs {
			fields = append(fields, FieldError{
				Field:   strings.ToLower(fe.Field()[:1]) + fe.Field()[1:],
				Message: bindingMessage(fe),
			})
		}
		return http.StatusBadRequest, envelope{
			Success: false,
			Message: "Validation failed",
			Errors:  fields,
		}
	}

	switch {
	case isValidation(err):
		return http.StatusBadRequest, envelope{
			Success: false,
			Message: "Validation failed",
			Errors:  []FieldError{{Field: validationField(err), Message: validationMessage(err)}},
		}
	case isInvalidOperation(err):
		return http.StatusBadRequest, envelope{
			Success: false,
			Error:   "Invalid operation",
			Message: operationMessage(err),
		}
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, envelope{Success: false, Error: "Unauthorized"}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, envelope{Success: false, Error: "Forbidden"}
	case isConflict(err):
		return http.StatusConflict, envelope{
			Success: false,
			Error:   "Conflict",
			Message: conflictMessage(err),
		}
	case isNotFound(err):
		return http.StatusNotFound, envelope{Success: false, Error: "Not found"}
	default:
		// Internal detail never leaks to the client.
		return http.StatusInternalServerError, envelope{
			Success: false,
			Error:   "Internal server error",
		}
	}
}

func isValidation(err error) bool {
	var body *bodyError
	if errors.As(err, &body) {
		return true
	}
	switch {
	case errors.Is(err, consumerdomain.ErrInvalidConsumerNumber),
		errors.Is(err, consumerdomain.ErrInvalidName),
		errors.Is(err, consumerdomain.ErrInvalidID),
		errors.Is(err, meterdomain.ErrInvalidSerial),
		errors.Is(err, meterdomain.ErrInvalidMeterType),
		errors.Is(err, meterdomain.ErrInvalidStatus),
		errors.Is(err, meterdomain.ErrInvalidReading),
		errors.Is(err, meterdomain.ErrInvalidID),
		errors.Is(err, accountdomain.ErrInvalidID),
		errors.Is(err, accountdomain.ErrInvalidAmount),
		errors.Is(err, alertdomain.ErrInvalidType),
		errors.Is(err, alertdomain.ErrInvalidID),
		errors.Is(err, roledomain.ErrInvalidName),
		errors.Is(err, roledomain.ErrInvalidID),
		errors.Is(err, roledomain.ErrUnknownPermission),
		errors.Is(err, ticketdomain.ErrInvalidSubject),
		errors.Is(err, ticketdomain.ErrInvalidPriority),
		errors.Is(err, ticketdomain.ErrInvalidStatus),
		errors.Is(err, ticketdomain.ErrInvalidID),
		errors.Is(err, notificationdomain.ErrInvalidKind),
		errors.Is(err, notificationdomain.ErrInvalidInput),
		errors.Is(err, notificationdomain.ErrInvalidID):
		return true
	}
	return false
}

func isNotFound(err error) bool {
	switch {
	case errors.Is(err, consumerdomain.ErrNotFound),
		errors.Is(err, meterdomain.ErrNotFound),
		errors.Is(err, accountdomain.ErrNotFound),
		errors.Is(err, accountdomain.ErrConsumerMissing),
		errors.Is(err, alertdomain.ErrNotFound),
		errors.Is(err, roledomain.ErrNotFound),
		errors.Is(err, ticketdomain.ErrNotFound),
		errors.Is(err, notificationdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	}
	return false
}

func isConflict(err error) bool {
	switch {
	case errors.Is(err, consumerdomain.ErrDuplicateNumber),
		errors.Is(err, meterdomain.ErrDuplicateSerial),
		errors.Is(err, accountdomain.ErrDuplicate),
		errors.Is(err, roledomain.ErrNameConflict):
		return true
	}
	return false
}

func isInvalidOperation(err error) bool {
	switch {
	case errors.Is(err, roledomain.ErrRoleInUse),
		errors.Is(err, ticketdomain.ErrInvalidTransition),
		errors.Is(err, ticketdomain.ErrAlreadyEscalated),
		errors.Is(err, accountdomain.ErrBlocked),
		errors.Is(err, accountdomain.ErrInactive):
		return true
	}
	return false
}

func validationField(err error) string {
	code := err.Error()
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return "request"
}

func validationMessage(err error) string {
	code := err.Error()
	if strings.HasPrefix(code, "invalid_") {
		return strings.ReplaceAll(strings.TrimPrefix(code, "invalid_"), "_", " ") + " is invalid"
	}
	return "invalid value"
}

func operationMessage(err error) string {
	switch {
	case errors.Is(err, roledomain.ErrRoleInUse):
		return "role is assigned to one or more users"
	case errors.Is(err, ticketdomain.ErrInvalidTransition):
		return "status transition is not allowed"
	case errors.Is(err, ticketdomain.ErrAlreadyEscalated):
		return "ticket is already escalated"
	case errors.Is(err, accountdomain.ErrBlocked):
		return "account is blocked"
	case errors.Is(err, accountdomain.ErrInactive):
		return "account is inactive"
	default:
		return "operation not allowed"
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, consumerdomain.ErrDuplicateNumber):
		return "consumer number already exists"
	case errors.Is(err, meterdomain.ErrDuplicateSerial):
		return "meter serial number already exists"
	case errors.Is(err, accountdomain.ErrDuplicate):
		return "consumer already has a prepaid account"
	case errors.Is(err, roledomain.ErrNameConflict):
		return "role name already exists"
	default:
		return "resource already exists"
	}
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "email":
		return "must be a valid email"
	default:
		return "is invalid"
	}
}

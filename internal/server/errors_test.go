package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	accountdomain "github.com/voltmesh/gridadmin/internal/account/domain"
	meterdomain "github.com/voltmesh/gridadmin/internal/meter/domain"
	roledomain "github.com/voltmesh/gridadmin/internal/role/domain"
	ticketdomain "github.com/voltmesh/gridadmin/internal/ticket/domain"
)

func TestMapErrorStatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", meterdomain.ErrInvalidSerial, http.StatusBadRequest},
		{"invalid id", roledomain.ErrInvalidID, http.StatusBadRequest},
		{"role in use", roledomain.ErrRoleInUse, http.StatusBadRequest},
		{"bad transition", ticketdomain.ErrInvalidTransition, http.StatusBadRequest},
		{"blocked account", accountdomain.ErrBlocked, http.StatusBadRequest},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"name conflict", roledomain.ErrNameConflict, http.StatusConflict},
		{"duplicate account", accountdomain.ErrDuplicate, http.StatusConflict},
		{"not found", ticketdomain.ErrNotFound, http.StatusNotFound},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.False(t, body.Success)
		})
	}
}

func TestMapErrorValidationEnvelope(t *testing.T) {
	status, body := mapError(meterdomain.ErrInvalidSerial)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", body.Message)
	assert.Len(t, body.Errors, 1)
	assert.Equal(t, "serial_number", body.Errors[0].Field)
}

func TestMapErrorNeverLeaksInternalDetail(t *testing.T) {
	_, body := mapError(errors.New("pq: connection reset by peer"))
	assert.Equal(t, "Internal server error", body.Error)
	assert.Empty(t, body.Message)
}

func TestMapErrorConflictMessage(t *testing.T) {
	status, body := mapError(accountdomain.ErrDuplicate)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "consumer already has a prepaid account", body.Message)
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{InvalidCredentials(), http.StatusUnauthorized},
		{Unauthorized("nope"), http.StatusUnauthorized},
		{RoleMismatch(), http.StatusForbidden},
		{AccountBlocked(), http.StatusForbidden},
		{PendingVerification(), http.StatusForbidden},
		{Forbidden("nope"), http.StatusForbidden},
		{NotFound("doctor"), http.StatusNotFound},
		{Validation("bad input"), http.StatusBadRequest},
		{Conflict("duplicate"), http.StatusConflict},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.StatusCode(), tt.err.Message)
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := NotFound("doctor")
	assert.ErrorIs(t, err, NotFound("anything"))
	assert.NotErrorIs(t, err, Conflict("x"))
}

func TestIsMatchesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("while deciding: %w", PendingVerification())
	assert.ErrorIs(t, wrapped, PendingVerification())
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorTypesAndStatus(t *testing.T) {
	cases := []struct {
		err    *AppError
		typ    ErrorType
		status int
	}{
		{NewValidationError("bad input"), ErrorTypeValidation, http.StatusBadRequest},
		{NewNotFoundError("missing"), ErrorTypeNotFound, http.StatusNotFound},
		{NewConflictError("taken"), ErrorTypeConflict, http.StatusConflict},
		{NewUnauthorizedError("who"), ErrorTypeUnauthorized, http.StatusUnauthorized},
		{NewForbiddenError("no"), ErrorTypeForbidden, http.StatusForbidden},
		{NewInsufficientFundsError("broke"), ErrorTypeInsufficientFunds, http.StatusPaymentRequired},
		{NewUpstreamError("panel down"), ErrorTypeUpstream, http.StatusBadGateway},
		{NewUpstreamAuthError("panel 401"), ErrorTypeUpstreamAuth, http.StatusBadRequest},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.typ, tc.err.Type)
		assert.Equal(t, tc.status, tc.err.Code)
	}
}

func TestGetAppError_Unwraps(t *testing.T) {
	inner := NewNotFoundError("gone")
	wrapped := fmt.Errorf("loading user: %w", inner)

	got := GetAppError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, ErrorTypeNotFound, got.Type)
	assert.True(t, IsNotFoundError(wrapped))

	assert.Nil(t, GetAppError(fmt.Errorf("plain")))
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, IsDuplicateError(fmt.Errorf("Error 1062 (23000): Duplicate entry 'acme' for key 'username'")))
	assert.True(t, IsDuplicateError(fmt.Errorf("UNIQUE constraint failed: resellers.username")))
	assert.True(t, IsDuplicateError(fmt.Errorf(`pq: duplicate key value violates unique constraint "resellers_username_key"`)))
	assert.False(t, IsDuplicateError(fmt.Errorf("connection refused")))
	assert.False(t, IsDuplicateError(nil))
}

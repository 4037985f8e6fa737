package goerror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_StatusCode(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInternal, http.StatusInternalServerError},
		{CodeInvalidFormat, http.StatusBadRequest},
		{CodeInvalidInput, http.StatusUnprocessableEntity},
		{CodeNotFound, http.StatusNotFound},
		{CodeTooManyRequest, http.StatusTooManyRequests},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeGone, http.StatusGone},
		{CodeBadGateway, http.StatusBadGateway},
		{CodeGatewayTimeout, http.StatusGatewayTimeout},
		{Code(99), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := &Error{code: tt.code}
			assert.Equal(t, tt.want, err.StatusCode())
		})
	}
}

func TestNewBusinessWrap_KeepsCause(t *testing.T) {
	// Arrange
	cause := errors.New("code expired")

	// Act
	err := NewBusinessWrap(cause, "Verification code has expired", CodeGone)

	// Assert
	assert.ErrorIs(t, err, cause)

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "Verification code has expired", gerr.Msg())
	assert.Equal(t, TypeBusiness, gerr.Type())
	assert.Equal(t, http.StatusGone, gerr.StatusCode())
}

func TestNewUpstream(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	err := NewUpstream(cause, "Delivery service unavailable", CodeBadGateway)

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, TypeServer, gerr.Type())
	assert.Equal(t, http.StatusBadGateway, gerr.StatusCode())
}

func TestNewInvalidInput_Fields(t *testing.T) {
	err := NewInvalidInput(nil, "phone", "phone is required")

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, map[string]string{"phone": "phone is required"}, gerr.Fields())
	assert.Equal(t, CodeInvalidInput, gerr.Code())

	odd := NewInvalidInput(nil, "phone")
	require.ErrorAs(t, odd, &gerr)
	assert.Equal(t, CodeInvalidFormat, gerr.Code())
}

package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"minecraft-store/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid input", fmt.Errorf("%w: username is required", service.ErrInvalidInput), http.StatusBadRequest},
		{"empty cart", service.ErrEmptyCart, http.StatusBadRequest},
		{"auth failed", &service.AuthError{Message: "Invalid username"}, http.StatusBadGateway},
		{"post not found", fmt.Errorf("%w: x", service.ErrPostNotFound), http.StatusNotFound},
		{"bad signature", service.ErrInvalidSignature, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var he *echo.HTTPError
			require.True(t, errors.As(toHTTPError(tt.err), &he))
			assert.Equal(t, tt.code, he.Code)
		})
	}
}

func TestToHTTPError_AuthMessageVerbatim(t *testing.T) {
	var he *echo.HTTPError
	require.True(t, errors.As(toHTTPError(&service.AuthError{Message: "Invalid username"}), &he))
	assert.Equal(t, "Invalid username", he.Message)
}

func TestToHTTPError_PassesThroughUnknown(t *testing.T) {
	err := errors.New("db down")
	assert.Same(t, err, toHTTPError(err))
}

func TestParseEdition(t *testing.T) {
	e, ok := parseEdition("")
	assert.True(t, ok)
	assert.Equal(t, "java", string(e))

	e, ok = parseEdition(" Bedrock ")
	assert.True(t, ok)
	assert.Equal(t, "bedrock", string(e))

	_, ok = parseEdition("pocket")
	assert.False(t, ok)
}

package backend

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeResponse creates an *http.Response with the given status code and body string.
func makeResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseError_DetailField(t *testing.T) {
	resp := makeResponse(http.StatusUnauthorized, `{"detail":"Invalid credentials"}`)
	err := parseError(resp)
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr), "expected *Error, got %T: %v", err, err)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestParseError_MessageField(t *testing.T) {
	resp := makeResponse(http.StatusBadRequest, `{"message":"rating out of range"}`)
	err := parseError(resp)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "rating out of range", apiErr.Message)
}

func TestParseError_DetailTakesPrecedenceOverMessage(t *testing.T) {
	resp := makeResponse(http.StatusForbidden, `{"detail":"from detail","message":"from message"}`)
	err := parseError(resp)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "from detail", apiErr.Message)
}

func TestParseError_UnparseableBody_GenericMessage(t *testing.T) {
	resp := makeResponse(http.StatusBadGateway, `<html>upstream broke</html>`)
	err := parseError(resp)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Error 502", apiErr.Message)
}

func TestParseError_EmptyBody_GenericMessage(t *testing.T) {
	resp := makeResponse(http.StatusInternalServerError, "")
	err := parseError(resp)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Error 500", apiErr.Message)
}

func TestParseError_JSONWithoutKnownFields_GenericMessage(t *testing.T) {
	resp := makeResponse(http.StatusNotFound, `{"code":"NOT_FOUND"}`)
	err := parseError(resp)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Error 404", apiErr.Message)
}

func TestIsUnauthorized(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "401", err: &Error{Status: http.StatusUnauthorized, Message: "no"}, want: true},
		{name: "403", err: &Error{Status: http.StatusForbidden, Message: "no"}, want: false},
		{name: "transport", err: &Error{Message: "backend is unreachable, please try again"}, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUnauthorized(tt.err))
		})
	}
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedCode    string
		expectedMessage string
		expectedAllowed []string
	}{
		{
			name:            "bad request",
			err:             BadRequest("name is required"),
			expectedStatus:  http.StatusBadRequest,
			expectedCode:    "BAD_REQUEST",
			expectedMessage: "name is required",
		},
		{
			name:            "bad request with allowed values",
			err:             BadRequestAllowed("invalid status", []string{"new", "done"}),
			expectedStatus:  http.StatusBadRequest,
			expectedCode:    "BAD_REQUEST",
			expectedMessage: "invalid status",
			expectedAllowed: []string{"new", "done"},
		},
		{
			name:            "unauthorized",
			err:             Unauthorized("invalid email or password"),
			expectedStatus:  http.StatusUnauthorized,
			expectedCode:    "UNAUTHORIZED",
			expectedMessage: "invalid email or password",
		},
		{
			name:            "forbidden",
			err:             Forbidden("forbidden"),
			expectedStatus:  http.StatusForbidden,
			expectedCode:    "FORBIDDEN",
			expectedMessage: "forbidden",
		},
		{
			name:            "not found",
			err:             NotFound("vehicle"),
			expectedStatus:  http.StatusNotFound,
			expectedCode:    "NOT_FOUND",
			expectedMessage: "vehicle not found",
		},
		{
			name:            "conflict wrapped",
			err:             fmt.Errorf("create part: %w", Conflict("sku already exists")),
			expectedStatus:  http.StatusConflict,
			expectedCode:    "CONFLICT",
			expectedMessage: "sku already exists",
		},
		{
			name:            "invalid transition",
			err:             InvalidTransition("order", "done", "new", []string{}),
			expectedStatus:  http.StatusConflict,
			expectedCode:    "INVALID_TRANSITION",
			expectedMessage: "order cannot move from done to new",
			expectedAllowed: []string{},
		},
		{
			name:            "untyped error hides details",
			err:             errors.New("sql: connection refused"),
			expectedStatus:  http.StatusInternalServerError,
			expectedCode:    "INTERNAL_ERROR",
			expectedMessage: "internal server error",
		},
		{
			name:            "internal error hides details",
			err:             Internal("load order", errors.New("disk I/O error")),
			expectedStatus:  http.StatusInternalServerError,
			expectedCode:    "INTERNAL_ERROR",
			expectedMessage: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.expectedStatus, httpErr.StatusCode)
			assert.Equal(t, tt.expectedCode, httpErr.Code)
			assert.Equal(t, tt.expectedMessage, httpErr.Message)
			assert.Equal(t, tt.expectedAllowed, httpErr.Allowed)

			resp := httpErr.ToErrorResponse()
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedMessage, resp.Message)
		})
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("order"))
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(err, KindConflict))
	assert.False(t, Is(nil, KindServer))
	assert.Equal(t, KindServer, KindOf(errors.New("boom")))
}

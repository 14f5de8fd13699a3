package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStatusError_Payloads(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantDetail string
		wantFields []string
	}{
		{
			name:       "detail",
			body:       `{"detail": "Cart is empty"}`,
			wantDetail: "Cart is empty",
		},
		{
			name:       "field errors",
			body:       `{"username": ["A user with that username already exists."], "email": ["Enter a valid email address."]}`,
			wantFields: []string{"email: Enter a valid email address.", "username: A user with that username already exists."},
		},
		{
			name:       "non field errors",
			body:       `{"non_field_errors": ["Unable to log in."]}`,
			wantDetail: "Unable to log in.",
		},
		{
			name:       "nested object",
			body:       `{"user": {"email": ["required"]}}`,
			wantFields: []string{"user: email: required"},
		},
		{
			name:       "bare list",
			body:       `["first", "second"]`,
			wantDetail: "first; second",
		},
		{
			name: "not json",
			body: `<html>Server Error</html>`,
		},
		{
			name: "empty",
			body: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := newStatusError(http.MethodPost, "register/", http.StatusBadRequest, []byte(tt.body))
			assert.Equal(t, tt.wantDetail, se.Detail)
			assert.Equal(t, tt.wantFields, se.FieldMessages())
		})
	}
}

func TestStatusError_Error(t *testing.T) {
	se := newStatusError(http.MethodPost, "login/", http.StatusUnauthorized, []byte(`{"detail":"Invalid credentials"}`))
	assert.Equal(t, "POST login/: 401 Unauthorized: Invalid credentials", se.Error())

	wrapped := fmt.Errorf("login: %w", se)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(wrapped))
	assert.True(t, IsStatus(wrapped, http.StatusUnauthorized))
	assert.False(t, IsRefreshFailure(wrapped))

	re := &RefreshError{Err: se}
	assert.Equal(t, "refresh session: POST login/: 401 Unauthorized: Invalid credentials", re.Error())
	assert.Equal(t, http.StatusUnauthorized, StatusCode(re))
}

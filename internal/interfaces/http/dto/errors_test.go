package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{"INVALID_PORTAL_TOKEN", http.StatusUnauthorized},
		{"TENANT_SUSPENDED", http.StatusForbidden},
		{"TENANT_MISMATCH", http.StatusForbidden},
		{"NOT_FOUND", http.StatusNotFound},
		{"SIRET_TAKEN", http.StatusConflict},
		{"SCHEDULE_CONFLICT", http.StatusConflict},
		{"HAS_ORDERS", http.StatusConflict},
		{"INVALID_STATE", http.StatusUnprocessableEntity},
		{"EXCEEDS_OUTSTANDING", http.StatusUnprocessableEntity},
		{"FILE_TOO_LARGE", http.StatusRequestEntityTooLarge},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		// Unlisted codes fall back by shape
		{"INVALID_SIRET", http.StatusBadRequest},
		{"INVALID_VAT_RATE", http.StatusBadRequest},
		{"SOME_NEW_RULE", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a"}, 41, 2, 20)
	require.NotNil(t, resp.Meta)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	resp = NewSuccessResponseWithMeta(nil, 0, 1, 0)
	assert.Equal(t, 0, resp.Meta.TotalPages)
}

func TestNewValidationErrorResponse_JSON(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-42", []ValidationDetail{
		{Field: "email", Message: "must be a valid email"},
	})
	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": false,
		"error": {
			"code": "VALIDATION_ERROR",
			"message": "Request validation failed",
			"request_id": "req-42",
			"details": [{"field": "email", "message": "must be a valid email"}]
		}
	}`, string(body))
}

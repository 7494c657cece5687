package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brizzai/social-manager/internal/auth/models"
	"github.com/stretchr/testify/assert"
)

func TestWriteErr(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing parameter",
			err:        models.MissingParameters("code"),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":true,"error_message":"missing required parameters: code"}`,
		},
		{
			name:       "provider message verbatim",
			err:        fmt.Errorf("exchange: %w", &models.ProviderError{Provider: models.ProviderInstagram, StatusCode: 400, Message: "Invalid code"}),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":true,"error_message":"Invalid code"}`,
		},
		{
			name:       "timeout",
			err:        models.ErrProviderTimeout,
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":true,"error_message":"incomplete provider response: provider did not answer in time"}`,
		},
		{
			name:       "unexpected",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":true,"error_message":"Internal server error"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteErr(rec, tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestWriteText(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteText(rec, http.StatusForbidden, "Verification failed")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Verification failed", rec.Body.String())
}

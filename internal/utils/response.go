package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brizzai/social-manager/internal/auth/models"
	"github.com/brizzai/social-manager/internal/logger"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every JSON error answer
type ErrorResponse struct {
	Error        bool   `json:"error"`
	ErrorMessage string `json:"error_message"`
}

// WriteJSON writes a 200 JSON response
func WriteJSON(w http.ResponseWriter, data interface{}) {
	WriteJSONStatus(w, http.StatusOK, data)
}

// WriteJSONStatus writes a JSON response with the given status
func WriteJSONStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, message string, status int) {
	WriteJSONStatus(w, status, ErrorResponse{Error: true, ErrorMessage: message})
}

// WriteErr maps err to a status with models.HTTPStatus. Provider messages
// are passed through verbatim; unexpected errors are not echoed.
func WriteErr(w http.ResponseWriter, err error) {
	status := models.HTTPStatus(err)
	message := err.Error()
	var perr *models.ProviderError
	if errors.As(err, &perr) {
		message = perr.Error()
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.Error(err))
		if !errors.Is(err, models.ErrConfiguration) &&
			!errors.Is(err, models.ErrIncompleteProviderResponse) &&
			!errors.Is(err, models.ErrNetworkFailure) {
			message = "Internal server error"
		}
	}
	WriteError(w, message, status)
}

// WriteText writes a plain text response
func WriteText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(text)); err != nil {
		logger.Error("Failed to write response", zap.Error(err))
	}
}

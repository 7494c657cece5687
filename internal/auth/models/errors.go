package models

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrMissingParameter           = errors.New("missing required parameters")
	ErrProviderError              = errors.New("provider returned an error")
	ErrIncompleteProviderResponse = errors.New("incomplete provider response")
	ErrProviderTimeout            = fmt.Errorf("%w: provider did not answer in time", ErrIncompleteProviderResponse)
	ErrNetworkFailure             = errors.New("network failure")
	ErrConfiguration              = errors.New("provider integration is not configured")
	ErrStateMismatch              = errors.New("invalid state parameter, this could be a CSRF attack")
	ErrUnsupportedProvider        = errors.New("unsupported provider")
)

// ProviderError carries the message a provider put in its error body
type ProviderError struct {
	Provider   Provider
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s token endpoint returned status %d", e.Provider, e.StatusCode)
	}
	return e.Message
}

// Is makes errors.Is(err, ErrProviderError) hold for every ProviderError
func (e *ProviderError) Is(target error) bool {
	return target == ErrProviderError
}

// MissingParameters builds an ErrMissingParameter naming the fields
func MissingParameters(names ...string) error {
	return fmt.Errorf("%w: %s", ErrMissingParameter, strings.Join(names, ", "))
}

// HTTPStatus maps an error to the status the HTTP layer answers with.
// Client-attributable failures are 400, everything else is 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMissingParameter),
		errors.Is(err, ErrProviderError),
		errors.Is(err, ErrStateMismatch),
		errors.Is(err, ErrUnsupportedProvider):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

package requester

import (
	"context"
	"net/http"
)

// RequestBuilder creates a fresh request for every attempt, since a body
// reader cannot be replayed
type RequestBuilder func(ctx context.Context) (*http.Request, error)

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
	Attempts   int
}

// IsSuccess reports a 2xx status
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

package requester

import (
	"errors"
	"time"
)

var (
	// ErrTimeout is returned when the remote end did not answer in time
	ErrTimeout = errors.New("request timed out")
	// ErrTransport is returned when the request could not be delivered
	ErrTransport = errors.New("request failed")
)

// RetryPolicy bounds the retries performed on transient failures
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy is used when no configuration is given
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:     3,
	InitialInterval: 200 * time.Millisecond,
	MaxInterval:     2 * time.Second,
}

// maxBodySize caps how much of a response body is read
const maxBodySize = 1 << 20

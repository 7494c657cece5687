package requester

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/brizzai/social-manager/internal/config"
	"github.com/brizzai/social-manager/internal/logger"
	"github.com/cenkalti/backoff/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// HTTPRequester executes outbound requests with a per-attempt timeout and
// bounded exponential backoff on transient failures
type HTTPRequester struct {
	client *http.Client
	retry  RetryPolicy
}

type HTTPRequesterParams struct {
	fx.In

	Config *config.ExchangeConfig
}

// NewHTTPRequester creates a requester from the exchange configuration
func NewHTTPRequester(params HTTPRequesterParams) *HTTPRequester {
	policy := DefaultRetryPolicy
	timeout := 30 * time.Second
	if cfg := params.Config; cfg != nil {
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
		if cfg.MaxAttempts > 0 {
			policy.MaxAttempts = cfg.MaxAttempts
		}
		if cfg.InitialBackoff > 0 {
			policy.InitialInterval = cfg.InitialBackoff
		}
		if cfg.MaxBackoff > 0 {
			policy.MaxInterval = cfg.MaxBackoff
		}
	}
	return New(&http.Client{Timeout: timeout}, policy)
}

// New creates a requester around an existing client
func New(client *http.Client, policy RetryPolicy) *HTTPRequester {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &HTTPRequester{client: client, retry: policy}
}

// SetTimeout sets the timeout for the HTTP client
func (r *HTTPRequester) SetTimeout(timeout time.Duration) {
	r.client.Timeout = timeout
}

// retryableStatus is returned inside the retry loop for gateway errors so
// the loop backs off; the last such response is handed to the caller
type retryableStatus struct {
	resp *Response
}

func (e *retryableStatus) Error() string {
	return fmt.Sprintf("transient status %d", e.resp.StatusCode)
}

// Do executes the request built by build. Transport failures and 502/503/504
// answers are retried; timeouts are not, so a hung endpoint costs one
// timeout rather than MaxAttempts of them.
func (r *HTTPRequester) Do(ctx context.Context, build RequestBuilder) (*Response, error) {
	attempts := 0
	operation := func() (*Response, error) {
		attempts++
		req, err := build(ctx)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		resp, err := r.execute(req)
		if err != nil {
			switch {
			case isTimeout(err):
				return nil, backoff.Permanent(fmt.Errorf("%w: %v", ErrTimeout, err))
			case ctx.Err() != nil:
				return nil, backoff.Permanent(fmt.Errorf("%w: %v", ErrTransport, err))
			default:
				return nil, fmt.Errorf("%w: %v", ErrTransport, err)
			}
		}
		resp.Attempts = attempts

		switch resp.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return nil, &retryableStatus{resp: resp}
		}
		return resp, nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.retry.InitialInterval
	b.MaxInterval = r.retry.MaxInterval

	resp, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(r.retry.MaxAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn("Retrying outbound request",
				zap.Error(err),
				zap.Int("attempt", attempts),
				zap.Duration("backoff", next),
			)
		}),
	)
	if err != nil {
		var transient *retryableStatus
		if errors.As(err, &transient) {
			return transient.resp, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ErrTimeout) && !errors.Is(err, ErrTransport) {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %v", ErrTimeout, ctxErr)
			}
			return nil, fmt.Errorf("%w: %v", ErrTransport, ctxErr)
		}
		return nil, err
	}
	return resp, nil
}

// execute performs the actual HTTP request execution
func (r *HTTPRequester) execute(req *http.Request) (*Response, error) {
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Error("Failed to close response body", zap.Error(closeErr))
		}
	}()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       bodyBytes,
		Headers:    resp.Header,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

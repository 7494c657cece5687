// Package client talks to a running social-manager server. The CLI and the
// terminal UI use it instead of reaching into the server's store.
package client

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/brizzai/social-manager/internal/auth/models"
	"github.com/brizzai/social-manager/internal/auth/store"
	"github.com/brizzai/social-manager/internal/config"
	"github.com/brizzai/social-manager/internal/logger"
	"github.com/brizzai/social-manager/internal/requester"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// ErrUnavailable is returned when the server could not be reached
var ErrUnavailable = errors.New("server unavailable")

// APIError is a non-2xx answer of the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server answered with status %d", e.StatusCode)
	}
	return fmt.Sprintf("server answered with status %d: %s", e.StatusCode, e.Message)
}

// Doer executes a request, requester.HTTPRequester in production
type Doer interface {
	Do(ctx context.Context, build requester.RequestBuilder) (*requester.Response, error)
}

// ProviderInfo is one entry of GET /auth/providers
type ProviderInfo struct {
	Name        models.Provider `json:"name"`
	DisplayName string          `json:"displayName"`
}

// Client is a typed wrapper over the HTTP API
type Client struct {
	baseURL string
	doer    Doer
}

// New creates a client from the client configuration
func New(cfg *config.ClientConfig) *Client {
	r := requester.New(&http.Client{Timeout: cfg.Timeout}, requester.DefaultRetryPolicy)
	return NewWithDoer(cfg.BaseURL, r)
}

// NewWithDoer creates a client around an existing Doer
func NewWithDoer(baseURL string, doer Doer) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		doer:    doer,
	}
}

// BaseURL is the server the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.baseURL + "/" + strings.Join(escaped, "/")
}

func (c *Client) do(ctx context.Context, build requester.RequestBuilder) (*requester.Response, error) {
	resp, err := c.doer.Do(ctx, build)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !resp.IsSuccess() {
		return resp, apiError(resp)
	}
	return resp, nil
}

// apiError reads both error bodies the server produces
func apiError(resp *requester.Response) *APIError {
	body := gjson.ParseBytes(resp.Body)
	message := body.Get("error_message").String()
	if message == "" {
		message = body.Get("message").String()
	}
	if message == "" && !gjson.ValidBytes(resp.Body) {
		message = strings.TrimSpace(string(resp.Body))
	}
	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

// Providers lists the providers the server can exchange codes for
func (c *Client) Providers(ctx context.Context) ([]ProviderInfo, error) {
	resp, err := c.do(ctx, requester.GetRequest(c.endpoint("auth", "providers"), nil))
	if err != nil {
		return nil, err
	}
	var body struct {
		Providers []ProviderInfo `json:"providers"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("failed to decode providers: %w", err)
	}
	return body.Providers, nil
}

// Connections lists the connected accounts
func (c *Client) Connections(ctx context.Context) ([]models.Connection, error) {
	resp, err := c.do(ctx, requester.GetRequest(c.endpoint("auth", "user-tokens"), nil))
	if err != nil {
		return nil, err
	}
	var body struct {
		Tokens []models.Connection `json:"tokens"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("failed to decode connections: %w", err)
	}
	return body.Tokens, nil
}

// Check asks whether providerUserID is connected under provider
func (c *Client) Check(ctx context.Context, provider models.Provider, providerUserID string) (models.ConnectionStatus, error) {
	resp, err := c.do(ctx, requester.GetRequest(c.endpoint("auth", "check-connection", provider.String(), providerUserID), nil))
	if err != nil {
		return models.ConnectionStatus{}, err
	}
	var status models.ConnectionStatus
	if err := json.Unmarshal(resp.Body, &status); err != nil {
		return models.ConnectionStatus{}, fmt.Errorf("failed to decode connection status: %w", err)
	}
	return status, nil
}

// Disconnect removes a connection. A missing connection is store.ErrNotFound.
func (c *Client) Disconnect(ctx context.Context, provider models.Provider, providerUserID string) error {
	_, err := c.do(ctx, requester.JSONRequest(http.MethodDelete, c.endpoint("auth", "connections", provider.String(), providerUserID), nil))
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s/%s", store.ErrNotFound, provider, providerUserID)
	}
	return err
}

// VerificationToken fetches the server's verification token. The token is
// process-wide, the provider segment of the route is not significant.
func (c *Client) VerificationToken(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, requester.GetRequest(c.endpoint("auth", models.ProviderInstagram.String(), "verification-token"), nil))
	if err != nil {
		return "", err
	}
	token := gjson.GetBytes(resp.Body, "token").String()
	if token == "" {
		return "", fmt.Errorf("server returned an empty verification token")
	}
	return token, nil
}

// ValidateState compares state with the server's verification token
func (c *Client) ValidateState(ctx context.Context, state string) error {
	token, err := c.VerificationToken(ctx)
	if err != nil {
		return err
	}
	if state == "" || subtle.ConstantTimeCompare([]byte(state), []byte(token)) != 1 {
		return models.ErrStateMismatch
	}
	return nil
}

// ExchangeCode asks the server to exchange code with its own credentials.
// Rejections carrying a message come back as *models.ProviderError.
func (c *Client) ExchangeCode(ctx context.Context, provider models.Provider, code string) (*models.ExchangeResult, error) {
	resp, err := c.do(ctx, requester.JSONRequest(http.MethodPost,
		c.endpoint("auth", provider.String(), "exchange-token"),
		map[string]string{"code": code},
	))
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		logger.Debug("Exchange rejected by server",
			zap.String("provider", provider.String()),
			zap.Int("status", apiErr.StatusCode),
		)
		if apiErr.StatusCode == http.StatusBadRequest && apiErr.Message != "" {
			return nil, &models.ProviderError{Provider: provider, StatusCode: apiErr.StatusCode, Message: apiErr.Message}
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	body := gjson.ParseBytes(resp.Body)
	userID := body.Get("userId").String()
	if !body.Get("success").Bool() || userID == "" {
		return nil, fmt.Errorf("%w: exchange answer without user id", models.ErrIncompleteProviderResponse)
	}
	return &models.ExchangeResult{
		ProviderUserID: userID,
		Username:       body.Get("username").String(),
		Provider:       provider,
	}, nil
}

// Package callback drives the page a provider redirects to after the user
// authorizes the app.
package callback

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/brizzai/social-manager/internal/auth/constants"
	"github.com/brizzai/social-manager/internal/auth/models"
	"github.com/brizzai/social-manager/internal/config"
	"github.com/brizzai/social-manager/internal/logger"
	"go.uber.org/zap"
)

// Status of a callback flow
type Status string

const (
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Messages shown to the user
const (
	MessageMissingCode   = "Authentication failed: Authorization code not found."
	MessageStateMismatch = "Invalid state parameter. This could be a CSRF attack."
)

// StateValidator checks the state a provider echoes back
type StateValidator interface {
	ValidateState(ctx context.Context, state string) error
}

// Exchanger exchanges a code with server-side credentials
type Exchanger interface {
	ExchangeCode(ctx context.Context, provider models.Provider, code string) (*models.ExchangeResult, error)
}

// Outcome is the terminal result of a flow
type Outcome struct {
	Provider    models.Provider
	Status      Status
	Message     string
	Username    string
	SettingsURL string
	// Delay before the view moves on to SettingsURL
	Delay time.Duration
}

// Controller runs callback flows for every provider
type Controller struct {
	states       StateValidator
	exchanger    Exchanger
	settingsURL  string
	successDelay time.Duration
	errorDelay   time.Duration
}

// NewController creates a controller. A nil cfg uses the default delays.
func NewController(states StateValidator, exchanger Exchanger, cfg *config.CallbackConfig) *Controller {
	c := &Controller{
		states:       states,
		exchanger:    exchanger,
		successDelay: constants.DefaultSuccessDelay,
		errorDelay:   constants.DefaultErrorDelay,
	}
	if cfg != nil {
		c.settingsURL = cfg.SettingsURL
		if cfg.SuccessDelay > 0 {
			c.successDelay = cfg.SuccessDelay
		}
		if cfg.ErrorDelay > 0 {
			c.errorDelay = cfg.ErrorDelay
		}
	}
	return c
}

// Flow is a single callback page load. It starts in StatusLoading and
// moves to exactly one terminal status.
type Flow struct {
	controller *Controller
	provider   models.Provider
	query      url.Values

	once    sync.Once
	mu      sync.RWMutex
	outcome Outcome
}

// Start creates a flow for the redirect query of one page load
func (c *Controller) Start(provider models.Provider, query url.Values) *Flow {
	return &Flow{
		controller: c,
		provider:   provider,
		query:      query,
		outcome:    Outcome{Provider: provider, Status: StatusLoading, SettingsURL: c.settingsURL},
	}
}

// Run starts a flow and runs it to completion
func (c *Controller) Run(ctx context.Context, provider models.Provider, query url.Values) Outcome {
	return c.Start(provider, query).Run(ctx)
}

// Status returns the current status
func (f *Flow) Status() Status {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.outcome.Status
}

// Run executes the flow. Later calls return the first outcome without
// running anything again.
func (f *Flow) Run(ctx context.Context) Outcome {
	f.once.Do(func() {
		outcome := f.controller.resolve(ctx, f.provider, f.query)
		f.mu.Lock()
		f.outcome = outcome
		f.mu.Unlock()
	})
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.outcome
}

func (c *Controller) resolve(ctx context.Context, provider models.Provider, query url.Values) Outcome {
	if query.Get(constants.ErrorParam) != "" {
		reason := firstNonEmpty(
			query.Get(constants.ErrorDescriptionParam),
			query.Get(constants.ErrorReasonParam),
			query.Get(constants.ErrorParam),
		)
		logger.Warn("Provider reported an authorization error",
			zap.String("provider", provider.String()),
			zap.String("error", query.Get(constants.ErrorParam)),
			zap.String("reason", reason),
		)
		return c.failed(provider, "Authentication failed: "+reason)
	}

	code := query.Get(constants.CodeParam)
	if code == "" {
		return c.failed(provider, MessageMissingCode)
	}

	if err := c.states.ValidateState(ctx, query.Get(constants.StateParam)); err != nil {
		logger.Warn("Callback state mismatch", zap.String("provider", provider.String()), zap.Error(err))
		if errors.Is(err, models.ErrStateMismatch) {
			return c.failed(provider, MessageStateMismatch)
		}
		return c.failed(provider, "Authentication failed: "+err.Error())
	}

	result, err := c.exchanger.ExchangeCode(ctx, provider, code)
	if err != nil {
		logger.Error("Code exchange failed", zap.String("provider", provider.String()), zap.Error(err))
		return c.failed(provider, "Authentication failed: "+reason(err))
	}

	return Outcome{
		Provider:    provider,
		Status:      StatusSuccess,
		Message:     fmt.Sprintf("Successfully connected as %s.", result.Username),
		Username:    result.Username,
		SettingsURL: c.settingsURL,
		Delay:       c.successDelay,
	}
}

func (c *Controller) failed(provider models.Provider, message string) Outcome {
	return Outcome{
		Provider:    provider,
		Status:      StatusError,
		Message:     message,
		SettingsURL: c.settingsURL,
		Delay:       c.errorDelay,
	}
}

// reason prefers the provider's own message over our wrapping
func reason(err error) string {
	var perr *models.ProviderError
	if errors.As(err, &perr) {
		return perr.Error()
	}
	return err.Error()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

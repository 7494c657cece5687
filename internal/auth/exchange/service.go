// Package exchange turns an authorization code into a stored token record.
package exchange

import (
	"context"
	"fmt"

	"github.com/brizzai/social-manager/internal/auth/models"
	"github.com/brizzai/social-manager/internal/auth/providers"
	"github.com/brizzai/social-manager/internal/auth/store"
	"github.com/brizzai/social-manager/internal/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Service is the only writer of the token store
type Service struct {
	registry *providers.Registry
	store    store.TokenStore
}

// NewService creates a new exchange service
func NewService(registry *providers.Registry, tokens store.TokenStore) *Service {
	return &Service{
		registry: registry,
		store:    tokens,
	}
}

// Exchange runs the code exchange, the profile lookup and the store upsert,
// strictly in that order. Nothing is written unless every step succeeds.
func (s *Service) Exchange(ctx context.Context, provider models.Provider, req models.ExchangeRequest) (*models.ExchangeResult, error) {
	if missing := req.Missing(); len(missing) > 0 {
		return nil, models.MissingParameters(missing...)
	}

	p, err := s.registry.Get(provider)
	if err != nil {
		return nil, err
	}

	token, err := p.ExchangeCode(ctx, req)
	if err != nil {
		return nil, err
	}

	profile, err := p.FetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}

	record := models.TokenRecord{
		ProviderUserID: providers.UserID(token),
		AccessToken:    token.AccessToken,
		Username:       profile.Username,
		Provider:       provider,
	}
	if err := s.store.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	logger.Info("Connected account",
		zap.String("provider", provider.String()),
		zap.String("user_id", record.ProviderUserID),
		zap.String("username", record.Username),
		logger.Secret("access_token", record.AccessToken),
	)

	return &models.ExchangeResult{
		ProviderUserID: record.ProviderUserID,
		Username:       record.Username,
		Provider:       provider,
	}, nil
}

// ExchangeCode exchanges a code using the server-side credentials and
// redirect URL of the provider
func (s *Service) ExchangeCode(ctx context.Context, provider models.Provider, code string) (*models.ExchangeResult, error) {
	p, err := s.registry.Get(provider)
	if err != nil {
		return nil, err
	}
	clientID, clientSecret, redirectURL := p.Credentials()
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, fmt.Errorf("%w: %s client credentials are not set", models.ErrConfiguration, provider)
	}
	return s.Exchange(ctx, provider, models.ExchangeRequest{
		Code:         code,
		RedirectURI:  redirectURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}

// Resolve applies server-side configuration to a request received over
// HTTP. Configured client credentials replace the submitted ones; the
// redirect URI is only filled in when the caller sent none.
func (s *Service) Resolve(provider models.Provider, req models.ExchangeRequest) models.ExchangeRequest {
	p, err := s.registry.Get(provider)
	if err != nil {
		return req
	}
	clientID, clientSecret, redirectURL := p.Credentials()
	if clientID != "" && clientSecret != "" {
		if (req.ClientID != "" && req.ClientID != clientID) || (req.ClientSecret != "" && req.ClientSecret != clientSecret) {
			logger.Warn("Submitted client credentials differ from configured ones, using configured",
				zap.String("provider", provider.String()),
				zap.String("submitted_client_id", req.ClientID),
			)
		}
		req.ClientID = clientID
		req.ClientSecret = clientSecret
	}
	if req.RedirectURI == "" {
		req.RedirectURI = redirectURL
	}
	return req
}

// StoreToken upserts a record obtained outside of the exchange flow
func (s *Service) StoreToken(ctx context.Context, record models.TokenRecord) error {
	var missing []string
	if record.AccessToken == "" {
		missing = append(missing, "accessToken")
	}
	if record.ProviderUserID == "" {
		missing = append(missing, "userId")
	}
	if record.Username == "" {
		missing = append(missing, "username")
	}
	if len(missing) > 0 {
		return models.MissingParameters(missing...)
	}
	if err := s.store.Upsert(ctx, record); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	logger.Info("Stored token",
		zap.String("provider", record.Provider.String()),
		zap.String("user_id", record.ProviderUserID),
	)
	return nil
}

// Providers lists the providers an exchange can run against
func (s *Service) Providers() []models.Provider {
	return s.registry.Names()
}

// Module provides the exchange service
var Module = fx.Module("exchange",
	fx.Provide(NewService),
)

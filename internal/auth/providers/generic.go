package providers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/brizzai/social-manager/internal/auth/constants"
	"github.com/brizzai/social-manager/internal/auth/models"
	"github.com/brizzai/social-manager/internal/config"
	"github.com/brizzai/social-manager/internal/logger"
	"github.com/brizzai/social-manager/internal/requester"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Doer executes outbound requests. *requester.HTTPRequester satisfies it.
type Doer interface {
	Do(ctx context.Context, build requester.RequestBuilder) (*requester.Response, error)
}

// GenericProvider talks to any OAuth provider described by a ProviderConfig
type GenericProvider struct {
	name         models.Provider
	cfg          config.ProviderConfig
	doer         Doer
	oauth2Config *oauth2.Config
}

// Ensure GenericProvider implements Provider
var _ Provider = (*GenericProvider)(nil)

// NewGenericProvider creates a provider from its configuration
func NewGenericProvider(name models.Provider, cfg config.ProviderConfig, doer Doer) *GenericProvider {
	if cfg.ClientIDParam == "" {
		cfg.ClientIDParam = "client_id"
	}
	return &GenericProvider{
		name: name,
		cfg:  cfg,
		doer: doer,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

func (p *GenericProvider) Name() models.Provider {
	return p.name
}

func (p *GenericProvider) DisplayName() string {
	if p.cfg.DisplayName != "" {
		return p.cfg.DisplayName
	}
	return string(p.name)
}

func (p *GenericProvider) Credentials() (string, string, string) {
	return p.cfg.ClientID, p.cfg.ClientSecret, p.cfg.RedirectURL
}

// AuthURL builds the authorization redirect. Scopes are comma separated and
// the client id is repeated under the provider's own parameter name.
func (p *GenericProvider) AuthURL(state string) (string, error) {
	if p.cfg.AuthURL == "" || p.cfg.ClientID == "" {
		return "", fmt.Errorf("%w: %s needs auth_url and client_id", models.ErrConfiguration, p.name)
	}
	opts := []oauth2.AuthCodeOption{}
	if len(p.cfg.Scopes) > 0 {
		opts = append(opts, oauth2.SetAuthURLParam("scope", strings.Join(p.cfg.Scopes, ",")))
	}
	if p.cfg.ClientIDParam != "client_id" {
		opts = append(opts, oauth2.SetAuthURLParam(p.cfg.ClientIDParam, p.cfg.ClientID))
	}
	return p.oauth2Config.AuthCodeURL(state, opts...), nil
}

// ExchangeCode posts the authorization code to the token endpoint
func (p *GenericProvider) ExchangeCode(ctx context.Context, req models.ExchangeRequest) (*oauth2.Token, error) {
	if missing := req.Missing(); len(missing) > 0 {
		return nil, models.MissingParameters(missing...)
	}

	form := url.Values{}
	form.Set(p.cfg.ClientIDParam, req.ClientID)
	form.Set("client_secret", req.ClientSecret)
	form.Set("grant_type", constants.GrantTypeAuthorizationCode)
	form.Set("redirect_uri", req.RedirectURI)
	form.Set("code", req.Code)

	resp, err := p.doer.Do(ctx, requester.FormRequest(p.cfg.TokenURL, form, p.cfg.TokenParamsInQuery))
	if err != nil {
		return nil, p.transportError("token exchange", err)
	}
	if err := p.responseError(resp); err != nil {
		return nil, err
	}

	accessToken := gjson.GetBytes(resp.Body, p.cfg.AccessTokenPath).String()
	userID := gjson.GetBytes(resp.Body, p.cfg.UserIDPath).String()
	if accessToken == "" || userID == "" {
		logger.Warn("Token response is missing fields",
			zap.String("provider", p.name.String()),
			zap.Bool("has_access_token", accessToken != ""),
			zap.Bool("has_user_id", userID != ""),
		)
		return nil, fmt.Errorf("%w: %s token response lacks access token or user id", models.ErrIncompleteProviderResponse, p.name)
	}

	token := &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   constants.TokenType,
	}
	return token.WithExtra(map[string]interface{}{ExtraUserID: userID}), nil
}

// FetchProfile reads the username. Providers without a profile endpoint
// derive it from the user id through UsernameFallback.
func (p *GenericProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (*models.Profile, error) {
	userID := UserID(token)
	if token == nil || token.AccessToken == "" || userID == "" {
		return nil, fmt.Errorf("%w: no access token to fetch the %s profile with", models.ErrIncompleteProviderResponse, p.name)
	}

	if p.cfg.ProfileURL == "" {
		username := userID
		if p.cfg.UsernameFallback != "" {
			username = fmt.Sprintf(p.cfg.UsernameFallback, userID)
		}
		return &models.Profile{ID: userID, Username: username}, nil
	}

	target := strings.ReplaceAll(p.cfg.ProfileURL, constants.UserIDPlaceholder, url.PathEscape(userID))
	auth := requester.NewAccessTokenAuth(p.cfg.ProfileTokenParam, token.AccessToken)

	resp, err := p.doer.Do(ctx, requester.GetRequest(target, auth))
	if err != nil {
		return nil, p.transportError("profile request", err)
	}
	if err := p.responseError(resp); err != nil {
		return nil, err
	}

	username := gjson.GetBytes(resp.Body, p.cfg.UsernamePath).String()
	if username == "" {
		return nil, fmt.Errorf("%w: %s profile has no username", models.ErrIncompleteProviderResponse, p.name)
	}
	return &models.Profile{ID: userID, Username: username}, nil
}

// responseError turns a provider error body or a non-2xx status into a
// *models.ProviderError
func (p *GenericProvider) responseError(resp *requester.Response) error {
	for _, path := range p.cfg.ErrorPaths {
		if msg := gjson.GetBytes(resp.Body, path).String(); msg != "" {
			return &models.ProviderError{Provider: p.name, StatusCode: resp.StatusCode, Message: msg}
		}
	}
	if !resp.IsSuccess() {
		return &models.ProviderError{Provider: p.name, StatusCode: resp.StatusCode}
	}
	if !gjson.ValidBytes(resp.Body) {
		return fmt.Errorf("%w: %s answered with a body that is not JSON", models.ErrIncompleteProviderResponse, p.name)
	}
	return nil
}

func (p *GenericProvider) transportError(step string, err error) error {
	logger.Error("Provider request failed",
		zap.String("provider", p.name.String()),
		zap.String("step", step),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, requester.ErrTimeout):
		return fmt.Errorf("%w: %s %s: %v", models.ErrProviderTimeout, p.name, step, err)
	case errors.Is(err, requester.ErrTransport):
		return fmt.Errorf("%w: %s %s: %v", models.ErrNetworkFailure, p.name, step, err)
	default:
		return fmt.Errorf("%s %s failed: %w", p.name, step, err)
	}
}

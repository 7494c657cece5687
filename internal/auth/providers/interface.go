package providers

import (
	"context"

	"github.com/brizzai/social-manager/internal/auth/models"
	"golang.org/x/oauth2"
)

// ExtraUserID is the oauth2.Token extra key holding the provider user id
const ExtraUserID = "provider_user_id"

// Provider defines the interface that all OAuth providers must implement
type Provider interface {
	// Name returns the provider identifier used in routes and records
	Name() models.Provider

	// DisplayName returns a human readable name
	DisplayName() string

	// AuthURL returns the authorization URL the user is sent to
	AuthURL(state string) (string, error)

	// ExchangeCode trades an authorization code for an access token. The
	// provider user id is attached as the ExtraUserID token extra.
	ExchangeCode(ctx context.Context, req models.ExchangeRequest) (*oauth2.Token, error)

	// FetchProfile resolves the username behind an access token
	FetchProfile(ctx context.Context, token *oauth2.Token) (*models.Profile, error)

	// Credentials returns the server-side client id, secret and redirect URL
	Credentials() (clientID, clientSecret, redirectURL string)
}

// UserID reads the provider user id attached by ExchangeCode
func UserID(token *oauth2.Token) string {
	if token == nil {
		return ""
	}
	id, _ := token.Extra(ExtraUserID).(string)
	return id
}

package models

import (
	"fmt"
	"strings"
)

// Provider identifies an external social platform
type Provider string

const (
	ProviderInstagram Provider = "instagram"
	ProviderTikTok    Provider = "tiktok"
	ProviderFacebook  Provider = "facebook"
)

// KnownProviders lists the providers a TokenRecord may carry
var KnownProviders = []Provider{ProviderInstagram, ProviderTikTok, ProviderFacebook}

// ParseProvider validates a provider name taken from a URL or request body
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range KnownProviders {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, name)
}

func (p Provider) String() string {
	return string(p)
}

// TokenRecord is what the token store keeps per provider user id
type TokenRecord struct {
	ProviderUserID string   `json:"userId" yaml:"user_id"`
	AccessToken    string   `json:"-" yaml:"-"`
	Username       string   `json:"username" yaml:"username"`
	Provider       Provider `json:"provider" yaml:"provider"`
}

// Connection is the public view of a TokenRecord, without the access token
type Connection struct {
	ProviderUserID string   `json:"userId" yaml:"user_id"`
	Username       string   `json:"username" yaml:"username"`
	Provider       Provider `json:"provider" yaml:"provider"`
}

// Connection strips the secret part of the record
func (r TokenRecord) Connection() Connection {
	return Connection{
		ProviderUserID: r.ProviderUserID,
		Username:       r.Username,
		Provider:       r.Provider,
	}
}

// ConnectionStatus answers a single connection check
type ConnectionStatus struct {
	IsConnected bool   `json:"isConnected"`
	Username    string `json:"username,omitempty"`
}

// ExchangeRequest carries the inputs of an authorization-code exchange
type ExchangeRequest struct {
	Code         string
	RedirectURI  string
	ClientID     string
	ClientSecret string
}

// Missing returns the names of the empty fields, in wire naming
func (r ExchangeRequest) Missing() []string {
	var missing []string
	if r.Code == "" {
		missing = append(missing, "code")
	}
	if r.RedirectURI == "" {
		missing = append(missing, "redirect_uri")
	}
	if r.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if r.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	return missing
}

// ExchangeResult is returned after a successful exchange
type ExchangeResult struct {
	ProviderUserID string
	Username       string
	Provider       Provider
}

// Profile is the subset of the provider profile we keep
type Profile struct {
	ID       string
	Username string
}

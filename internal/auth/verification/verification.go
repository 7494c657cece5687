// Package verification issues the process-wide verification token used for
// the webhook handshake and as the OAuth state value.
package verification

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/brizzai/social-manager/internal/auth/constants"
	"github.com/brizzai/social-manager/internal/auth/models"
	"go.uber.org/fx"
)

// Issuer holds one random token for the lifetime of the process.
// The token is never rotated and is lost on restart.
type Issuer struct {
	token string
}

// New generates the token
func New() (*Issuer, error) {
	b := make([]byte, constants.VerificationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}
	return &Issuer{token: hex.EncodeToString(b)}, nil
}

// NewWithToken builds an issuer around a known token
func NewWithToken(token string) *Issuer {
	return &Issuer{token: token}
}

// Token returns the issued token
func (i *Issuer) Token() string {
	return i.token
}

// Verify answers a webhook subscription handshake. On success the
// challenge is returned unchanged.
func (i *Issuer) Verify(mode, token, challenge string) (string, bool) {
	if mode != constants.HubModeSubscribe || !i.matches(token) {
		return "", false
	}
	return challenge, true
}

// ValidateState checks the state echoed back by a provider redirect
func (i *Issuer) ValidateState(_ context.Context, state string) error {
	if !i.matches(state) {
		return models.ErrStateMismatch
	}
	return nil
}

func (i *Issuer) matches(candidate string) bool {
	if candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(i.token)) == 1
}

// Module provides the Issuer
var Module = fx.Module("verification",
	fx.Provide(New),
)

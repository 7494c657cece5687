package constants

import "time"

const (
	// TokenType for Bearer authentication
	TokenType = "Bearer"

	// AuthHeaderName is the name of the Authorization header
	AuthHeaderName = "Authorization"

	// AuthHeaderPrefix is the prefix for the Authorization header value
	AuthHeaderPrefix = "Bearer "

	// GrantTypeAuthorizationCode is the only grant the exchange performs
	GrantTypeAuthorizationCode = "authorization_code"

	// UserIDPlaceholder is replaced in profile URLs with the provider user id
	UserIDPlaceholder = "{user_id}"
)

// Webhook handshake query parameters
const (
	HubModeParam        = "hub.mode"
	HubVerifyTokenParam = "hub.verify_token"
	HubChallengeParam   = "hub.challenge"
	HubModeSubscribe    = "subscribe"
)

// Callback redirect query parameters
const (
	CodeParam             = "code"
	StateParam            = "state"
	ErrorParam            = "error"
	ErrorReasonParam      = "error_reason"
	ErrorDescriptionParam = "error_description"
)

// VerificationTokenBytes is the size of the random webhook verification token
const VerificationTokenBytes = 16

// Default navigation delays after the callback reaches a terminal state
const (
	DefaultSuccessDelay = 2 * time.Second
	DefaultErrorDelay   = 5 * time.Second
)

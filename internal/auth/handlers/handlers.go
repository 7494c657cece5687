package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/brizzai/social-manager/internal/auth/callback"
	"github.com/brizzai/social-manager/internal/auth/connections"
	"github.com/brizzai/social-manager/internal/auth/constants"
	"github.com/brizzai/social-manager/internal/auth/exchange"
	"github.com/brizzai/social-manager/internal/auth/models"
	"github.com/brizzai/social-manager/internal/auth/providers"
	"github.com/brizzai/social-manager/internal/auth/store"
	"github.com/brizzai/social-manager/internal/auth/verification"
	"github.com/brizzai/social-manager/internal/logger"
	"github.com/brizzai/social-manager/internal/utils"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// RootMessage is the liveness answer of GET /
const RootMessage = "Social Media Manager Server is running!"

// Handler handles the social connection HTTP API
type Handler struct {
	issuer      *verification.Issuer
	exchange    *exchange.Service
	connections *connections.Service
	callbacks   *callback.Controller
	registry    *providers.Registry
	now         func() time.Time
}

type HandlerParams struct {
	fx.In

	Issuer      *verification.Issuer
	Exchange    *exchange.Service
	Connections *connections.Service
	Callbacks   *callback.Controller
	Registry    *providers.Registry
}

// NewHandler creates a new Handler instance
func NewHandler(p HandlerParams) *Handler {
	return &Handler{
		issuer:      p.Issuer,
		exchange:    p.Exchange,
		connections: p.Connections,
		callbacks:   p.Callbacks,
		registry:    p.Registry,
		now:         time.Now,
	}
}

// ExchangeTokenRequest is the body of POST /auth/{provider}/exchange-token.
// TikTok clients send client_key instead of client_id.
type ExchangeTokenRequest struct {
	Code         string `json:"code"`
	RedirectURI  string `json:"redirect_uri"`
	ClientID     string `json:"client_id"`
	ClientKey    string `json:"client_key"`
	ClientSecret string `json:"client_secret"`
}

type ExchangeTokenResponse struct {
	Success  bool   `json:"success"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type StoreTokenRequest struct {
	AccessToken string `json:"accessToken"`
	UserID      string `json:"userId"`
	Username    string `json:"username"`
}

type SocialRequest struct {
	UserID string          `json:"userId"`
	Data   json.RawMessage `json:"data"`
}

type SocialResponse struct {
	Success bool       `json:"success"`
	Data    SocialPost `json:"data"`
}

type SocialPost struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// HandleRoot handles GET /
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	utils.WriteText(w, http.StatusOK, RootMessage)
}

// HandleWebhookVerification answers the subscription handshake
func (h *Handler) HandleWebhookVerification(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	challenge, ok := h.issuer.Verify(
		q.Get(constants.HubModeParam),
		q.Get(constants.HubVerifyTokenParam),
		q.Get(constants.HubChallengeParam),
	)
	if !ok {
		logger.Warn("Webhook verification failed", zap.String("mode", q.Get(constants.HubModeParam)))
		utils.WriteText(w, http.StatusForbidden, "Verification failed")
		return
	}
	logger.Info("Webhook verified")
	utils.WriteText(w, http.StatusOK, challenge)
}

// HandleVerificationToken exposes the process-wide token
func (h *Handler) HandleVerificationToken(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, map[string]string{"token": h.issuer.Token()})
}

// HandleProviders lists the providers an exchange can run against
func (h *Handler) HandleProviders(w http.ResponseWriter, r *http.Request) {
	type providerInfo struct {
		Name        models.Provider `json:"name"`
		DisplayName string          `json:"displayName"`
	}
	list := []providerInfo{}
	for _, name := range h.registry.Names() {
		p, err := h.registry.Get(name)
		if err != nil {
			continue
		}
		list = append(list, providerInfo{Name: name, DisplayName: p.DisplayName()})
	}
	utils.WriteJSON(w, map[string]any{"providers": list})
}

// HandleExchangeToken handles POST /auth/{provider}/exchange-token
func (h *Handler) HandleExchangeToken(w http.ResponseWriter, r *http.Request) {
	provider, err := models.ParseProvider(r.PathValue("provider"))
	if err != nil {
		utils.WriteErr(w, err)
		return
	}

	// an empty body is an empty request and fails on the missing fields
	var body ExchangeTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		utils.WriteError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	clientID := body.ClientID
	if clientID == "" {
		clientID = body.ClientKey
	}
	req := h.exchange.Resolve(provider, models.ExchangeRequest{
		Code:         body.Code,
		RedirectURI:  body.RedirectURI,
		ClientID:     clientID,
		ClientSecret: body.ClientSecret,
	})

	result, err := h.exchange.Exchange(r.Context(), provider, req)
	if err != nil {
		utils.WriteErr(w, err)
		return
	}

	utils.WriteJSON(w, ExchangeTokenResponse{
		Success:  true,
		UserID:   result.ProviderUserID,
		Username: result.Username,
	})
}

// HandleStoreToken handles POST /auth/{provider}/store-token
func (h *Handler) HandleStoreToken(w http.ResponseWriter, r *http.Request) {
	provider, err := models.ParseProvider(r.PathValue("provider"))
	if err != nil {
		utils.WriteErr(w, err)
		return
	}

	var body StoreTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	err = h.exchange.StoreToken(r.Context(), models.TokenRecord{
		ProviderUserID: body.UserID,
		AccessToken:    body.AccessToken,
		Username:       body.Username,
		Provider:       provider,
	})
	if errors.Is(err, models.ErrMissingParameter) {
		utils.WriteJSONStatus(w, http.StatusBadRequest, messageResponse{Message: "Missing access token, user ID, or username"})
		return
	}
	if err != nil {
		utils.WriteErr(w, err)
		return
	}
	utils.WriteJSON(w, messageResponse{Message: "Token stored successfully"})
}

// HandleUserTokens handles GET /auth/user-tokens
func (h *Handler) HandleUserTokens(w http.ResponseWriter, r *http.Request) {
	list, err := h.connections.List(r.Context())
	if err != nil {
		utils.WriteErr(w, err)
		return
	}
	utils.WriteJSON(w, map[string]any{"tokens": list})
}

// HandleCheckConnection handles GET /auth/check-connection/{provider}/{userId}.
// Unknown providers are simply not connected.
func (h *Handler) HandleCheckConnection(w http.ResponseWriter, r *http.Request) {
	provider := models.Provider(r.PathValue("provider"))
	status, err := h.connections.Check(r.Context(), provider, r.PathValue("userId"))
	if err != nil {
		utils.WriteErr(w, err)
		return
	}
	utils.WriteJSON(w, status)
}

// HandleDisconnect handles DELETE /auth/connections/{provider}/{userId}
func (h *Handler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	provider := models.Provider(r.PathValue("provider"))
	err := h.connections.Disconnect(r.Context(), provider, r.PathValue("userId"))
	if errors.Is(err, store.ErrNotFound) {
		utils.WriteError(w, "Connection not found", http.StatusNotFound)
		return
	}
	if err != nil {
		utils.WriteErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleLogin redirects the browser to the provider's authorization page
// with the verification token as state
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	provider, err := models.ParseProvider(r.PathValue("provider"))
	if err != nil {
		utils.WriteErr(w, err)
		return
	}
	p, err := h.registry.Get(provider)
	if err != nil {
		utils.WriteErr(w, err)
		return
	}
	target, err := p.AuthURL(h.issuer.Token())
	if err != nil {
		utils.WriteErr(w, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// HandleCallback renders the result of a provider redirect
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	provider, err := models.ParseProvider(r.PathValue("provider"))
	if err != nil {
		utils.WriteErr(w, err)
		return
	}

	outcome := h.callbacks.Run(r.Context(), provider, r.URL.Query())

	name := provider.String()
	if p, err := h.registry.Get(provider); err == nil {
		name = p.DisplayName()
	}

	status := http.StatusOK
	if outcome.Status == callback.StatusError {
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := callbackPageTemplate.Execute(w, callbackPage{
		ProviderName: name,
		Status:       string(outcome.Status),
		Message:      outcome.Message,
		SettingsURL:  outcome.SettingsURL,
		DelaySeconds: int(math.Ceil(outcome.Delay.Seconds())),
	}); err != nil {
		logger.Error("Failed to render callback page", zap.Error(err))
	}
}

// HandleSocialAPI handles POST /api/social/{provider}/{endpoint}. The
// platform API is not called; a mock post is returned.
func (h *Handler) HandleSocialAPI(w http.ResponseWriter, r *http.Request) {
	provider := models.Provider(r.PathValue("provider"))
	endpoint := r.PathValue("endpoint")

	var body SocialRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	conn, err := h.connections.Lookup(r.Context(), body.UserID)
	if errors.Is(err, store.ErrNotFound) {
		utils.WriteJSONStatus(w, http.StatusUnauthorized, messageResponse{Message: "User not authenticated"})
		return
	}
	if err != nil {
		utils.WriteErr(w, err)
		return
	}
	if conn.Provider != provider {
		utils.WriteJSONStatus(w, http.StatusUnauthorized, messageResponse{Message: "Provider mismatch"})
		return
	}

	logger.Info("Social API call",
		zap.String("provider", provider.String()),
		zap.String("endpoint", endpoint),
		zap.String("user_id", body.UserID),
		zap.Int("data_bytes", len(body.Data)),
	)

	utils.WriteJSON(w, SocialResponse{
		Success: true,
		Data: SocialPost{
			ID:        uuid.NewString(),
			Timestamp: h.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		},
	})
}

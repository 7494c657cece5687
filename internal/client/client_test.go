package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/brizzai/social-manager/internal/auth"
	"github.com/brizzai/social-manager/internal/auth/callback"
	"github.com/brizzai/social-manager/internal/auth/connections"
	"github.com/brizzai/social-manager/internal/auth/exchange"
	"github.com/brizzai/social-manager/internal/auth/handlers"
	"github.com/brizzai/social-manager/internal/auth/models"
	"github.com/brizzai/social-manager/internal/auth/providers"
	"github.com/brizzai/social-manager/internal/auth/store"
	"github.com/brizzai/social-manager/internal/auth/verification"
	"github.com/brizzai/social-manager/internal/config"
	"github.com/brizzai/social-manager/internal/requester"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "feedfacefeedfacefeedfacefeedface"

// newBackend runs the real API over an Instagram stub that accepts the
// code "abc" from the configured client only
func newBackend(t *testing.T) (*Client, *store.MemoryStore) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("code") != "abc" || r.PostForm.Get("client_id") != "server-id" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error_message":"Invalid authorization code"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok1","user_id":"u1"}`))
	})
	mux.HandleFunc("GET /u1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"u1","username":"alice"}`))
	})
	provider := httptest.NewServer(mux)
	t.Cleanup(provider.Close)

	instagram := config.DefaultProviders()[config.ProviderInstagram]
	instagram.TokenURL = provider.URL + "/oauth/access_token"
	instagram.ProfileURL = provider.URL + "/{user_id}?fields=id,username"
	instagram.ClientID = "server-id"
	instagram.ClientSecret = "server-secret"
	instagram.RedirectURL = "http://localhost:3000/auth/instagram/callback"

	doer := requester.New(&http.Client{Timeout: time.Second}, requester.RetryPolicy{MaxAttempts: 1})
	registry := providers.NewRegistry(providers.NewGenericProvider(models.ProviderInstagram, instagram, doer))
	tokens := store.NewMemoryStore()
	issuer := verification.NewWithToken(testToken)
	exchanges := exchange.NewService(registry, tokens)

	h := handlers.NewHandler(handlers.HandlerParams{
		Issuer:      issuer,
		Exchange:    exchanges,
		Connections: connections.NewService(tokens),
		Callbacks:   callback.NewController(issuer, exchanges, nil),
		Registry:    registry,
	})
	svc := auth.NewService(&config.CORSConfig{}, h)
	apiMux := http.NewServeMux()
	svc.RegisterRoutes(apiMux)
	wrapped, err := svc.WrapWithMiddleware(apiMux)
	require.NoError(t, err)

	api := httptest.NewServer(wrapped)
	t.Cleanup(api.Close)

	c := New(&config.ClientConfig{BaseURL: api.URL + "/", Timeout: time.Second})
	return c, tokens
}

func TestClient_Connections(t *testing.T) {
	c, tokens := newBackend(t)
	ctx := context.Background()

	list, err := c.Connections(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, tokens.Upsert(ctx, models.TokenRecord{
		ProviderUserID: "u1", AccessToken: "tok1", Username: "alice", Provider: models.ProviderInstagram,
	}))

	list, err = c.Connections(ctx)
	require.NoError(t, err)
	want := []models.Connection{{ProviderUserID: "u1", Username: "alice", Provider: models.ProviderInstagram}}
	if diff := cmp.Diff(want, list); diff != "" {
		t.Errorf("Connections() mismatch (-want +got):\n%s", diff)
	}

	status, err := c.Check(ctx, models.ProviderInstagram, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionStatus{IsConnected: true, Username: "alice"}, status)

	status, err = c.Check(ctx, models.ProviderTikTok, "u1")
	require.NoError(t, err)
	assert.False(t, status.IsConnected)

	err = c.Disconnect(ctx, models.ProviderTikTok, "u1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, c.Disconnect(ctx, models.ProviderInstagram, "u1"))
	assert.Zero(t, tokens.Len())
}

func TestClient_Providers(t *testing.T) {
	c, _ := newBackend(t)

	list, err := c.Providers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []ProviderInfo{{Name: models.ProviderInstagram, DisplayName: "Instagram"}}, list)
}

func TestClient_ValidateState(t *testing.T) {
	c, _ := newBackend(t)
	ctx := context.Background()

	token, err := c.VerificationToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, testToken, token)

	assert.NoError(t, c.ValidateState(ctx, testToken))
	assert.ErrorIs(t, c.ValidateState(ctx, "forged"), models.ErrStateMismatch)
	assert.ErrorIs(t, c.ValidateState(ctx, ""), models.ErrStateMismatch)
}

func TestClient_ExchangeCode(t *testing.T) {
	c, tokens := newBackend(t)
	ctx := context.Background()

	result, err := c.ExchangeCode(ctx, models.ProviderInstagram, "abc")
	require.NoError(t, err)
	assert.Equal(t, &models.ExchangeResult{
		ProviderUserID: "u1",
		Username:       "alice",
		Provider:       models.ProviderInstagram,
	}, result)
	assert.Equal(t, 1, tokens.Len())

	_, err = c.ExchangeCode(ctx, models.ProviderInstagram, "bad")
	var perr *models.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Invalid authorization code", perr.Message)
}

func TestClient_DrivesCallbackController(t *testing.T) {
	c, _ := newBackend(t)
	controller := callback.NewController(c, c, &config.CallbackConfig{SettingsURL: "http://localhost:8080/settings"})

	outcome := controller.Run(context.Background(), models.ProviderInstagram,
		url.Values{"code": {"abc"}, "state": {testToken}})
	assert.Equal(t, callback.StatusSuccess, outcome.Status)
	assert.Equal(t, "Successfully connected as alice.", outcome.Message)

	outcome = controller.Run(context.Background(), models.ProviderInstagram,
		url.Values{"code": {"bad"}, "state": {testToken}})
	assert.Equal(t, callback.StatusError, outcome.Status)
	assert.Equal(t, "Authentication failed: Invalid authorization code", outcome.Message)

	outcome = controller.Run(context.Background(), models.ProviderInstagram,
		url.Values{"code": {"abc"}, "state": {"forged"}})
	assert.Equal(t, callback.MessageStateMismatch, outcome.Message)
}

func TestClient_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	target := server.URL
	server.Close()

	c := NewWithDoer(target, requester.New(&http.Client{Timeout: time.Second}, requester.RetryPolicy{MaxAttempts: 1}))
	_, err := c.Connections(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAPIError_Messages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "error body", body: `{"error":true,"error_message":"boom"}`, want: "boom"},
		{name: "message body", body: `{"message":"User not authenticated"}`, want: "User not authenticated"},
		{name: "plain text", body: "Verification failed\n", want: "Verification failed"},
		{name: "empty", body: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := apiError(&requester.Response{StatusCode: http.StatusForbidden, Body: []byte(tt.body)})
			assert.Equal(t, tt.want, err.Message)
		})
	}
}

package callback

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brizzai/social-manager/internal/auth/models"
	"github.com/brizzai/social-manager/internal/auth/verification"
	"github.com/brizzai/social-manager/internal/config"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

type fakeExchanger struct {
	calls  atomic.Int32
	result *models.ExchangeResult
	err    error
}

func (f *fakeExchanger) ExchangeCode(_ context.Context, provider models.Provider, code string) (*models.ExchangeResult, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

var testCallbackConfig = &config.CallbackConfig{
	SettingsURL:  "http://localhost:8080/settings",
	SuccessDelay: 2 * time.Second,
	ErrorDelay:   5 * time.Second,
}

func TestController_Run(t *testing.T) {
	issuer := verification.NewWithToken("state-token")

	tests := []struct {
		name      string
		query     url.Values
		exchanger *fakeExchanger
		want      Outcome
		wantCalls int32
	}{
		{
			name:      "success",
			query:     url.Values{"code": {"abc"}, "state": {"state-token"}},
			exchanger: &fakeExchanger{result: &models.ExchangeResult{ProviderUserID: "u1", Username: "alice"}},
			want: Outcome{
				Status:   StatusSuccess,
				Message:  "Successfully connected as alice.",
				Username: "alice",
				Delay:    2 * time.Second,
			},
			wantCalls: 1,
		},
		{
			name:      "provider error with description",
			query:     url.Values{"error": {"access_denied"}, "error_reason": {"user_denied"}, "error_description": {"The user denied your request."}},
			exchanger: &fakeExchanger{},
			want: Outcome{
				Status:  StatusError,
				Message: "Authentication failed: The user denied your request.",
				Delay:   5 * time.Second,
			},
		},
		{
			name:      "provider error with reason only",
			query:     url.Values{"error": {"access_denied"}, "error_reason": {"user_denied"}, "code": {"abc"}},
			exchanger: &fakeExchanger{},
			want: Outcome{
				Status:  StatusError,
				Message: "Authentication failed: user_denied",
				Delay:   5 * time.Second,
			},
		},
		{
			name:      "provider error bare",
			query:     url.Values{"error": {"server_error"}},
			exchanger: &fakeExchanger{},
			want:      Outcome{Status: StatusError, Message: "Authentication failed: server_error", Delay: 5 * time.Second},
		},
		{
			name:      "missing code",
			query:     url.Values{"state": {"state-token"}},
			exchanger: &fakeExchanger{},
			want:      Outcome{Status: StatusError, Message: MessageMissingCode, Delay: 5 * time.Second},
		},
		{
			name:      "state mismatch",
			query:     url.Values{"code": {"abc"}, "state": {"forged"}},
			exchanger: &fakeExchanger{},
			want:      Outcome{Status: StatusError, Message: MessageStateMismatch, Delay: 5 * time.Second},
		},
		{
			name:      "missing state",
			query:     url.Values{"code": {"abc"}},
			exchanger: &fakeExchanger{},
			want:      Outcome{Status: StatusError, Message: MessageStateMismatch, Delay: 5 * time.Second},
		},
		{
			name:  "exchange provider error",
			query: url.Values{"code": {"abc"}, "state": {"state-token"}},
			exchanger: &fakeExchanger{err: fmt.Errorf("wrapped: %w", &models.ProviderError{
				Provider: models.ProviderInstagram, StatusCode: 400, Message: "Invalid authorization code",
			})},
			want:      Outcome{Status: StatusError, Message: "Authentication failed: Invalid authorization code", Delay: 5 * time.Second},
			wantCalls: 1,
		},
		{
			name:      "exchange timeout",
			query:     url.Values{"code": {"abc"}, "state": {"state-token"}},
			exchanger: &fakeExchanger{err: models.ErrProviderTimeout},
			want:      Outcome{Status: StatusError, Message: "Authentication failed: " + models.ErrProviderTimeout.Error(), Delay: 5 * time.Second},
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(issuer, tt.exchanger, testCallbackConfig)
			got := c.Run(context.Background(), models.ProviderInstagram, tt.query)

			want := tt.want
			want.Provider = models.ProviderInstagram
			want.SettingsURL = testCallbackConfig.SettingsURL
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("outcome mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.wantCalls, tt.exchanger.calls.Load())
		})
	}
}

func TestFlow_RunsOnce(t *testing.T) {
	exchanger := &fakeExchanger{result: &models.ExchangeResult{Username: "alice"}}
	c := NewController(verification.NewWithToken("s"), exchanger, nil)

	flow := c.Start(models.ProviderTikTok, url.Values{"code": {"abc"}, "state": {"s"}})
	assert.Equal(t, StatusLoading, flow.Status())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, StatusSuccess, flow.Run(context.Background()).Status)
		}()
	}
	wg.Wait()

	assert.Equal(t, StatusSuccess, flow.Status())
	assert.Equal(t, int32(1), exchanger.calls.Load())
}

func TestNewController_DefaultDelays(t *testing.T) {
	c := NewController(verification.NewWithToken("s"), &fakeExchanger{err: errors.New("boom")}, nil)
	out := c.Run(context.Background(), models.ProviderTikTok, url.Values{"code": {"abc"}, "state": {"s"}})
	assert.Equal(t, StatusError, out.Status)
	assert.Equal(t, "Authentication failed: boom", out.Message)
	assert.Equal(t, 5*time.Second, out.Delay)
}

package requester

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// FormRequest builds a POST carrying form values either as an
// application/x-www-form-urlencoded body or in the query string
func FormRequest(target string, form url.Values, inQuery bool) RequestBuilder {
	return func(ctx context.Context) (*http.Request, error) {
		if inQuery {
			u, err := url.Parse(target)
			if err != nil {
				return nil, fmt.Errorf("invalid url %q: %w", target, err)
			}
			q := u.Query()
			for key, values := range form {
				for _, v := range values {
					q.Add(key, v)
				}
			}
			u.RawQuery = q.Encode()
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
			if err != nil {
				return nil, fmt.Errorf("failed to create HTTP request: %w", err)
			}
			req.Header.Set("Accept", "application/json")
			return req, nil
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")
		return req, nil
	}
}

// GetRequest builds a GET, optionally authenticated
func GetRequest(target string, auth AuthManager) RequestBuilder {
	return func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if auth != nil {
			if err := auth.ApplyAuth(req); err != nil {
				return nil, fmt.Errorf("failed to apply auth: %w", err)
			}
		}
		return req, nil
	}
}

// JSONRequest builds a request with a JSON encoded body
func JSONRequest(method, target string, body any) RequestBuilder {
	return func(ctx context.Context) (*http.Request, error) {
		var buf bytes.Buffer
		if body != nil {
			if err := json.NewEncoder(&buf).Encode(body); err != nil {
				return nil, fmt.Errorf("failed to encode request body: %w", err)
			}
		}
		req, err := http.NewRequestWithContext(ctx, method, target, &buf)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}
}

package middleware

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/brizzai/social-manager/internal/config"
	"github.com/brizzai/social-manager/internal/logger"
	"github.com/brizzai/social-manager/internal/utils"
	"go.uber.org/zap"
)

// OriginPolicy decides which browser origins may call the API
type OriginPolicy struct {
	origins  map[string]struct{}
	patterns []*regexp.Regexp
}

// NewOriginPolicy compiles the allow-list. Origins match exactly (case
// insensitive), patterns are regular expressions.
func NewOriginPolicy(origins, patterns []string) (*OriginPolicy, error) {
	p := &OriginPolicy{origins: make(map[string]struct{}, len(origins))}
	for _, origin := range origins {
		if origin == "" {
			continue
		}
		p.origins[strings.ToLower(strings.TrimSuffix(origin, "/"))] = struct{}{}
	}
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid origin pattern %q: %w", pattern, err)
		}
		p.patterns = append(p.patterns, re)
	}
	return p, nil
}

// Allowed reports whether origin may call the API. Requests without an
// Origin header come from non-browser clients and are always allowed.
func (p *OriginPolicy) Allowed(origin string) bool {
	if origin == "" {
		return true
	}
	if _, ok := p.origins["*"]; ok {
		return true
	}
	if _, ok := p.origins[strings.ToLower(origin)]; ok {
		return true
	}
	for _, re := range p.patterns {
		if re.MatchString(origin) {
			return true
		}
	}
	return false
}

// CORS applies the origin policy. Disallowed origins get a 403 JSON error,
// preflights a 204.
func CORS(cfg *config.CORSConfig) (func(http.Handler) http.Handler, error) {
	policy, err := NewOriginPolicy(cfg.AllowedOrigins, cfg.AllowedOriginPatterns)
	if err != nil {
		return nil, err
	}
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !policy.Allowed(origin) {
				logger.Warn("Rejected cross-origin request",
					zap.String("origin", origin),
					zap.String("path", r.URL.Path),
				)
				utils.WriteError(w, "Not allowed by CORS", http.StatusForbidden)
				return
			}

			header := w.Header()
			header.Add("Vary", "Origin")
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Methods", methods)
			header.Set("Access-Control-Allow-Headers", headers)
			header.Set("Access-Control-Expose-Headers", "Mcp-Session-Id")
			if cfg.AllowCredentials {
				header.Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps streaming responses working through the recorder
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// RequestLogger logs one line per request
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("Handled request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_addr", r.RemoteAddr),
		)
	})
}

// Recover turns a panic in a handler into a 500
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("Handler panicked",
					zap.Any("panic", v),
					zap.String("path", r.URL.Path),
				)
				utils.WriteError(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

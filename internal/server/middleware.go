package server

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/cvparse/cvparse/internal/common"
)

// requireAPIKey validates the X-API-Key header against the configured key
// set. The derived identity (a SHA-256 prefix, never the raw key) flows
// into the request context for rate limiting and logging.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	valid := make(map[string]struct{}, len(s.cfg.Auth.APIKeys))
	for _, k := range s.cfg.Auth.APIKeys {
		valid[k] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if key == "" {
			s.logger.Warn("request rejected", "reason", "missing_api_key", "path", r.URL.Path)
			writeError(w, http.StatusUnauthorized, "missing X-API-Key header")
			return
		}
		if _, ok := valid[key]; !ok {
			s.logger.Warn("request rejected", "reason", "invalid_api_key", "path", r.URL.Path)
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		identity := keyIdentity(key)
		ctx := common.WithKeyIdentity(r.Context(), identity)
		s.logger.Debug("request authenticated", "key_identity", identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimit enforces a per-identity request budget.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := common.KeyIdentityFromContext(r.Context())
		if !s.limiters.allow(identity) {
			s.logger.Warn("request rejected", "reason", "rate_limited", "key_identity", identity)
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func keyIdentity(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])[:16]
}

// keyLimiters holds one token bucket per key identity. The map only grows
// with the configured key set, so entries are never evicted.
type keyLimiters struct {
	mu       sync.Mutex
	rpm      int
	limiters map[string]*rate.Limiter
}

func newKeyLimiters(rpm int) *keyLimiters {
	return &keyLimiters{rpm: rpm, limiters: make(map[string]*rate.Limiter)}
}

func (kl *keyLimiters) allow(identity string) bool {
	if kl.rpm <= 0 {
		return true
	}
	kl.mu.Lock()
	lim, ok := kl.limiters[identity]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(kl.rpm)/60.0, kl.rpm)
		kl.limiters[identity] = lim
	}
	kl.mu.Unlock()
	return lim.Allow()
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

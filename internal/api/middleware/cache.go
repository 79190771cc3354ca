package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/woodsxwu/WalkInNow/internal/domain/providers"
	"github.com/woodsxwu/WalkInNow/internal/infrastructure/observability"
)

// CacheRule decides whether a path is cacheable and for how long
type CacheRule struct {
	Name  string
	Match func(path string) bool
	TTL   time.Duration
}

// ClinicRecordRule caches GET /api/clinics/{id}. Availability routes under
// the same prefix are never cached.
func ClinicRecordRule(ttl time.Duration) CacheRule {
	return CacheRule{
		Name: "clinic",
		Match: func(path string) bool {
			id, ok := strings.CutPrefix(path, "/api/clinics/")
			return ok && id != "" && !strings.Contains(id, "/")
		},
		TTL: ttl,
	}
}

// CacheMiddleware provides HTTP response caching
type CacheMiddleware struct {
	cache   providers.CacheProvider
	rules   []CacheRule
	metrics *observability.Metrics
}

// NewCacheMiddleware creates a new cache middleware
func NewCacheMiddleware(cache providers.CacheProvider, metrics *observability.Metrics, rules ...CacheRule) *CacheMiddleware {
	return &CacheMiddleware{
		cache:   cache,
		rules:   rules,
		metrics: metrics,
	}
}

// Middleware returns the cache middleware handler
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || m.cache == nil {
			next.ServeHTTP(w, r)
			return
		}

		rule, ok := m.ruleFor(r.URL.Path)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		logger := observability.LoggerFromContext(ctx)
		cacheKey := generateCacheKey(r)

		cached, err := m.cache.Get(ctx, cacheKey)
		if err == nil {
			observability.RecordCacheHit(ctx, m.metrics, rule.Name)
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}
		if !errors.Is(err, providers.ErrCacheMiss) {
			logger.Warn().Err(err).Str("path", r.URL.Path).Msg("response cache unavailable")
		}

		observability.RecordCacheMiss(ctx, m.metrics, rule.Name)
		w.Header().Set("X-Cache", "MISS")

		recorder := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			body:           &bytes.Buffer{},
		}
		next.ServeHTTP(recorder, r)

		if recorder.statusCode != http.StatusOK || recorder.body.Len() == 0 {
			return
		}
		if err := m.cache.Set(ctx, cacheKey, recorder.body.Bytes(), rule.TTL); err != nil {
			logger.Warn().Err(err).Str("path", r.URL.Path).Msg("failed to cache response")
		}
	})
}

func (m *CacheMiddleware) ruleFor(path string) (CacheRule, bool) {
	for _, rule := range m.rules {
		if rule.Match(path) {
			return rule, true
		}
	}
	return CacheRule{}, false
}

// generateCacheKey hashes method, path and query into a fixed-length key
func generateCacheKey(r *http.Request) string {
	key := r.Method + ":" + r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}
	hash := sha256.Sum256([]byte(key))
	return "http:" + hex.EncodeToString(hash[:])
}

// responseRecorder captures the response for caching
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
	written    bool
}

// WriteHeader captures the status code
func (r *responseRecorder) WriteHeader(statusCode int) {
	if !r.written {
		r.statusCode = statusCode
		r.ResponseWriter.WriteHeader(statusCode)
		r.written = true
	}
}

// Write captures the response body and writes to the client
func (r *responseRecorder) Write(data []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}

package mw

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// CachePolicy defines caching behavior for a route prefix.
type CachePolicy struct {
	Prefix       string
	CacheControl string
}

// CacheConfig holds the cache middleware configuration.
type CacheConfig struct {
	// Policies are matched in order; the first matching prefix wins.
	Policies []CachePolicy
	// DefaultPolicy is applied when no policy matches (empty = no header set).
	DefaultPolicy string
}

const (
	cacheShort  = 30 * time.Second
	cacheMedium = 5 * time.Minute
)

// DefaultCacheConfig returns the cache policies of the public API.
// Probes and the admin site are never cached.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		DefaultPolicy: "no-cache",
		Policies: []CachePolicy{
			{Prefix: "/healthz", CacheControl: "no-store"},
			{Prefix: "/readyz", CacheControl: "no-store"},
			{Prefix: "/metrics", CacheControl: "no-store"},
			{Prefix: "/admin", CacheControl: "private, no-store"},

			{Prefix: "/api/v1/status", CacheControl: "no-cache"},
			{Prefix: "/api/v1/stats", CacheControl: fmt.Sprintf("public, max-age=%d", int(cacheMedium.Seconds()))},
			{Prefix: "/api/v1/prices", CacheControl: fmt.Sprintf("public, max-age=%d", int(cacheShort.Seconds()))},
			{Prefix: "/api/v1/products", CacheControl: fmt.Sprintf("public, max-age=%d", int(cacheShort.Seconds()))},
			{Prefix: "/api/openapi", CacheControl: fmt.Sprintf("public, max-age=%d", int(cacheMedium.Seconds()))},
		},
	}
}

// Cache returns middleware that sets Cache-Control headers by path prefix.
// Requests other than GET and HEAD always get "no-store".
func Cache(cfg CacheConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				w.Header().Set("Cache-Control", "no-store")
				next.ServeHTTP(w, r)
				return
			}

			for _, policy := range cfg.Policies {
				if strings.HasPrefix(r.URL.Path, policy.Prefix) {
					w.Header().Set("Cache-Control", policy.CacheControl)
					next.ServeHTTP(w, r)
					return
				}
			}

			if cfg.DefaultPolicy != "" {
				w.Header().Set("Cache-Control", cfg.DefaultPolicy)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Package mw provides HTTP middleware for the Open Prices server.
package mw

import (
	"net/http"

	"github.com/openfoodfacts/open-prices/internal/version"
)

// APIVersionHeader carries the server version on every response.
const APIVersionHeader = "X-API-Version"

// APIVersion returns middleware that adds the X-API-Version header to all responses.
func APIVersion() func(http.Handler) http.Handler {
	apiVersion := version.Get().Short()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(APIVersionHeader, apiVersion)
			next.ServeHTTP(w, r)
		})
	}
}

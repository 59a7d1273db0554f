// Package apicors provides CORS middleware for the JSON API.
//
// The API authenticates with a session cookie, so responses carry
// Access-Control-Allow-Credentials and Allow-Origin can never be "*".
// Middleware reflects the caller's origin and is meant for development;
// production deployments should pin origins with MiddlewareWithOrigins.
// The CSRF token travels in the X-CSRF-Token header both ways, so it is
// both allowed and exposed.
package apicors

import (
	"net/http"
)

const (
	allowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	allowHeaders = "Authorization, Content-Type, Accept, X-CSRF-Token"
)

// Middleware returns CORS middleware that reflects any request origin.
//
// Usage in routes.go:
//
//	r.Use(apicors.Middleware())
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			setCommonHeaders(w)

			// Handle preflight OPTIONS request
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// MiddlewareWithOrigins returns CORS middleware that only allows specific
// origins.
//
// Usage:
//
//	r.Use(apicors.MiddlewareWithOrigins("https://app.smilebloom.example"))
func MiddlewareWithOrigins(allowedOrigins ...string) func(http.Handler) http.Handler {
	originSet := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originSet[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" {
				if _, allowed := originSet[origin]; allowed {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
				}
				// If origin is not allowed, no CORS headers are set and the
				// browser blocks the response.
			}

			setCommonHeaders(w)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func setCommonHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Methods", allowMethods)
	w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
	w.Header().Set("Access-Control-Allow-Credentials", "true")
	w.Header().Set("Access-Control-Expose-Headers", "X-CSRF-Token")
	w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours
}

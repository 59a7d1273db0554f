// Package network has request-level network helpers.
package network

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the originating client address for a request.
//
// Behind a reverse proxy the real client is in X-Forwarded-For (first hop)
// or X-Real-IP; otherwise RemoteAddr is used with its port stripped.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

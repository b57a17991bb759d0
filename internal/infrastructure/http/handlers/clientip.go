package handlers

import (
	"net"
	"net/http"
	"strings"
)

// getClientIP extracts the client IP from the request. The first
// X-Forwarded-For value wins when present, otherwise RemoteAddr is used.
// Rate limiting and attempt tracking key off this value.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.SplitN(xff, ",", 2)
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

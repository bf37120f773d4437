package util

import (
	"net/http"
	"strings"
)

// ClientIP extracts the first hop from X-Forwarded-For, falling back to
// X-Real-IP and then "unknown". Only the first comma-separated value is
// kept; later hops are proxies.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := xff
		if idx := strings.Index(xff, ","); idx >= 0 {
			first = xff[:idx]
		}
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	return "unknown"
}

// Referrer returns the Referer header, nil when absent so histograms can
// bucket it under "Direct".
func Referrer(r *http.Request) *string {
	ref := r.Header.Get("Referer")
	if ref == "" {
		return nil
	}
	if len(ref) > 500 {
		ref = ref[:500]
	}
	return &ref
}

package middleware

import (
	"net/http"
	"strings"
)

// CaseInsensitiveMiddleware lower-cases the request path before routing, so
// /API/Scan and /api/scan reach the same handler. Handheld scanners in
// keyboard-wedge mode and hand-typed terminal URLs often arrive upper-cased.
func CaseInsensitiveMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.URL.Path = strings.ToLower(r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

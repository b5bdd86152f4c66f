// Package middleware holds the HTTP middleware the router composes around
// the API: request ID, recovery, logging, rate limiting and tracing.
package middleware

import "net/http"

// Chain wraps h so the first middleware listed is the outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

package middleware

import (
	"net/http"
	"strings"

	pnet "drsgate/internal/platform/net"
)

// CallerToken lifts an optional Authorization bearer token and the client IP
// onto the request context. It never rejects: whether a credential is required
// is decided per provider during resolution, not at the edge
func CallerToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if raw := r.Header.Get("Authorization"); raw != "" {
			parts := strings.SplitN(raw, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				if tok := strings.TrimSpace(parts[1]); tok != "" {
					ctx = pnet.WithCallerToken(ctx, tok)
				}
			}
		}
		if ip := pnet.RemoteIP(r); ip != "" {
			ctx = pnet.WithClientIP(ctx, ip)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

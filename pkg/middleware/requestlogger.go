package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/behancebrothers-ops/jjfg-sub000/pkg/logger"
)

// Identity headers set by the edge after authentication. A request carries
// either a user id or a guest session id.
const (
	UserIDHeader  = "X-User-ID"
	GuestIDHeader = "X-Guest-ID"
)

// RequestLogger resolves the caller identity from the edge headers, stores it
// in the context and attaches a logger enriched with correlation_id, identity
// and trace fields. Mount it after RequestLogging and Tracing.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if id := strings.TrimSpace(r.Header.Get(UserIDHeader)); id != "" {
				ctx = logger.WithIdentity(ctx, id, logger.IdentityUser)
			} else if id := strings.TrimSpace(r.Header.Get(GuestIDHeader)); id != "" {
				ctx = logger.WithIdentity(ctx, id, logger.IdentityGuest)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

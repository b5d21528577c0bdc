package chi

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/kailas-cloud/nearby/internal/domain"
	domrl "github.com/kailas-cloud/nearby/internal/domain/ratelimit"
)

// RateLimitMiddleware checks every request against the limiter under function.
// Authenticated callers are keyed by identity, everyone else by client IP.
// Expects middleware.RealIP upstream when running behind a proxy.
func (s *Server) RateLimitMiddleware(function string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rateLimitKey(r, function)
			d := s.limiter.Check(r.Context(), key, map[string]string{
				"method":     r.Method,
				"path":       r.URL.Path,
				"request_id": middleware.GetReqID(r.Context()),
			})

			if !d.Allowed {
				s.handleDomainError(w, &domain.RateLimitError{
					Limit:      d.Limit,
					RetryAfter: d.RetryAfter,
					ResetAt:    d.ResetAt,
				})
				return
			}

			if d.Limit > 0 && !d.FailedOpen {
				setRateLimitHeaders(w, d.Limit, d.Remaining, d.ResetAt)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request, function string) domrl.Key {
	if id := IdentityFromContext(r.Context()); id != "" {
		return domrl.Key{Identifier: id, IdentifierType: domrl.IdentifierUser, Function: function}
	}
	return domrl.Key{Identifier: clientIP(r), IdentifierType: domrl.IdentifierIP, Function: function}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

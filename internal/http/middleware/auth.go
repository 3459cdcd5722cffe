package middleware

import (
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/http/response"
	"github.com/maxaizer/club-portal/internal/logger"
	"github.com/maxaizer/club-portal/internal/security"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"net/http"
)

type principalResolver interface {
	FromRequest(r *http.Request) (*security.Principal, error)
}

// Principal attaches the session principal when the request carries a valid one.
// Requests with missing or bad credentials continue anonymously.
func Principal(resolver principalResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := resolver.FromRequest(r)
			if err != nil {
				if !errors.Is(err, security.ErrNoSession) {
					log.WithField(logger.ErrorTypeField, logger.ErrorTypeAuth).Debugf("rejected session: %v", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(security.WithPrincipal(r.Context(), *principal)))
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := security.PrincipalFromContext(r.Context()); !ok {
			response.Error(w, apperr.Unauthorized())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := security.PrincipalFromContext(r.Context())
		if !ok {
			response.Error(w, apperr.Unauthorized())
			return
		}
		if !principal.IsAdmin() {
			response.Error(w, apperr.Forbidden())
			return
		}
		next.ServeHTTP(w, r)
	})
}

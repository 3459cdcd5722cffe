package middleware

import (
	"context"
	"github.com/maxaizer/club-portal/internal/security"
	"github.com/samber/lo"
	"net/http"
	"strings"
)

type maintenanceGate interface {
	Enabled(ctx context.Context) bool
}

// Maintenance redirects non-admin traffic to redirectPath while the gate is enabled.
// Exempt prefixes and the redirect page itself always pass through.
func Maintenance(gate maintenanceGate, exemptPrefixes []string, redirectPath string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			exempt := path == redirectPath || lo.SomeBy(exemptPrefixes, func(prefix string) bool {
				return strings.HasPrefix(path, prefix)
			})
			if exempt {
				next.ServeHTTP(w, r)
				return
			}

			if principal, ok := security.PrincipalFromContext(r.Context()); ok && principal.IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			if gate.Enabled(r.Context()) {
				w.Header().Set("Cache-Control", "no-store")
				http.Redirect(w, r, redirectPath, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/http/response"
	"github.com/maxaizer/club-portal/internal/logger"
	log "github.com/sirupsen/logrus"
	"net/http"
	"runtime/debug"
)

func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.WithField(logger.ErrorTypeField, logger.ErrorTypeHttp).
					Errorf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				response.Error(w, apperr.New(apperr.CodeInternal, "internal error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

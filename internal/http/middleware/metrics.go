package middleware

import (
	"context"
	"github.com/maxaizer/club-portal/internal/metrics"
	"net/http"
	"strconv"
	"time"
)

type routeKey struct{}

// SetRoute records the matched route pattern for the metrics middleware.
// Raw paths are never used as labels.
func SetRoute(r *http.Request, pattern string) {
	if route, ok := r.Context().Value(routeKey{}).(*string); ok {
		*route = pattern
	}
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		route := "unmatched"
		recorder := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(recorder, r.WithContext(context.WithValue(r.Context(), routeKey{}, &route)))

		metrics.HttpRequestsCounter.WithLabelValues(r.Method, route, strconv.Itoa(recorder.Status())).Inc()
		metrics.HttpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

package middleware

import (
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/http/response"
	"github.com/maxaizer/club-portal/internal/security"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
	"net/http"
	"sync"
	"time"
)

type Limiter interface {
	Allow(key string, limit int, window time.Duration) bool
}

// LocalLimiter keeps one token bucket per key in process memory. Idle buckets expire.
type LocalLimiter struct {
	mu      sync.Mutex
	buckets *gocache.Cache
}

func NewLocalLimiter() *LocalLimiter {
	return &LocalLimiter{buckets: gocache.New(10*time.Minute, 10*time.Minute)}
}

func (l *LocalLimiter) Allow(key string, limit int, window time.Duration) bool {
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}

	l.mu.Lock()
	bucket, found := l.buckets.Get(key)
	if !found {
		bucket = rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)
	}
	l.buckets.Set(key, bucket, window*2)
	l.mu.Unlock()

	return bucket.(*rate.Limiter).Allow()
}

func RateLimit(limiter Limiter, ips *ClientIPs, scope string, limit int, window time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if limiter == nil || limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(scope+":"+clientKey(r, ips), limit, window) {
				response.Error(w, apperr.New(apperr.CodeRateLimited, "too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller by principal, falling back to the client address.
func clientKey(r *http.Request, ips *ClientIPs) string {
	if principal, ok := security.PrincipalFromContext(r.Context()); ok {
		return "user:" + principal.ID
	}
	return "ip:" + ips.Of(r)
}

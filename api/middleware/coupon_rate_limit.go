package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/api/responses"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type fixedWindowLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// CouponRateLimitPolicy bounds coupon attempts per client IP and per cart
// owner (user or anonymous session) inside a fixed window.
type CouponRateLimitPolicy struct {
	Window       time.Duration
	IPLimit      int
	SessionLimit int
}

func (p CouponRateLimitPolicy) enabled() bool {
	return p.Window > 0 && (p.IPLimit > 0 || p.SessionLimit > 0)
}

// CouponRateLimit throttles coupon code guessing. Limiter failures let the
// request through.
func CouponRateLimit(policy CouponRateLimitPolicy, limiter fixedWindowLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			checks := []struct {
				scope string
				value string
				limit int
			}{
				{scope: "ip", value: clientIP(r), limit: policy.IPLimit},
				{scope: "session", value: cartOwner(r), limit: policy.SessionLimit},
			}

			for _, check := range checks {
				if check.limit <= 0 || check.value == "" {
					continue
				}
				key := "coupon:" + check.scope + ":" + check.value
				allowed, count, err := limiter.FixedWindowAllow(ctx, key, int64(check.limit), policy.Window)
				if err != nil {
					if logg != nil {
						logg.Warn(logg.WithField(ctx, "scope", check.scope), "coupon.rate_limit.unavailable")
					}
					continue
				}
				if !allowed {
					if logg != nil {
						logCtx := logg.WithFields(ctx, map[string]any{
							"scope":          check.scope,
							"attempts":       count,
							"limit":          check.limit,
							"window_seconds": int(policy.Window.Seconds()),
						})
						logg.Warn(logCtx, "coupon.rate_limit.blocked")
					}
					w.Header().Set("Retry-After", strconv.Itoa(int(policy.Window.Seconds())))
					responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many coupon attempts, try again later"))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func cartOwner(r *http.Request) string {
	if id, ok := UserIDFromContext(r.Context()); ok {
		return "user:" + id.String()
	}
	if session := CartSessionFromContext(r.Context()); session != "" {
		return "anon:" + session
	}
	return ""
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

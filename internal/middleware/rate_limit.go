// internal/middleware/rate_limit.go
package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jguerrero45/dashboard-insights/internal/config"
	"github.com/jguerrero45/dashboard-insights/internal/i18n"
	"github.com/jguerrero45/dashboard-insights/internal/utils"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	visitors   map[string]*visitor
	mtx        sync.Mutex
	rate       rate.Limit
	burst      int
	messageKey string
}

func NewRateLimiter(r rate.Limit, b int, messageKey string) *RateLimiter {
	return &RateLimiter{
		visitors:   make(map[string]*visitor),
		rate:       r,
		burst:      b,
		messageKey: messageKey,
	}
}

// Cleanup drops visitors idle for more than ttl until ctx is done.
func (rl *RateLimiter) Cleanup(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.mtx.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastSeen) > ttl {
					delete(rl.visitors, ip)
				}
			}
			rl.mtx.Unlock()
		}
	}
}

func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.visitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.getVisitor(c.ClientIP())

		if !limiter.Allow() {
			lang := utils.GetLangFromContext(c)
			utils.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED", i18n.T(lang, rl.messageKey), nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// Limiters groups the general limiter and the stricter one in front of the
// text generation routes.
type Limiters struct {
	General *RateLimiter
	AI      *RateLimiter
}

func NewLimiters(cfg config.RateLimitConfig) *Limiters {
	return &Limiters{
		General: NewRateLimiter(rate.Limit(cfg.GeneralPerSecond), cfg.GeneralBurst, i18n.KeyRateLimitExceeded),
		AI:      NewRateLimiter(rate.Limit(cfg.AIPerMinute/60), cfg.AIBurst, i18n.KeyAIRateLimitExceeded),
	}
}

func (l *Limiters) StartCleanup(ctx context.Context) {
	go l.General.Cleanup(ctx, time.Minute, 3*time.Minute)
	go l.AI.Cleanup(ctx, time.Minute, 10*time.Minute)
}

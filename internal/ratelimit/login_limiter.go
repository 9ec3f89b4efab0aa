package ratelimit

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"github.com/vendly/vendly/internal/config"
	"go.uber.org/zap"
)

const (
	loginKeyFormat = "auth:login:%s"
	loginRate      = 0.5
	loginBurst     = 5
)

// LoginLimiter throttles sign-in attempts per client IP. Without a
// redis address it is disabled and every attempt passes.
type LoginLimiter struct {
	log    *zap.Logger
	bucket *TokenBucket
}

func NewLoginLimiter(log *zap.Logger, cfg config.Config) *LoginLimiter {
	limiter := &LoginLimiter{log: log.Named("ratelimit.login")}
	if cfg.RedisAddr == "" {
		return limiter
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	limiter.bucket = NewTokenBucket(client)
	return limiter
}

// Middleware rejects over-limit sign-in attempts with 429. Redis
// failures fail open so an outage does not lock everyone out.
func (l *LoginLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.bucket == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf(loginKeyFormat, strings.TrimSpace(c.ClientIP()))
		result, err := l.bucket.Allow(c.Request.Context(), key, loginRate, loginBurst)
		if err != nil {
			l.log.Warn("login rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !result.Allowed {
			c.Header("Retry-After", fmt.Sprintf("%.0f", result.RetryAfter.Seconds()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too_many_attempts"})
			return
		}
		c.Next()
	}
}

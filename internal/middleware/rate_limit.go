package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront_back_end/internal/logger"
)

const (
	// Limites par endpoint
	LoginMaxAttempts    = 5
	RegisterMaxAttempts = 3
	ContactMaxMessages  = 5
	APIMaxRequests      = 100 // Par minute pour les endpoints généraux
	CartMaxWrites       = 20  // Par minute et par propriétaire
	SearchMaxRequests   = 30  // Par minute et par IP

	// Durées de cooldown
	LoginCooldown    = 15 * time.Minute
	RegisterCooldown = 30 * time.Minute
	ContactCooldown  = 10 * time.Minute
	APICooldown      = 1 * time.Minute
)

// RateLimiter : compteurs et cooldowns stockés dans Redis.
type RateLimiter interface {
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error)
	GetRateLimit(ctx context.Context, key string) (int64, error)
	SetFlag(ctx context.Context, key string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	TTL(ctx context.Context, key string) time.Duration
	Delete(ctx context.Context, keys ...string) error
}

// LoginRateLimit bloque un email après LoginMaxAttempts échecs (401)
// pendant LoginCooldown. Un login réussi remet le compteur à zéro.
func LoginRateLimit(rl RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		// Remettre le body pour les handlers suivants
		c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

		var input struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Email == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		email := strings.ToLower(strings.TrimSpace(input.Email))
		key := "login_attempts:" + email
		cooldownKey := "login_cooldown:" + email

		if inCooldown(c, rl, cooldownKey, "Too many failed attempts. Try again in %d minutes") {
			return
		}

		attempts, _ := rl.GetRateLimit(ctx, key)
		if attempts >= LoginMaxAttempts {
			startCooldown(c, rl, key, cooldownKey, LoginCooldown, "Too many failed attempts. Account locked for %d minutes")
			return
		}

		c.Next()

		switch c.Writer.Status() {
		case http.StatusUnauthorized:
			n, err := rl.IncrementRateLimit(ctx, key, LoginCooldown)
			if err != nil {
				logger.FromContext(c).Warn("⚠️ login rate limit increment failed", zap.Error(err))
				return
			}
			logger.FromContext(c).Warn("⚠️ failed login", zap.String("email", email), zap.Int64("attempts", n))
		case http.StatusOK:
			_ = rl.Delete(ctx, key, cooldownKey)
		}
	}
}

// RegisterRateLimit limite les inscriptions réussies par IP.
func RegisterRateLimit(rl RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ip := c.ClientIP()
		key := "register_attempts:" + ip
		cooldownKey := "register_cooldown:" + ip

		if inCooldown(c, rl, cooldownKey, "Too many sign-ups. Try again in %d minutes") {
			return
		}

		attempts, _ := rl.GetRateLimit(ctx, key)
		if attempts >= RegisterMaxAttempts {
			startCooldown(c, rl, key, cooldownKey, RegisterCooldown, "Too many sign-ups. Try again in %d minutes")
			return
		}

		c.Next()

		if c.Writer.Status() == http.StatusCreated {
			_, _ = rl.IncrementRateLimit(ctx, key, RegisterCooldown)
		}
	}
}

// ContactRateLimit limite les messages du formulaire contact par IP.
func ContactRateLimit(rl RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := "contact_messages:" + c.ClientIP()

		sent, _ := rl.GetRateLimit(ctx, key)
		if sent >= ContactMaxMessages {
			retryAfter(c, rl.TTL(ctx, key), "Too many messages. Try again later")
			return
		}

		c.Next()

		if c.Writer.Status() < http.StatusBadRequest {
			_, _ = rl.IncrementRateLimit(ctx, key, ContactCooldown)
		}
	}
}

// APIRateLimit limite le nombre de requêtes par IP (général).
func APIRateLimit(rl RateLimiter) gin.HandlerFunc {
	return windowLimit(rl, APIMaxRequests, APICooldown, "Too many requests. Try again in 1 minute", func(c *gin.Context) string {
		return "api_requests:" + c.ClientIP()
	}, true)
}

// CartRateLimit limite les écritures panier/wishlist par propriétaire.
// À placer après Owner.
func CartRateLimit(rl RateLimiter) gin.HandlerFunc {
	return windowLimit(rl, CartMaxWrites, time.Minute, "Too many cart updates. Slow down a little", func(c *gin.Context) string {
		owner := OwnerFromContext(c)
		if owner == "" {
			owner = c.ClientIP()
		}
		return "cart_writes:" + owner
	}, false)
}

// SearchRateLimit limite les recherches par IP.
func SearchRateLimit(rl RateLimiter) gin.HandlerFunc {
	return windowLimit(rl, SearchMaxRequests, time.Minute, "Too many searches. Try again in 1 minute", func(c *gin.Context) string {
		return "search_requests:" + c.ClientIP()
	}, false)
}

func windowLimit(rl RateLimiter, limit int64, window time.Duration, msg string, keyFn func(*gin.Context) string, headers bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := keyFn(c)

		n, err := rl.IncrementRateLimit(ctx, key, window)
		if err != nil {
			// Redis indisponible : on laisse passer
			logger.FromContext(c).Warn("⚠️ rate limit unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if n > limit {
			retryAfter(c, window, msg)
			return
		}

		if headers {
			c.Header("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
			c.Header("X-RateLimit-Remaining", strconv.FormatInt(limit-n, 10))
		}
		c.Next()
	}
}

func inCooldown(c *gin.Context, rl RateLimiter, cooldownKey, format string) bool {
	ctx := c.Request.Context()
	active, err := rl.Exists(ctx, cooldownKey)
	if err != nil || !active {
		return false
	}
	ttl := rl.TTL(ctx, cooldownKey)
	retryAfter(c, ttl, fmt.Sprintf(format, minutesCeil(ttl)))
	return true
}

func startCooldown(c *gin.Context, rl RateLimiter, key, cooldownKey string, cooldown time.Duration, format string) {
	ctx := c.Request.Context()
	_ = rl.SetFlag(ctx, cooldownKey, cooldown)
	_ = rl.Delete(ctx, key)
	retryAfter(c, cooldown, fmt.Sprintf(format, minutesCeil(cooldown)))
}

func retryAfter(c *gin.Context, d time.Duration, msg string) {
	seconds := int(d.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	c.Header("Retry-After", strconv.Itoa(seconds))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":       msg,
		"retry_after": seconds,
	})
}

func minutesCeil(d time.Duration) int {
	m := int((d + time.Minute - 1) / time.Minute)
	if m < 1 {
		m = 1
	}
	return m
}

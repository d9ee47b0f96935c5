package middleware

import (
	"net/http"
	"time"

	"github.com/acquisitions/api/database/model"
	"github.com/acquisitions/api/logger"
	"github.com/acquisitions/api/security"
	"github.com/acquisitions/api/web/entity"

	"github.com/gin-gonic/gin"
)

// SecurityConfig configures the admission-control middleware.
type SecurityConfig struct {
	// Bypass skips the check entirely. Set outside production only; this is
	// a development convenience, not a security boundary.
	Bypass bool
	// Quotas maps a role to its requests-per-interval budget.
	Quotas map[model.Role]int
	// GuestQuota applies to unauthenticated callers and unknown roles.
	GuestQuota int
	Interval   time.Duration
}

// DefaultSecurityConfig returns the standing role quota table.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		Quotas: map[model.Role]int{
			model.RoleAdmin: 20,
			model.RoleUser:  10,
		},
		GuestQuota: 5,
		Interval:   time.Minute,
	}
}

// Security runs the admission check before anything else touches the
// request. Note this executes ahead of AuthRequired in the chain, so a
// principal is normally absent and callers are limited at the guest tier;
// the role lookup stays in place for chains that authenticate earlier.
func Security(cfg SecurityConfig, protector *security.Protector) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Bypass {
			c.Next()
			return
		}

		role := "guest"
		quota := cfg.GuestQuota
		if principal, ok := Principal(c); ok {
			role = string(principal.Role)
			if q, ok := cfg.Quotas[principal.Role]; ok {
				quota = q
			}
		}

		client := protector.WithWindow(security.WindowRule{
			Name:     role + "-rate-limit",
			Max:      quota,
			Interval: cfg.Interval,
		})

		decision, err := client.Protect(c.Request.Context(), c.Request)
		if err != nil {
			// Fail closed for this request only; the engine is not retried.
			logger.Errorf("admission check failed on %s: %v", c.Request.URL.Path, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, entity.ErrorResponse{
				Error:   "Internal server error",
				Message: "Security check failed",
			})
			return
		}

		if !decision.Denied {
			c.Next()
			return
		}

		switch decision.Reason {
		case security.ReasonRateLimit:
			logger.Warningf("rate limit exceeded ip=%s role=%s path=%s",
				c.ClientIP(), role, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, entity.ErrorResponse{
				Error:   "Forbidden",
				Message: "Too many requests",
			})
		case security.ReasonShield:
			c.AbortWithStatusJSON(http.StatusForbidden, entity.ErrorResponse{
				Error:   "Forbidden",
				Message: "Request blocked by policy",
			})
		case security.ReasonBot:
			c.AbortWithStatusJSON(http.StatusForbidden, entity.ErrorResponse{
				Error:   "Forbidden",
				Message: "Automated requests not allowed",
			})
		case security.ReasonNone:
			// Denied without a reason does not occur; admit rather than
			// invent a response.
			c.Next()
		}
	}
}

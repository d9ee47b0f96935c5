// Package middleware contains the gin middleware chain of the acquisitions
// API: security headers, CORS, access logging, admission control, token
// authentication and role gating.
package middleware

import (
	"net/http"
	"strings"

	"github.com/acquisitions/api/database/model"
	"github.com/acquisitions/api/logger"
	"github.com/acquisitions/api/web/entity"
	"github.com/acquisitions/api/web/service"

	"github.com/gin-gonic/gin"
)

const (
	principalKey = "principal"

	// TokenCookie is the cookie the auth controller sets on sign-in.
	TokenCookie = "token"
)

// AuthRequired authenticates the request from the token cookie or the
// Authorization header and attaches the principal to the context.
func AuthRequired(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Authentication required",
			})
			return
		}

		principal, err := tokens.Verify(raw)
		if err != nil {
			logger.Debugf("token rejected on %s: %v", c.Request.URL.Path, err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid or expired token",
			})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireRole gates a route to the given roles. Requests without a
// principal get 401, wrong roles get 403.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		principal, ok := Principal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.ErrorResponse{
				Error: "Unauthorized",
			})
			return
		}
		if !allowed[principal.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, entity.ErrorResponse{
				Error: "Forbidden",
			})
			return
		}
		c.Next()
	}
}

// Principal returns the authenticated identity attached by AuthRequired.
func Principal(c *gin.Context) (model.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return model.Principal{}, false
	}
	principal, ok := v.(model.Principal)
	return principal, ok
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

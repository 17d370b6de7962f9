package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-manager/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
)

// ErrUnknownPrincipal is returned by a UserResolver when the token subject has no account.
var ErrUnknownPrincipal = errors.New("unknown principal")

// TokenVerifier validates a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Principal is the authenticated caller attached to the request context.
type Principal struct {
	ID       int64
	Email    string
	IsActive bool
}

// UserResolver loads the account behind a token subject.
type UserResolver func(ctx context.Context, subject string) (Principal, error)

// Auth requires a valid token from the cookieName cookie or the Authorization header.
func Auth(verifier TokenVerifier, resolve UserResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		token := tokenFromRequest(c, cookieName)
		if token == "" {
			respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "missing or invalid token", nil)
			return
		}

		subject, err := verifier.Verify(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "missing or invalid token", nil)
			return
		}

		principal, err := resolve(c.Request.Context(), subject)
		if err != nil {
			if errors.Is(err, ErrUnknownPrincipal) {
				respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "missing or invalid token", nil)
				return
			}
			respond.Internal(c, "auth.resolve", err)
			return
		}
		if !principal.IsActive {
			respond.Error(c, http.StatusForbidden, respond.CodeForbidden, "inactive user", nil)
			return
		}

		c.Set(userIDKey, principal.ID)
		c.Set(userEmailKey, principal.Email)
		c.Next()
	}
}

// tokenFromRequest prefers the auth cookie over the Authorization header.
func tokenFromRequest(c *gin.Context, cookieName string) string {
	if cookieName != "" {
		if raw, err := c.Cookie(cookieName); err == nil {
			raw = strings.TrimSpace(raw)
			if strings.HasPrefix(raw, "Bearer ") {
				raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
			}
			if raw != "" {
				return raw
			}
		}
	}

	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// UserIDFromContext fetches the user ID set by the auth middleware, or 0.
func UserIDFromContext(c *gin.Context) int64 {
	if c == nil {
		return 0
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(int64); ok {
		return id
	}
	return 0
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userEmailKey)
	if email, ok := val.(string); ok {
		return email
	}
	return ""
}

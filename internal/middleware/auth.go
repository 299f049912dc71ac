// Package middleware contains the Gin middleware shared by the dev server.
//
// This file resolves bearer tokens to users. Tokens are the opaque values
// issued by the login endpoint and stored server-side with an expiry.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-chat-client/internal/repo"
)

// userIDKey is the Gin context key under which the authenticated user ID is
// stored for handlers and downstream middleware.
const userIDKey = "userID"

// UserID returns the authenticated user's ID, or "" when the request did not
// pass BearerAuth.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// BearerAuth authenticates requests via the Authorization header.
//
// Missing, malformed, unknown, or expired tokens abort with 401 and the
// standard error envelope; on success the user ID is stored in the context.
func BearerAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		tok, ok := strings.CutPrefix(raw, "Bearer ")
		tok = strings.TrimSpace(tok)
		if !ok || tok == "" {
			abortUnauthenticated(c, "not authenticated")
			return
		}

		at, err := repo.GetAccessToken(c.Request.Context(), db, tok)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				LoggerFrom(c).Error().Err(err).Msg("token lookup failed")
			}
			abortUnauthenticated(c, "invalid or expired token")
			return
		}

		c.Set(userIDKey, at.UserID)
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"detail": gin.H{"error_description": msg},
	})
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// userIDKey is the gin context key the authenticated user id is stored under
const userIDKey = "auth.userID"

// ErrInvalidToken is returned by verifiers for unknown or expired tokens
var ErrInvalidToken = errors.New("invalid token")

// TokenVerifier resolves a bearer token to a user id. Verification itself is
// delegated to the external auth provider; the server only carries the
// resolved identity in the request context.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// StaticVerifier is a TokenVerifier backed by a fixed token→user map,
// for development and tests
type StaticVerifier struct {
	Tokens map[string]string
}

func (v *StaticVerifier) Verify(_ context.Context, token string) (string, error) {
	userID, ok := v.Tokens[token]
	if !ok {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// Auth rejects requests without a valid bearer token and stores the resolved
// user id in the gin context
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		userID, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user id stored by Auth, empty if unset
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"livecart/internal/core/apperror"
)

// TokenValidator validates an access token and returns the username it
// was issued to.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (string, error)
}

// Auth middleware validates JWT tokens on protected routes.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		username, err := validator.Validate(c.Request.Context(), parts[1])
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set("username", username)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}

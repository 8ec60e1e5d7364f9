package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ecograde/ecograde/internal/models"
)

// TokenAuth guards the archive endpoints with a static bearer token. An
// empty configured token leaves the endpoints open.
func TokenAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		got, err := extractToken(c.Request)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: err.Error()})
			c.Abort()
			return
		}
		if got != token {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid token"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// extractToken extracts the bearer token from the Authorization header
func extractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header is missing")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid authorization header format")
	}

	return parts[1], nil
}

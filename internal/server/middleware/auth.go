package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oselz/ai-gateway/internal/core/domain"
)

// Auth checks for a valid Bearer token in the Authorization header.
// With no keys configured the gateway runs open, which is the expected
// mode for local development.
func Auth(staticKeys []string) gin.HandlerFunc {
	keyMap := make(map[string]bool)
	for _, k := range staticKeys {
		keyMap[k] = true
	}

	return func(c *gin.Context) {
		if len(keyMap) == 0 {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortProblem(c, domain.New(http.StatusUnauthorized, "Unauthorized", "Missing Authorization header"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortProblem(c, domain.New(http.StatusUnauthorized, "Unauthorized", "Invalid Authorization header format"))
			return
		}

		if !keyMap[parts[1]] {
			abortProblem(c, domain.New(http.StatusUnauthorized, "Unauthorized", "Invalid API Key"))
			return
		}

		c.Next()
	}
}

func abortProblem(c *gin.Context, p *domain.Problem) {
	c.Header("Content-Type", "application/problem+json")
	c.AbortWithStatusJSON(p.Status, p)
}

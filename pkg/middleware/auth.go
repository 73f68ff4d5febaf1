package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/newspulse/newspulse/backend/go-services/internal/sessions"
)

// SubjectParser validates a session token and returns its subject (the
// user's email). Satisfied by tokens.Issuer and by test fakes.
type SubjectParser interface {
	ParseSubject(raw string) (string, error)
}

// AuthMiddleware verifies Bearer session tokens, rejects blacklisted tokens
// and stores the authenticated email in the context under "email".
func AuthMiddleware(parser SubjectParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		var token string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		if black, err := sessions.IsAccessTokenBlacklisted(c.Request.Context(), token); err == nil && black {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
			return
		}

		email, err := parser.ParseSubject(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "details": err.Error()})
			return
		}

		c.Set("email", email)
		c.Next()
	}
}

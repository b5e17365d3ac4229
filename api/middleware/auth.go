package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/yt-fetch-go/internal/domain"
)

// PasswordParam is the query parameter carrying the shared secret
const PasswordParam = "pw"

// AccessGate rejects requests whose pw query value does not match the
// configured password. With no password configured every request passes.
func AccessGate(config domain.AuthConfig) gin.HandlerFunc {
	expected := []byte(config.Password)
	return func(c *gin.Context) {
		if !config.Enabled() {
			c.Next()
			return
		}

		supplied := []byte(c.Query(PasswordParam))
		if subtle.ConstantTimeCompare(supplied, expected) != 1 {
			c.String(http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}
		c.Next()
	}
}

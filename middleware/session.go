package middleware

import (
	"log"
	"net/http"
	"time"

	"dailyread/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookie = "dailyread_session"
	SessionKey    = "session_id"
)

// Session makes sure every request carries an anonymous session id, issuing
// a signed cookie when the browser has none or an invalid one.
func Session(secret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
			if sessionID, err := utils.ValidateSessionToken(token, secret); err == nil {
				c.Set(SessionKey, sessionID)
				c.Next()
				return
			}
			log.Printf("Discarding invalid session cookie from %s", c.ClientIP())
		}

		sessionID := uuid.New().String()
		token, err := utils.GenerateSessionToken(sessionID, secret, ttl)
		if err != nil {
			log.Printf("Failed to sign session token: %v", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, token, int(ttl.Seconds()), "/", "", false, true)
		c.Set(SessionKey, sessionID)
		c.Next()
	}
}

func SessionID(c *gin.Context) string {
	return c.GetString(SessionKey)
}

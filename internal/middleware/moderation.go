package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bitconnect/vault-api/internal/models"
	appErrors "github.com/bitconnect/vault-api/pkg/errors"
	"github.com/bitconnect/vault-api/pkg/response"
)

// ContextSessionKey is the gin context key storing the moderation session.
const ContextSessionKey = "moderationSession"

type sessionValidator interface {
	Validate(token string) (*models.ModerationSession, error)
}

// ModerationSession requires a valid moderation token. The token comes from
// the Authorization header or, for event streams that cannot set headers,
// the token query parameter.
func ModerationSession(sessions sessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		session, err := sessions.Validate(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

// SessionFromContext returns the session attached by ModerationSession.
func SessionFromContext(c *gin.Context) *models.ModerationSession {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	session, _ := value.(*models.ModerationSession)
	return session
}

func bearerToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", false
		}
		return strings.TrimSpace(parts[1]), true
	}
	if token := strings.TrimSpace(c.Query("token")); token != "" {
		return token, true
	}
	return "", false
}

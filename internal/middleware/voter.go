package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// VoterCookie holds the per-browser voter identity.
	VoterCookie = "vault_voter"
	// VoterHeader lets non-browser clients carry the identity explicitly.
	VoterHeader = "X-Voter-ID"

	contextVoterKey = "voterID"
	voterCookieAge  = 365 * 24 * 60 * 60
)

// VoterID resolves the caller's anonymous voter identity, minting one when
// absent. The identity is an unsigned random id scoped to one browser.
func VoterID(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(VoterHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = ""
			if cookie, cerr := c.Cookie(VoterCookie); cerr == nil {
				if _, perr := uuid.Parse(cookie); perr == nil {
					id = cookie
				}
			}
		}
		if id == "" {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(VoterCookie, id, voterCookieAge, "/", "", secureCookie, true)
		}
		c.Set(contextVoterKey, id)
		c.Header(VoterHeader, id)
		c.Next()
	}
}

// VoterFromContext returns the identity resolved by VoterID.
func VoterFromContext(c *gin.Context) string {
	return c.GetString(contextVoterKey)
}

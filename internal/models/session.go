package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ModerationScope is the only scope a moderation token carries.
const ModerationScope = "moderation"

// ModerationClaims is the JWT payload of a moderation session.
type ModerationClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// ModerationSession is the capability passed to every moderation operation.
type ModerationSession struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Active reports whether the session exists and has not expired at now.
func (s *ModerationSession) Active(now time.Time) bool {
	return s != nil && s.ID != "" && now.Before(s.ExpiresAt)
}

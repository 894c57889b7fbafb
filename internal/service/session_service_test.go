package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitconnect/vault-api/internal/models"
	appErrors "github.com/bitconnect/vault-api/pkg/errors"
)

func newTestSessions(t *testing.T) *SessionService {
	t.Helper()
	svc, err := NewSessionService(SessionConfig{Password: "bitconnect2026", Secret: "test-secret", TTL: time.Hour}, nil)
	require.NoError(t, err)
	return svc
}

func TestSessionOpenAndValidate(t *testing.T) {
	svc := newTestSessions(t)

	session, err := svc.Open("bitconnect2026")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)

	validated, err := svc.Validate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, validated.ID)
	assert.NoError(t, svc.Require(validated))
}

func TestSessionWrongPasswordIsGenericUnauthorized(t *testing.T) {
	svc := newTestSessions(t)
	_, err := svc.Open("guess")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
	assert.Equal(t, appErrors.ErrUnauthorized.Message, appErrors.FromError(err).Message)
}

func TestSessionRejectsTamperedAndExpiredTokens(t *testing.T) {
	svc := newTestSessions(t)
	session, err := svc.Open("bitconnect2026")
	require.NoError(t, err)

	_, err = svc.Validate(session.Token + "x")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	other, err := NewSessionService(SessionConfig{Password: "bitconnect2026", Secret: "other-secret"}, nil)
	require.NoError(t, err)
	_, err = other.Validate(session.Token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Validate(session.Token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
	assert.ErrorIs(t, svc.Require(session), appErrors.ErrUnauthorized)
}

func TestRequireWithoutSession(t *testing.T) {
	svc := newTestSessions(t)
	assert.ErrorIs(t, svc.Require(nil), appErrors.ErrUnauthorized)
	assert.ErrorIs(t, svc.Require(&models.ModerationSession{}), appErrors.ErrUnauthorized)
}

func TestNewSessionServiceRequiresSecrets(t *testing.T) {
	_, err := NewSessionService(SessionConfig{Password: "", Secret: "x"}, nil)
	assert.Error(t, err)
}

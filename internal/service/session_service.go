package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bitconnect/vault-api/internal/models"
	appErrors "github.com/bitconnect/vault-api/pkg/errors"
)

const sessionIssuer = "vault-api"

// SessionConfig holds the shared moderation password and token settings.
type SessionConfig struct {
	Password string
	Secret   string
	TTL      time.Duration
}

// SessionService exchanges the shared moderation password for a signed,
// expiring session and validates those sessions on every moderation call.
type SessionService struct {
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

// NewSessionService hashes the shared password once at startup.
func NewSessionService(cfg SessionConfig, logger *zap.Logger) (*SessionService, error) {
	if cfg.Password == "" || cfg.Secret == "" {
		return nil, fmt.Errorf("moderation password and session secret are required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash moderation password: %w", err)
	}
	return &SessionService{
		passwordHash: hash,
		secret:       []byte(cfg.Secret),
		ttl:          cfg.TTL,
		now:          time.Now,
		logger:       logger,
	}, nil
}

// CheckPassword reports whether password matches the shared password.
func (s *SessionService) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) == nil
}

// Open issues a moderation session. Every failure is the same generic 401.
func (s *SessionService) Open(password string) (*models.ModerationSession, error) {
	if !s.CheckPassword(password) {
		s.logger.Warn("moderation session refused")
		return nil, appErrors.ErrUnauthorized
	}
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.ttl)
	id := uuid.NewString()
	claims := &models.ModerationClaims{
		Scope: models.ModerationScope,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    sessionIssuer,
			Subject:   "moderator",
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign session")
	}
	s.logger.Info("moderation session opened", zap.String("session_id", id), zap.Time("expires_at", expiresAt))
	return &models.ModerationSession{ID: id, Token: signed, ExpiresAt: expiresAt}, nil
}

// Validate parses a session token.
func (s *SessionService) Validate(token string) (*models.ModerationSession, error) {
	claims := &models.ModerationClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(sessionIssuer), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.Scope != models.ModerationScope || claims.ExpiresAt == nil {
		return nil, appErrors.ErrUnauthorized
	}
	return &models.ModerationSession{ID: claims.ID, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Require is the guard every moderation operation calls with its explicit
// session value.
func (s *SessionService) Require(session *models.ModerationSession) error {
	if !session.Active(s.now()) {
		return appErrors.ErrUnauthorized
	}
	return nil
}

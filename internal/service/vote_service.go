package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/bitconnect/vault-api/internal/models"
	appErrors "github.com/bitconnect/vault-api/pkg/errors"
)

type voteCounter interface {
	IncrementUpvotes(ctx context.Context, id string, delta int) (int, error)
}

// VoteLedger remembers each voter's state per resource. Update must run the
// read, fn and write atomically for one voter and resource.
type VoteLedger interface {
	Get(ctx context.Context, voterID, resourceID string) (models.VoteState, error)
	Update(ctx context.Context, voterID, resourceID string, fn func(models.VoteState) models.VoteState) (models.VoteState, error)
}

// VoteService applies the per-voter vote state machine to the shared counter.
type VoteService struct {
	counter voteCounter
	ledger  VoteLedger
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewVoteService constructs the service.
func NewVoteService(counter voteCounter, ledger VoteLedger, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *VoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VoteService{counter: counter, ledger: ledger, cache: cache, metrics: metrics, logger: logger}
}

// Transition returns the next state and counter delta for a press. Pressing
// the active direction clears the vote; pressing the other one switches it.
func Transition(current models.VoteState, direction models.VoteDirection) (models.VoteState, int) {
	pressed := models.VoteState(direction)
	sign := 1
	if direction == models.DirectionDown {
		sign = -1
	}
	switch current {
	case pressed:
		return models.VoteNone, -sign
	case models.VoteNone:
		return pressed, sign
	default:
		return pressed, 2 * sign
	}
}

// State returns the caller's vote on a resource.
func (s *VoteService) State(ctx context.Context, voterID, resourceID string) (models.VoteState, error) {
	if strings.TrimSpace(voterID) == "" {
		return models.VoteNone, nil
	}
	state, err := s.ledger.Get(ctx, voterID, resourceID)
	if err != nil {
		return models.VoteNone, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read vote")
	}
	return state, nil
}

// Apply records a press. The ledger is written before the counter; when the
// counter write fails the displayed value is rolled back but the ledger is
// left as written.
func (s *VoteService) Apply(ctx context.Context, voterID, resourceID string, direction models.VoteDirection, displayed int) (*models.VoteOutcome, error) {
	if direction != models.DirectionUp && direction != models.DirectionDown {
		return nil, appErrors.Clone(appErrors.ErrValidation, "direction must be up or down")
	}
	if strings.TrimSpace(voterID) == "" || strings.TrimSpace(resourceID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "voter and resource are required")
	}

	var delta int
	next, err := s.ledger.Update(ctx, voterID, resourceID, func(current models.VoteState) models.VoteState {
		var next models.VoteState
		next, delta = Transition(current, direction)
		return next
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record vote")
	}
	outcome := &models.VoteOutcome{ResourceID: resourceID, State: next, Delta: delta, Displayed: displayed + delta}

	if _, err := s.counter.IncrementUpvotes(ctx, resourceID, delta); err != nil {
		outcome.Displayed -= delta
		s.metrics.RecordVote(string(next), "failed")
		s.logger.Warn("vote counter update failed", zap.String("resource_id", resourceID), zap.Int("delta", delta), zap.Error(err))
		if errors.Is(err, sql.ErrNoRows) {
			return outcome, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return outcome, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update votes")
	}

	outcome.Persisted = true
	s.metrics.RecordVote(string(next), "ok")
	s.cache.Invalidate(ctx, browseCachePattern)
	return outcome, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/bitconnect/vault-api/internal/models"
)

const (
	voteLedgerPrefix  = "vault:votes:"
	voteUpdateRetries = 8
)

// ErrVoteContention is returned when a voter's hash kept changing under an
// update.
var ErrVoteContention = errors.New("vote ledger: too much contention")

// VoteLedgerRepository stores each voter's vote per resource in a Redis hash
// keyed by voter id. Voters are opaque client ids, not identities.
type VoteLedgerRepository struct {
	client *redis.Client
}

// NewVoteLedgerRepository constructs a Redis-backed ledger.
func NewVoteLedgerRepository(client *redis.Client) *VoteLedgerRepository {
	return &VoteLedgerRepository{client: client}
}

// Get returns the stored state, VoteNone when nothing is recorded.
func (r *VoteLedgerRepository) Get(ctx context.Context, voterID, resourceID string) (models.VoteState, error) {
	raw, err := r.client.HGet(ctx, voteLedgerPrefix+voterID, resourceID).Result()
	if errors.Is(err, redis.Nil) {
		return models.VoteNone, nil
	}
	if err != nil {
		return models.VoteNone, fmt.Errorf("redis hget vote: %w", err)
	}
	return parseVoteState(raw), nil
}

// Set records the state. VoteNone clears the entry.
func (r *VoteLedgerRepository) Set(ctx context.Context, voterID, resourceID string, state models.VoteState) error {
	if err := writeVote(ctx, r.client, voteLedgerPrefix+voterID, resourceID, state); err != nil {
		return fmt.Errorf("redis write vote: %w", err)
	}
	return nil
}

// Update reads the stored state, computes the next one with fn and writes it
// in a single WATCH transaction. fn may run more than once when the voter's
// hash changes concurrently; the returned state is the one committed.
func (r *VoteLedgerRepository) Update(ctx context.Context, voterID, resourceID string, fn func(models.VoteState) models.VoteState) (models.VoteState, error) {
	key := voteLedgerPrefix + voterID
	var next models.VoteState
	txf := func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, key, resourceID).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		next = fn(parseVoteState(raw))
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return writeVote(ctx, pipe, key, resourceID, next)
		})
		return err
	}

	for i := 0; i < voteUpdateRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return next, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return models.VoteNone, fmt.Errorf("redis update vote: %w", err)
	}
	return models.VoteNone, ErrVoteContention
}

func writeVote(ctx context.Context, cmd redis.Cmdable, key, resourceID string, state models.VoteState) error {
	if state == models.VoteNone {
		return cmd.HDel(ctx, key, resourceID).Err()
	}
	return cmd.HSet(ctx, key, resourceID, string(state)).Err()
}

// MemoryVoteLedger is the in-process ledger used when Redis is disabled.
type MemoryVoteLedger struct {
	mu    sync.RWMutex
	votes map[string]map[string]models.VoteState
}

// NewMemoryVoteLedger constructs an empty ledger.
func NewMemoryVoteLedger() *MemoryVoteLedger {
	return &MemoryVoteLedger{votes: make(map[string]map[string]models.VoteState)}
}

func (m *MemoryVoteLedger) Get(_ context.Context, voterID, resourceID string) (models.VoteState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if state, ok := m.votes[voterID][resourceID]; ok {
		return state, nil
	}
	return models.VoteNone, nil
}

func (m *MemoryVoteLedger) Set(_ context.Context, voterID, resourceID string, state models.VoteState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store(voterID, resourceID, state)
	return nil
}

// Update holds the lock across read, fn and write.
func (m *MemoryVoteLedger) Update(_ context.Context, voterID, resourceID string, fn func(models.VoteState) models.VoteState) (models.VoteState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.votes[voterID][resourceID]
	if !ok {
		current = models.VoteNone
	}
	next := fn(current)
	m.store(voterID, resourceID, next)
	return next, nil
}

func (m *MemoryVoteLedger) store(voterID, resourceID string, state models.VoteState) {
	if state == models.VoteNone {
		delete(m.votes[voterID], resourceID)
		return
	}
	if m.votes[voterID] == nil {
		m.votes[voterID] = make(map[string]models.VoteState)
	}
	m.votes[voterID][resourceID] = state
}

func parseVoteState(raw string) models.VoteState {
	switch models.VoteState(raw) {
	case models.VoteUp, models.VoteDown:
		return models.VoteState(raw)
	default:
		return models.VoteNone
	}
}

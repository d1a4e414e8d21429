// Package memory provides the in-memory repository for live lottery
// rounds.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Allen-Saji/sui-lotto-contract/internal/modules/lottery/domain"
)

type roundEntry struct {
	mu    sync.Mutex
	round *domain.Round
}

// RoundRepository implements domain.RoundRepository with one mutex per
// round, so every operation on a round runs in its own exclusive
// critical section while distinct rounds proceed concurrently.
type RoundRepository struct {
	mu     sync.RWMutex
	rounds map[string]*roundEntry
}

// NewRoundRepository creates an empty repository
func NewRoundRepository() *RoundRepository {
	return &RoundRepository{rounds: make(map[string]*roundEntry)}
}

// Create registers a new round
func (r *RoundRepository) Create(ctx context.Context, round *domain.Round) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rounds[round.RoundID] = &roundEntry{round: round}
	return nil
}

// Update runs fn under the round's mutex. If fn returns an error, fn
// is expected not to have mutated the round (compute first, commit
// last), so the error propagates with no state change.
func (r *RoundRepository) Update(ctx context.Context, roundID string, fn func(*domain.Round) error) error {
	r.mu.RLock()
	entry, ok := r.rounds[roundID]
	r.mu.RUnlock()
	if !ok {
		return domain.ErrRoundNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.round)
}

// Get returns a stable snapshot of the round
func (r *RoundRepository) Get(ctx context.Context, roundID string, now time.Time) (domain.View, error) {
	r.mu.RLock()
	entry, ok := r.rounds[roundID]
	r.mu.RUnlock()
	if !ok {
		return domain.View{}, domain.ErrRoundNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.round.Snapshot(now), nil
}

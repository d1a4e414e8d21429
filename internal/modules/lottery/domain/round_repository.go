package domain

import (
	"context"
	"time"
)

// RoundRepository stores live rounds. Update runs fn inside the
// round's exclusive critical section: no two operations on the same
// round interleave, and an error from fn must leave the round
// unchanged (callers compute first, commit last). Cross-round
// operations run concurrently.
type RoundRepository interface {
	Create(ctx context.Context, round *Round) error
	Update(ctx context.Context, roundID string, fn func(*Round) error) error
	Get(ctx context.Context, roundID string, now time.Time) (View, error)
}

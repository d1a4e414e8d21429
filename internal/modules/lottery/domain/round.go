// Package domain holds the lottery round entity and the winner
// selection and payout rules. All mutation goes through the methods
// here; callers serialize access per round (see repository/memory).
package domain

import (
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

// RoundStatus defines the lifecycle state of a round
type RoundStatus int

const (
	RoundStatusOpen      RoundStatus = 0
	RoundStatusCompleted RoundStatus = 1
)

func (s RoundStatus) String() string {
	if s == RoundStatusCompleted {
		return "completed"
	}
	return "open"
}

const (
	// DefaultAdminFeeBps is the platform fee copied onto every round at
	// creation. Not configurable per round.
	DefaultAdminFeeBps = 200

	// FeeDenominator converts basis points to a fraction
	FeeDenominator = 10_000

	// MinParticipants is the smallest ticket count a round needs before
	// a draw is allowed. Below it, past the deadline, tickets become
	// refundable instead.
	MinParticipants = 2
)

// RandomSource draws one fresh uniform integer in [min, max] per call.
// The engine consumes exactly one draw per selected winner.
type RandomSource interface {
	DrawUniform(min, max int64) (int64, error)
}

// Round is one lottery instance. Participants holds one entry per
// ticket sold, in purchase order; the same address appears once per
// ticket it bought and every entry carries equal winning weight.
type Round struct {
	RoundID      string
	TicketPrice  int64
	Pool         int64
	Participants []string
	Deadline     time.Time
	Status       RoundStatus
	Winners      []string
	AdminFeeBps  int64
	CreatedAt    time.Time
}

// NewRound validates the creation parameters and returns an open round
// with an empty pool. The fee rate is fixed to the package default.
func NewRound(roundID string, ticketPrice int64, deadline, now time.Time) (*Round, error) {
	if ticketPrice <= 0 {
		return nil, ErrInvalidTicketPrice
	}
	if !deadline.After(now) {
		return nil, ErrInvalidDeadline
	}
	return &Round{
		RoundID:      roundID,
		TicketPrice:  ticketPrice,
		Participants: make([]string, 0),
		Deadline:     deadline,
		Status:       RoundStatusOpen,
		Winners:      make([]string, 0),
		AdminFeeBps:  DefaultAdminFeeBps,
		CreatedAt:    now,
	}, nil
}

// IsActive reports whether the round still accepts ticket purchases
func (r *Round) IsActive(now time.Time) bool {
	return r.Status == RoundStatusOpen && now.Before(r.Deadline)
}

// TicketCount returns the number of tickets sold
func (r *Round) TicketCount() int { return len(r.Participants) }

// ValidatePurchase checks a payment against the round without
// mutating it and returns the whole-ticket count it buys. Payment must
// be an exact positive multiple of the ticket price; there are no
// partial tickets and no silent rounding.
func (r *Round) ValidatePurchase(payment int64, now time.Time) (int, error) {
	if r.Status != RoundStatusOpen {
		return 0, ErrRoundNotOpen
	}
	if !now.Before(r.Deadline) {
		return 0, ErrDeadlinePassed
	}
	if payment < r.TicketPrice || payment%r.TicketPrice != 0 {
		return 0, ErrInvalidTicketPrice
	}
	return int(payment / r.TicketPrice), nil
}

// BuyTickets validates a purchase and appends one participant entry
// per whole ticket, preserving purchase order.
func (r *Round) BuyTickets(buyer string, payment int64, now time.Time) (int, error) {
	tickets, err := r.ValidatePurchase(payment, now)
	if err != nil {
		return 0, err
	}
	for i := 0; i < tickets; i++ {
		r.Participants = append(r.Participants, buyer)
	}
	r.Pool += payment
	return tickets, nil
}

// WinnerCount is the step function mapping ticket count to the number
// of winners drawn. Returns 0 for n < 2, where a draw is disallowed.
func WinnerCount(n int) int {
	switch {
	case n < MinParticipants:
		return 0
	case n <= 5:
		return 1
	case n <= 9:
		return 2
	case n <= 99:
		return 3
	default:
		return 5
	}
}

// Settlement is the fully computed outcome of a draw. Amounts already
// include the dust rule: the remainder of the prize split goes to the
// first-drawn winner.
type Settlement struct {
	Winners        []string
	TotalPrize     int64
	PrizePerWinner int64
	Dust           int64
	AdminFee       int64
}

// PayoutFor returns the amount owed to the winner at position i in
// draw order.
func (s *Settlement) PayoutFor(i int) int64 {
	if i == 0 {
		return s.PrizePerWinner + s.Dust
	}
	return s.PrizePerWinner
}

// PlanSettlement selects winners and computes all payout amounts
// without mutating the round. The caller commits the plan only after
// every transfer has succeeded, so a failed payout aborts the draw
// with the round untouched.
//
// Selection samples distinct positions without replacement using a
// shrinking index pool: each call to src consumes one draw over the
// remaining indexes, so every permutation of the chosen size is
// equally likely given a uniform source. Entropy consumption is exactly
// one draw per winner.
func (r *Round) PlanSettlement(now time.Time, src RandomSource) (*Settlement, error) {
	if r.Status != RoundStatusOpen {
		return nil, ErrRoundAlreadyCompleted
	}
	if now.Before(r.Deadline) {
		return nil, ErrDeadlineNotReached
	}
	n := len(r.Participants)
	if n < MinParticipants {
		return nil, ErrNotEnoughParticipants
	}

	numWinners := WinnerCount(n)

	indexes := make([]int, n)
	for i := range indexes {
		indexes[i] = i
	}

	winners := make([]string, 0, numWinners)
	for k := 0; k < numWinners; k++ {
		j, err := src.DrawUniform(0, int64(len(indexes)-1))
		if err != nil {
			return nil, err
		}
		winners = append(winners, r.Participants[indexes[j]])
		// swap-remove keeps the pool shrinking in O(1)
		indexes[j] = indexes[len(indexes)-1]
		indexes = indexes[:len(indexes)-1]
	}

	adminFee := r.Pool * r.AdminFeeBps / FeeDenominator
	totalPrize := r.Pool - adminFee
	prizePerWinner := totalPrize / int64(numWinners)
	dust := totalPrize - prizePerWinner*int64(numWinners)

	return &Settlement{
		Winners:        winners,
		TotalPrize:     totalPrize,
		PrizePerWinner: prizePerWinner,
		Dust:           dust,
		AdminFee:       adminFee,
	}, nil
}

// CommitSettlement records the outcome after all payouts succeeded.
// The pool reaches exactly zero and the round becomes immutable
// history.
func (r *Round) CommitSettlement(s *Settlement) {
	r.Winners = s.Winners
	r.Pool = 0
	r.Status = RoundStatusCompleted
}

// PlanRefund validates a refund claim and returns the ticket count and
// amount owed, without mutating the round. Refunds are only available
// once the deadline has passed and the current participant count sits
// below the draw minimum; the count is re-read per claim, so earlier
// refunds shrink it for later claimants.
func (r *Round) PlanRefund(claimant string, now time.Time) (int, int64, error) {
	if r.Status != RoundStatusOpen {
		return 0, 0, ErrRoundAlreadyCompleted
	}
	if now.Before(r.Deadline) || len(r.Participants) >= MinParticipants {
		return 0, 0, ErrRefundNotAvailable
	}

	count := 0
	for _, p := range r.Participants {
		if p == claimant {
			count++
		}
	}
	if count == 0 {
		return 0, 0, ErrNotAParticipant
	}
	return count, int64(count) * r.TicketPrice, nil
}

// CommitRefund removes every entry of the claimant in one filter pass
// and decrements the pool by the refunded amount. The round stays
// Open; other participants may still claim independently.
func (r *Round) CommitRefund(claimant string, refund int64) {
	kept := r.Participants[:0]
	for _, p := range r.Participants {
		if p != claimant {
			kept = append(kept, p)
		}
	}
	r.Participants = kept
	r.Pool -= refund
}

// View is a read-only snapshot of a round
type View struct {
	RoundID      string      `json:"round_id"`
	TicketPrice  int64       `json:"ticket_price"`
	Pool         int64       `json:"pool"`
	TicketCount  int         `json:"ticket_count"`
	Deadline     time.Time   `json:"deadline"`
	Status       RoundStatus `json:"status"`
	StatusText   string      `json:"status_text"`
	Winners      []string    `json:"winners"`
	AdminFeeBps  int64       `json:"admin_fee_bps"`
	Active       bool        `json:"active"`
	Participants []string    `json:"participants"`
}

// Snapshot copies the round into a View; slices are cloned so the
// snapshot stays stable after the round mutates.
func (r *Round) Snapshot(now time.Time) View {
	winners := make([]string, len(r.Winners))
	copy(winners, r.Winners)
	participants := make([]string, len(r.Participants))
	copy(participants, r.Participants)

	return View{
		RoundID:      r.RoundID,
		TicketPrice:  r.TicketPrice,
		Pool:         r.Pool,
		TicketCount:  len(r.Participants),
		Deadline:     r.Deadline,
		Status:       r.Status,
		StatusText:   r.Status.String(),
		Winners:      winners,
		AdminFeeBps:  r.AdminFeeBps,
		Active:       r.IsActive(now),
		Participants: participants,
	}
}

// PoolAccount is the wallet account holding a round's pool
func (r *Round) PoolAccount() string { return PoolAccount(r.RoundID) }

// PoolAccount derives the wallet account name for a round's pool
func PoolAccount(roundID string) string { return "round:" + roundID }

var (
	node *snowflake.Node
	once sync.Once
)

func initSnowflake() {
	var err error
	node, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

// NewRoundID generates a unique round identifier
func NewRoundID() string {
	once.Do(initSnowflake)
	return node.Generate().String()
}

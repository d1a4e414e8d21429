package domain

import (
	"context"
	"time"
)

// Event is a structured record emitted after a state change. Events
// are fire-and-forget: observers consume them off-process and the
// engine never reads them back.
type Event interface {
	EventName() string
}

// EventEmitter publishes events to registered observers
type EventEmitter interface {
	Emit(ctx context.Context, event Event)
}

// RoundCreated is emitted when an admin opens a round
type RoundCreated struct {
	RoundID     string    `json:"round_id"`
	TicketPrice int64     `json:"ticket_price"`
	Deadline    time.Time `json:"deadline"`
}

func (RoundCreated) EventName() string { return "round_created" }

// TicketsPurchased is emitted after a successful ticket purchase
type TicketsPurchased struct {
	RoundID string `json:"round_id"`
	Buyer   string `json:"buyer"`
	Tickets int    `json:"tickets"`
	Payment int64  `json:"payment"`
	Pool    int64  `json:"pool"`
}

func (TicketsPurchased) EventName() string { return "tickets_purchased" }

// RoundSettled is emitted after a draw pays out
type RoundSettled struct {
	RoundID        string   `json:"round_id"`
	Winners        []string `json:"winners"`
	TotalPrize     int64    `json:"total_prize"`
	PrizePerWinner int64    `json:"prize_per_winner"`
	Dust           int64    `json:"dust"`
	AdminFee       int64    `json:"admin_fee"`
}

func (RoundSettled) EventName() string { return "round_settled" }

// TicketsRefunded is emitted after an under-subscribed round refunds a
// claimant
type TicketsRefunded struct {
	RoundID  string `json:"round_id"`
	Claimant string `json:"claimant"`
	Tickets  int    `json:"tickets"`
	Amount   int64  `json:"amount"`
	Pool     int64  `json:"pool"`
}

func (TicketsRefunded) EventName() string { return "tickets_refunded" }

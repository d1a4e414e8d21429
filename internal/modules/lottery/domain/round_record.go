package domain

import (
	"context"
	"time"
)

// RoundRecord is the persisted history row for a round. Live state is
// held in memory; the record is written at creation and updated once
// at settlement, giving observers a durable trail.
type RoundRecord struct {
	RoundID      string      `gorm:"primaryKey;type:varchar(64)" json:"round_id"`
	TicketPrice  int64       `gorm:"not null" json:"ticket_price"`
	AdminFeeBps  int64       `gorm:"not null" json:"admin_fee_bps"`
	Deadline     time.Time   `gorm:"not null" json:"deadline"`
	Status       RoundStatus `gorm:"type:int;not null;default:0" json:"status"`
	TicketsSold  int         `gorm:"default:0" json:"tickets_sold"`
	PoolTotal    int64       `gorm:"default:0" json:"pool_total"`
	Winners      string      `gorm:"type:varchar(2048)" json:"winners"` // comma-joined winner addresses in draw order
	TotalPrize   int64       `gorm:"default:0" json:"total_prize"`
	AdminFeePaid int64       `gorm:"default:0" json:"admin_fee_paid"`
	SettledAt    *time.Time  `json:"settled_at"`
	CreatedAt    time.Time   `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// TableName overrides the table name
func (RoundRecord) TableName() string {
	return "lottery_rounds"
}

// RoundRecordRepository defines the interface for round history
// persistence
type RoundRecordRepository interface {
	Create(ctx context.Context, record *RoundRecord) error
	UpdateSettlement(ctx context.Context, roundID string, winners string, ticketsSold int, poolTotal, totalPrize, adminFee int64, settledAt time.Time) error
	Get(ctx context.Context, roundID string) (*RoundRecord, error)
}

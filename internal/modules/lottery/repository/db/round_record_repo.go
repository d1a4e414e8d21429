package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Allen-Saji/sui-lotto-contract/internal/modules/lottery/domain"
)

// RoundRecordRepository implements domain.RoundRecordRepository on gorm
type RoundRecordRepository struct {
	db *gorm.DB
}

// NewRoundRecordRepository creates a new gorm-backed record repository
func NewRoundRecordRepository(db *gorm.DB) *RoundRecordRepository {
	return &RoundRecordRepository{db: db}
}

// Migrate creates the lottery_rounds table if needed
func (r *RoundRecordRepository) Migrate() error {
	return r.db.AutoMigrate(&domain.RoundRecord{})
}

// Create inserts the history row for a newly opened round
func (r *RoundRecordRepository) Create(ctx context.Context, record *domain.RoundRecord) error {
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	return r.db.WithContext(ctx).Create(record).Error
}

// UpdateSettlement marks the round completed with its final numbers
func (r *RoundRecordRepository) UpdateSettlement(ctx context.Context, roundID string, winners string, ticketsSold int, poolTotal, totalPrize, adminFee int64, settledAt time.Time) error {
	updates := map[string]interface{}{
		"status":         domain.RoundStatusCompleted,
		"winners":        winners,
		"tickets_sold":   ticketsSold,
		"pool_total":     poolTotal,
		"total_prize":    totalPrize,
		"admin_fee_paid": adminFee,
		"settled_at":     settledAt,
		"updated_at":     time.Now(),
	}
	return r.db.WithContext(ctx).Model(&domain.RoundRecord{}).
		Where("round_id = ?", roundID).
		Updates(updates).Error
}

// Get loads a round record by ID, mapping gorm's not-found to the
// domain sentinel
func (r *RoundRecordRepository) Get(ctx context.Context, roundID string) (*domain.RoundRecord, error) {
	var record domain.RoundRecord
	err := r.db.WithContext(ctx).Where("round_id = ?", roundID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRoundNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Package usecase implements the business logic of the lottery round
// engine: round creation, ticket sales, draw settlement and refunds.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Allen-Saji/sui-lotto-contract/internal/metrics"
	"github.com/Allen-Saji/sui-lotto-contract/internal/modules/lottery/domain"
	"github.com/Allen-Saji/sui-lotto-contract/pkg/clock"
	"github.com/Allen-Saji/sui-lotto-contract/pkg/logger"
	"github.com/Allen-Saji/sui-lotto-contract/pkg/service"
)

// CapabilityChecker verifies the admin capability token and resolves
// the admin's payout address
type CapabilityChecker interface {
	VerifyAdmin(token string) (string, bool)
}

// RoundCache caches settled-round snapshots for observers. Both
// methods are best-effort; failures never abort a round operation.
type RoundCache interface {
	SetResult(ctx context.Context, view domain.View) error
	GetResult(ctx context.Context, roundID string) (domain.View, bool, error)
}

// RoundUseCase orchestrates round operations. Every mutation runs
// inside the round repository's per-round critical section with its
// fund transfers, so an operation either fully commits or leaves no
// trace.
type RoundUseCase struct {
	rounds  domain.RoundRepository
	records domain.RoundRecordRepository // optional archive
	cache   RoundCache                   // optional snapshot cache
	wallet  service.WalletService
	emitter domain.EventEmitter
	clk     clock.Clock
	src     domain.RandomSource
	caps    CapabilityChecker

	lookups singleflight.Group
}

// NewRoundUseCase creates a round use case. records and cache may be
// nil; the engine then runs memory-only.
func NewRoundUseCase(
	rounds domain.RoundRepository,
	records domain.RoundRecordRepository,
	cache RoundCache,
	wallet service.WalletService,
	emitter domain.EventEmitter,
	clk clock.Clock,
	src domain.RandomSource,
	caps CapabilityChecker,
) *RoundUseCase {
	return &RoundUseCase{
		rounds:  rounds,
		records: records,
		cache:   cache,
		wallet:  wallet,
		emitter: emitter,
		clk:     clk,
		src:     src,
		caps:    caps,
	}
}

// CreateRound opens a new round. Requires the admin capability.
func (uc *RoundUseCase) CreateRound(ctx context.Context, adminToken string, ticketPrice int64, deadline time.Time) (domain.View, error) {
	if _, ok := uc.caps.VerifyAdmin(adminToken); !ok {
		return domain.View{}, domain.ErrUnauthorized
	}

	now := uc.clk.Now()
	roundID := domain.NewRoundID()
	ctx = logger.WithFields(ctx, map[string]interface{}{"round_id": roundID})

	round, err := domain.NewRound(roundID, ticketPrice, deadline, now)
	if err != nil {
		logger.Warn(ctx).Err(err).Int64("ticket_price", ticketPrice).Time("deadline", deadline).Msg("Round creation rejected")
		return domain.View{}, err
	}

	if err := uc.rounds.Create(ctx, round); err != nil {
		return domain.View{}, fmt.Errorf("register round: %w", err)
	}

	if uc.records != nil {
		record := &domain.RoundRecord{
			RoundID:     roundID,
			TicketPrice: ticketPrice,
			AdminFeeBps: round.AdminFeeBps,
			Deadline:    deadline,
			Status:      domain.RoundStatusOpen,
		}
		if err := uc.records.Create(ctx, record); err != nil {
			logger.Warn(ctx).Err(err).Msg("Failed to archive round creation")
		}
	}

	logger.Info(ctx).
		Int64("ticket_price", ticketPrice).
		Time("deadline", deadline).
		Int64("admin_fee_bps", round.AdminFeeBps).
		Msg("Round created")

	uc.emitter.Emit(ctx, domain.RoundCreated{
		RoundID:     roundID,
		TicketPrice: ticketPrice,
		Deadline:    deadline,
	})

	return round.Snapshot(now), nil
}

// BuyTickets sells whole tickets to buyer for payment. The payment
// moves from the buyer's account into the round pool before the
// participant entries are appended; a failed transfer aborts with the
// round unchanged.
func (uc *RoundUseCase) BuyTickets(ctx context.Context, roundID, buyer string, payment int64) (int, error) {
	start := time.Now()
	resultLabel := "fail"
	defer func() { metrics.RecordPurchase(resultLabel, start) }()

	ctx = logger.WithFields(ctx, map[string]interface{}{"round_id": roundID, "buyer": buyer})
	now := uc.clk.Now()

	var tickets int
	var pool int64
	err := uc.rounds.Update(ctx, roundID, func(r *domain.Round) error {
		if _, err := r.ValidatePurchase(payment, now); err != nil {
			return err
		}
		if err := uc.wallet.Transfer(ctx, buyer, r.PoolAccount(), payment, "ticket:"+roundID); err != nil {
			return err
		}
		bought, err := r.BuyTickets(buyer, payment, now)
		if err != nil {
			return err
		}
		tickets = bought
		pool = r.Pool
		return nil
	})
	if err != nil {
		logger.Warn(ctx).Err(err).Int64("payment", payment).Msg("Ticket purchase rejected")
		return 0, err
	}

	logger.Info(ctx).
		Int("tickets", tickets).
		Int64("payment", payment).
		Int64("pool", pool).
		Msg("Tickets purchased")

	uc.emitter.Emit(ctx, domain.TicketsPurchased{
		RoundID: roundID,
		Buyer:   buyer,
		Tickets: tickets,
		Payment: payment,
		Pool:    pool,
	})

	resultLabel = "success"
	return tickets, nil
}

// Draw selects winners and pays out the pool. Requires the admin
// capability; the fee goes to the token's subject address. Payouts run
// in draw order with the dust on the first winner, and the whole
// operation aborts with funds restored if any transfer fails.
func (uc *RoundUseCase) Draw(ctx context.Context, roundID, adminToken string) (*domain.Settlement, error) {
	start := time.Now()
	resultLabel := "fail"
	defer func() { metrics.RecordDraw(resultLabel, start) }()

	adminAddress, ok := uc.caps.VerifyAdmin(adminToken)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	ctx = logger.WithFields(ctx, map[string]interface{}{"round_id": roundID})
	now := uc.clk.Now()

	var settlement *domain.Settlement
	var snapshot domain.View
	var preDrawPool int64
	var ticketsSold int

	err := uc.rounds.Update(ctx, roundID, func(r *domain.Round) error {
		plan, err := r.PlanSettlement(now, uc.src)
		if err != nil {
			return err
		}

		preDrawPool = r.Pool
		ticketsSold = r.TicketCount()
		pool := r.PoolAccount()

		// All transfers precede the commit. The plan sums to exactly
		// the pool balance, so a failure can only come from the wallet
		// itself; already-moved prizes are returned before aborting.
		type payment struct {
			to     string
			amount int64
		}
		paid := make([]payment, 0, len(plan.Winners)+1)

		rollback := func() {
			for _, p := range paid {
				if rbErr := uc.wallet.Transfer(ctx, p.to, pool, p.amount, "draw_rollback:"+roundID); rbErr != nil {
					logger.Error(ctx).Err(rbErr).Str("account", p.to).Int64("amount", p.amount).Msg("Draw rollback transfer failed")
				}
			}
		}

		for i, winner := range plan.Winners {
			amount := plan.PayoutFor(i)
			if err := uc.wallet.Transfer(ctx, pool, winner, amount, "prize:"+roundID); err != nil {
				rollback()
				return fmt.Errorf("pay winner %d: %w", i, err)
			}
			paid = append(paid, payment{winner, amount})
		}

		if plan.AdminFee > 0 {
			if err := uc.wallet.Transfer(ctx, pool, adminAddress, plan.AdminFee, "admin_fee:"+roundID); err != nil {
				rollback()
				return fmt.Errorf("pay admin fee: %w", err)
			}
		}

		r.CommitSettlement(plan)
		settlement = plan
		snapshot = r.Snapshot(now)
		return nil
	})
	if err != nil {
		logger.Warn(ctx).Err(err).Msg("Draw rejected")
		return nil, err
	}

	logger.Info(ctx).
		Strs("winners", settlement.Winners).
		Int64("total_prize", settlement.TotalPrize).
		Int64("prize_per_winner", settlement.PrizePerWinner).
		Int64("dust", settlement.Dust).
		Int64("admin_fee", settlement.AdminFee).
		Int64("pool_before", preDrawPool).
		Msg("Round settled")

	if uc.records != nil {
		if err := uc.records.UpdateSettlement(ctx, roundID,
			strings.Join(settlement.Winners, ","), ticketsSold, preDrawPool,
			settlement.TotalPrize, settlement.AdminFee, now); err != nil {
			logger.Warn(ctx).Err(err).Msg("Failed to archive settlement")
		}
	}
	if uc.cache != nil {
		if err := uc.cache.SetResult(ctx, snapshot); err != nil {
			logger.Warn(ctx).Err(err).Msg("Failed to cache settled round")
		}
	}

	uc.emitter.Emit(ctx, domain.RoundSettled{
		RoundID:        roundID,
		Winners:        settlement.Winners,
		TotalPrize:     settlement.TotalPrize,
		PrizePerWinner: settlement.PrizePerWinner,
		Dust:           settlement.Dust,
		AdminFee:       settlement.AdminFee,
	})

	resultLabel = "success"
	return settlement, nil
}

// Refund returns every ticket payment of claimant from an
// under-subscribed round past its deadline. The transfer out of the
// pool and the participant removal happen in the same critical
// section.
func (uc *RoundUseCase) Refund(ctx context.Context, roundID, claimant string) (int, int64, error) {
	start := time.Now()
	resultLabel := "fail"
	defer func() { metrics.RecordRefund(resultLabel, start) }()

	ctx = logger.WithFields(ctx, map[string]interface{}{"round_id": roundID, "claimant": claimant})
	now := uc.clk.Now()

	var tickets int
	var amount, pool int64
	err := uc.rounds.Update(ctx, roundID, func(r *domain.Round) error {
		count, refund, err := r.PlanRefund(claimant, now)
		if err != nil {
			return err
		}
		if err := uc.wallet.Transfer(ctx, r.PoolAccount(), claimant, refund, "refund:"+roundID); err != nil {
			return err
		}
		r.CommitRefund(claimant, refund)
		tickets, amount, pool = count, refund, r.Pool
		return nil
	})
	if err != nil {
		logger.Warn(ctx).Err(err).Msg("Refund rejected")
		return 0, 0, err
	}

	logger.Info(ctx).
		Int("tickets", tickets).
		Int64("amount", amount).
		Int64("pool", pool).
		Msg("Tickets refunded")

	uc.emitter.Emit(ctx, domain.TicketsRefunded{
		RoundID:  roundID,
		Claimant: claimant,
		Tickets:  tickets,
		Amount:   amount,
		Pool:     pool,
	})

	resultLabel = "success"
	return tickets, amount, nil
}

// GetRound returns a snapshot of the round. Live state wins; after a
// restart, completed rounds are served from the snapshot cache or the
// archive, with concurrent lookups for the same round collapsed.
func (uc *RoundUseCase) GetRound(ctx context.Context, roundID string) (domain.View, error) {
	now := uc.clk.Now()

	view, err := uc.rounds.Get(ctx, roundID, now)
	if err == nil {
		return view, nil
	}
	if !errors.Is(err, domain.ErrRoundNotFound) {
		return domain.View{}, err
	}
	if uc.records == nil && uc.cache == nil {
		return domain.View{}, domain.ErrRoundNotFound
	}

	v, err, _ := uc.lookups.Do(roundID, func() (interface{}, error) {
		if uc.cache != nil {
			cached, hit, cacheErr := uc.cache.GetResult(ctx, roundID)
			if cacheErr != nil {
				logger.Warn(ctx).Err(cacheErr).Str("round_id", roundID).Msg("Round cache lookup failed")
			} else if hit {
				return cached, nil
			}
		}
		if uc.records == nil {
			return domain.View{}, domain.ErrRoundNotFound
		}
		record, recErr := uc.records.Get(ctx, roundID)
		if recErr != nil {
			return domain.View{}, recErr
		}
		return viewFromRecord(record), nil
	})
	if err != nil {
		return domain.View{}, err
	}
	return v.(domain.View), nil
}

func viewFromRecord(record *domain.RoundRecord) domain.View {
	winners := make([]string, 0)
	if record.Winners != "" {
		winners = strings.Split(record.Winners, ",")
	}
	return domain.View{
		RoundID:     record.RoundID,
		TicketPrice: record.TicketPrice,
		TicketCount: record.TicketsSold,
		Deadline:    record.Deadline,
		Status:      record.Status,
		StatusText:  record.Status.String(),
		Winners:     winners,
		AdminFeeBps: record.AdminFeeBps,
	}
}

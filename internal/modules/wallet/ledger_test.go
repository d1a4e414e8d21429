package wallet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allen-Saji/sui-lotto-contract/pkg/service"
)

func TestDepositAndBalance(t *testing.T) {
	s := NewLedgerService()
	ctx := context.Background()

	b, err := s.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), b)

	b, err = s.Deposit(ctx, "alice", 500, "seed")
	require.NoError(t, err)
	assert.Equal(t, int64(500), b)

	_, err = s.Deposit(ctx, "alice", 0, "seed")
	assert.Error(t, err)
	_, err = s.Deposit(ctx, "alice", -10, "seed")
	assert.Error(t, err)
}

func TestTransfer(t *testing.T) {
	s := NewLedgerService()
	ctx := context.Background()
	s.SetBalance("alice", 1000)

	err := s.Transfer(ctx, "alice", "pool", 600, "ticket")
	require.NoError(t, err)

	aliceBalance, _ := s.Balance(ctx, "alice")
	poolBalance, _ := s.Balance(ctx, "pool")
	assert.Equal(t, int64(400), aliceBalance)
	assert.Equal(t, int64(600), poolBalance)
}

func TestTransferInsufficientFundsMovesNothing(t *testing.T) {
	s := NewLedgerService()
	ctx := context.Background()
	s.SetBalance("alice", 100)

	err := s.Transfer(ctx, "alice", "pool", 101, "ticket")
	assert.ErrorIs(t, err, service.ErrInsufficientFunds)

	aliceBalance, _ := s.Balance(ctx, "alice")
	poolBalance, _ := s.Balance(ctx, "pool")
	assert.Equal(t, int64(100), aliceBalance)
	assert.Equal(t, int64(0), poolBalance)
}

func TestTransferRejectsNonPositiveAmount(t *testing.T) {
	s := NewLedgerService()
	ctx := context.Background()
	s.SetBalance("alice", 100)

	assert.Error(t, s.Transfer(ctx, "alice", "pool", 0, "ticket"))
	assert.Error(t, s.Transfer(ctx, "alice", "pool", -5, "ticket"))

	aliceBalance, _ := s.Balance(ctx, "alice")
	assert.Equal(t, int64(100), aliceBalance)
}

// Package wallet provides the in-process ledger implementing
// service.WalletService. Accounts are addressed by opaque strings;
// round pools are ordinary accounts named by the round engine.
package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/Allen-Saji/sui-lotto-contract/pkg/service"
)

// LedgerService keeps balances in memory behind a single mutex, so a
// transfer debits and credits in one atomic step and fails loudly
// without partial effect when the source cannot cover the amount.
type LedgerService struct {
	mu       sync.RWMutex
	balances map[string]int64
}

// NewLedgerService creates an empty ledger
func NewLedgerService() *LedgerService {
	return &LedgerService{balances: make(map[string]int64)}
}

// SetBalance seeds an account balance (for tests and local runs)
func (s *LedgerService) SetBalance(account string, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[account] = balance
}

// Balance returns the current balance of an account
func (s *LedgerService) Balance(ctx context.Context, account string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[account], nil
}

// Deposit credits an account and returns the new balance
func (s *LedgerService) Deposit(ctx context.Context, account string, amount int64, reason string) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("wallet: deposit amount must be positive, got %d", amount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[account] += amount
	return s.balances[account], nil
}

// Transfer moves amount from one account to another atomically. It
// returns service.ErrInsufficientFunds when the source balance cannot
// cover the amount; no funds move on failure.
func (s *LedgerService) Transfer(ctx context.Context, from, to string, amount int64, reason string) error {
	if amount <= 0 {
		return fmt.Errorf("wallet: transfer amount must be positive, got %d", amount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.balances[from] < amount {
		return fmt.Errorf("wallet: transfer %d from %q (%s): %w", amount, from, reason, service.ErrInsufficientFunds)
	}
	s.balances[from] -= amount
	s.balances[to] += amount
	return nil
}

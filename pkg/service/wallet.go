package service

import (
	"context"
	"errors"
)

// ErrInsufficientFunds is returned by Transfer when the source account
// cannot cover the amount. Transfers never partially apply.
var ErrInsufficientFunds = errors.New("wallet: insufficient funds")

// WalletService defines the interface for moving funds between
// addressed accounts. Round pools are ordinary accounts; the engine
// never asks for a transfer larger than the pool balance it tracks.
type WalletService interface {
	Balance(ctx context.Context, account string) (int64, error)
	Deposit(ctx context.Context, account string, amount int64, reason string) (int64, error)
	Transfer(ctx context.Context, from, to string, amount int64, reason string) error
}

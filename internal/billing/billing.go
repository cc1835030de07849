// Package billing meters token usage against per-user coin balances.
package billing

import (
	"context"
	"errors"
)

var ErrInsufficientFunds = errors.New("insufficient coin balance")

// Ledger tracks coin balances. Balance lazily creates the account with
// the initial grant on first touch.
type Ledger interface {
	Balance(ctx context.Context, userID int64) (int64, error)
	// Charge debits the cost of the given token count and returns the
	// remaining balance. It fails with ErrInsufficientFunds without
	// debiting when the balance does not cover the cost.
	Charge(ctx context.Context, userID int64, tokens int) (int64, error)
	TopUp(ctx context.Context, userID int64, coins int64, reason string) (int64, error)
	Cost(tokens int) int64
}

// Cost converts a token count into coins, rounding up so no usage is
// ever free.
func Cost(tokens int, coinsPer1K int64) int64 {
	if tokens <= 0 || coinsPer1K <= 0 {
		return 0
	}
	return (int64(tokens)*coinsPer1K + 999) / 1000
}

// NoopLedger is used when billing is disabled: every request is allowed
// and nothing is recorded.
type NoopLedger struct{}

func (NoopLedger) Balance(context.Context, int64) (int64, error) { return 0, nil }

func (NoopLedger) Charge(context.Context, int64, int) (int64, error) { return 0, nil }

func (NoopLedger) TopUp(_ context.Context, _ int64, coins int64, _ string) (int64, error) {
	return coins, nil
}

func (NoopLedger) Cost(int) int64 { return 0 }

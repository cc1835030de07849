package billing

import (
	"context"
	"fmt"

	"github.com/vlasenkov/chatscribe/internal/config"
	"github.com/vlasenkov/chatscribe/internal/database"
	"github.com/vlasenkov/chatscribe/internal/logger"
)

type SQLiteLedger struct {
	db           database.Database
	logger       logger.Logger
	initialCoins int64
	coinsPer1K   int64
}

func NewSQLiteLedger(db database.Database, cfg config.BillingConfig, log logger.Logger) *SQLiteLedger {
	return &SQLiteLedger{
		db:           db,
		logger:       log,
		initialCoins: cfg.InitialCoins,
		coinsPer1K:   cfg.CoinsPer1KTokens,
	}
}

func (l *SQLiteLedger) Balance(ctx context.Context, userID int64) (int64, error) {
	if err := l.ensureAccount(ctx, userID); err != nil {
		return 0, err
	}
	var coins int64
	err := l.db.QueryRowContext(ctx, "SELECT coins FROM balances WHERE user_id = ?", userID).Scan(&coins)
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	return coins, nil
}

func (l *SQLiteLedger) Charge(ctx context.Context, userID int64, tokens int) (int64, error) {
	cost := l.Cost(tokens)
	if cost == 0 {
		return l.Balance(ctx, userID)
	}

	balance, err := l.Balance(ctx, userID)
	if err != nil {
		return 0, err
	}
	if balance < cost {
		return balance, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, balance, cost)
	}

	// The conditional update keeps the debit atomic; a concurrent
	// charge that drains the account first makes this a no-op.
	res, err := l.db.ExecWithRetry(ctx, `
		UPDATE balances SET coins = coins - ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND coins >= ?
	`, cost, userID, cost)
	if err != nil {
		return balance, fmt.Errorf("failed to charge: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return balance, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, balance, cost)
	}

	l.record(ctx, userID, -cost, tokens, "usage")

	l.logger.WithFields(logger.Fields{
		"user_id": userID,
		"tokens":  tokens,
		"cost":    cost,
	}).Debug("Charged usage")

	return balance - cost, nil
}

func (l *SQLiteLedger) TopUp(ctx context.Context, userID int64, coins int64, reason string) (int64, error) {
	if err := l.ensureAccount(ctx, userID); err != nil {
		return 0, err
	}
	_, err := l.db.ExecWithRetry(ctx, `
		UPDATE balances SET coins = coins + ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ?
	`, coins, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to top up: %w", err)
	}
	l.record(ctx, userID, coins, 0, reason)
	return l.Balance(ctx, userID)
}

func (l *SQLiteLedger) Cost(tokens int) int64 {
	return Cost(tokens, l.coinsPer1K)
}

func (l *SQLiteLedger) ensureAccount(ctx context.Context, userID int64) error {
	res, err := l.db.ExecWithRetry(ctx, `
		INSERT INTO balances (user_id, coins) VALUES (?, ?)
		ON CONFLICT(user_id) DO NOTHING
	`, userID, l.initialCoins)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		l.record(ctx, userID, l.initialCoins, 0, "initial grant")
	}
	return nil
}

func (l *SQLiteLedger) record(ctx context.Context, userID, delta int64, tokens int, reason string) {
	_, err := l.db.ExecWithRetry(ctx, `
		INSERT INTO balance_ledger (user_id, delta, tokens, reason) VALUES (?, ?, ?, ?)
	`, userID, delta, tokens, reason)
	if err != nil {
		l.logger.WithError(err).WithField("user_id", userID).Warn("Failed to record ledger entry")
	}
}

package history

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vlasenkov/chatscribe/internal/database"
	"github.com/vlasenkov/chatscribe/internal/logger"
)

// ctxDB stands in for a driver that fails reads once the caller's
// context is done.
type ctxDB struct {
	database.Database
}

func (ctxDB) QueryContext(ctx context.Context, _ string, _ ...any) (*sql.Rows, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, sql.ErrNoRows
}

func TestSQLiteStore_TurnsHonorsContext(t *testing.T) {
	store := NewSQLiteStore(ctxDB{}, logger.NewTestLogger(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Turns(ctx, Scope{ChatID: 1, UserID: 2})
	require.ErrorIs(t, err, context.Canceled)
}

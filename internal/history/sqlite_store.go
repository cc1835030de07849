package history

import (
	"context"
	"fmt"

	"github.com/vlasenkov/chatscribe/internal/ai"
	"github.com/vlasenkov/chatscribe/internal/database"
	"github.com/vlasenkov/chatscribe/internal/logger"
)

type SQLiteStore struct {
	db       database.Database
	logger   logger.Logger
	maxTurns int
}

func NewSQLiteStore(db database.Database, log logger.Logger, maxTurns int) *SQLiteStore {
	return &SQLiteStore{db: db, logger: log, maxTurns: maxTurns}
}

func (s *SQLiteStore) Turns(ctx context.Context, scope Scope) ([]ai.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, name, content FROM conversation_turns
		WHERE chat_id = ? AND user_id = ?
		ORDER BY id ASC
	`, scope.ChatID, scope.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []ai.Message
	for rows.Next() {
		var turn ai.Message
		if err := rows.Scan(&turn.Role, &turn.Name, &turn.Content); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return turns, nil
}

func (s *SQLiteStore) Append(ctx context.Context, scope Scope, turns ...ai.Message) error {
	for _, turn := range turns {
		_, err := s.db.ExecWithRetry(ctx, `
			INSERT INTO conversation_turns (chat_id, user_id, role, name, content)
			VALUES (?, ?, ?, ?, ?)
		`, scope.ChatID, scope.UserID, turn.Role, turn.Name, turn.Content)
		if err != nil {
			return fmt.Errorf("failed to append turn: %w", err)
		}
	}
	return s.trim(ctx, scope)
}

func (s *SQLiteStore) Reset(ctx context.Context, scope Scope) error {
	_, err := s.db.ExecWithRetry(ctx, `
		DELETE FROM conversation_turns WHERE chat_id = ? AND user_id = ?
	`, scope.ChatID, scope.UserID)
	return err
}

// trim drops the oldest turns beyond the configured cap.
func (s *SQLiteStore) trim(ctx context.Context, scope Scope) error {
	if s.maxTurns <= 0 {
		return nil
	}
	res, err := s.db.ExecWithRetry(ctx, `
		DELETE FROM conversation_turns
		WHERE chat_id = ? AND user_id = ? AND id NOT IN (
			SELECT id FROM conversation_turns
			WHERE chat_id = ? AND user_id = ?
			ORDER BY id DESC LIMIT ?
		)
	`, scope.ChatID, scope.UserID, scope.ChatID, scope.UserID, s.maxTurns)
	if err != nil {
		return fmt.Errorf("failed to trim turns: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.logger.WithFields(logger.Fields{
			"chat_id": scope.ChatID,
			"user_id": scope.UserID,
			"evicted": n,
		}).Debug("Evicted oldest conversation turns")
	}
	return nil
}

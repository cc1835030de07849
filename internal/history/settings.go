package history

import (
	"database/sql"

	"github.com/vlasenkov/chatscribe/internal/database"
)

// ChatSettings stores the per-chat model override.
type ChatSettings struct {
	db database.Database
}

func NewChatSettings(db database.Database) *ChatSettings {
	return &ChatSettings{db: db}
}

func (c *ChatSettings) SaveModel(chatID int64, model string) error {
	_, err := c.db.Exec(`
		INSERT INTO chat_settings (chat_id, model)
		VALUES (?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET model = excluded.model, updated_at = CURRENT_TIMESTAMP
	`, chatID, model)
	return err
}

func (c *ChatSettings) Model(chatID int64) (string, error) {
	var model string
	err := c.db.QueryRow("SELECT model FROM chat_settings WHERE chat_id = ?", chatID).Scan(&model)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return model, err
}

func (c *ChatSettings) DeleteModel(chatID int64) error {
	_, err := c.db.Exec("DELETE FROM chat_settings WHERE chat_id = ?", chatID)
	return err
}

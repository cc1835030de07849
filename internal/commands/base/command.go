package base

import (
	"github.com/vlasenkov/chatscribe/internal/app/di"
	"github.com/vlasenkov/chatscribe/internal/config"
	"github.com/vlasenkov/chatscribe/internal/history"
	"github.com/vlasenkov/chatscribe/internal/logger"
	"github.com/vlasenkov/chatscribe/internal/service"
	"github.com/vlasenkov/chatscribe/internal/telegram"
)

// Command carries the shared dependencies every concrete command embeds.
type Command struct {
	Tg          telegram.Client
	Logger      logger.Logger
	Cfg         *config.Config
	ChatService *service.ChatService
	Localizer   *service.Localizer
}

func NewCommand(di *di.Container) *Command {
	return &Command{
		Tg:          di.BotClient,
		Logger:      di.Logger,
		Cfg:         di.Cfg,
		ChatService: di.ChatService,
		Localizer:   di.Localizer,
	}
}

func (c *Command) Aliases() []string {
	return []string{}
}

func (c *Command) L(messageID string, data map[string]any) string {
	return c.Localizer.Localize(messageID, data)
}

// ScopeOf maps an update onto its conversation scope.
func (c *Command) ScopeOf(update telegram.Update) history.Scope {
	return history.Scope{
		ChatID: update.Message.Chat.ID,
		UserID: update.Message.From.ID,
	}
}

// ReplyText sends a localized or plain text reply, splitting messages
// that exceed the API limit.
func (c *Command) ReplyText(update telegram.Update, text string) error {
	chatID := update.Message.Chat.ID
	replyTo := update.Message.MessageID
	for _, chunk := range telegram.SplitMessage(text) {
		if _, err := c.Tg.SendWithRetry(telegram.NewMessage(chatID, chunk, replyTo), 3); err != nil {
			return err
		}
		// Only the first chunk threads onto the original message.
		replyTo = 0
	}
	return nil
}

package ask

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vlasenkov/chatscribe/internal/app/di"
	"github.com/vlasenkov/chatscribe/internal/billing"
	"github.com/vlasenkov/chatscribe/internal/commands/base"
	"github.com/vlasenkov/chatscribe/internal/logger"
	"github.com/vlasenkov/chatscribe/internal/service"
	"github.com/vlasenkov/chatscribe/internal/telegram"
)

const CommandName = "ask"

const requestTimeout = 3 * time.Minute

type Command struct {
	*base.Command
}

func New(di *di.Container) *Command {
	return &Command{Command: base.NewCommand(di)}
}

func (c *Command) Name() string {
	return CommandName
}

func (c *Command) Aliases() []string {
	return []string{"a"}
}

func (c *Command) Handle(update telegram.Update) error {
	msg := update.Message
	prompt := strings.TrimSpace(msg.CommandArguments())
	if prompt == "" && msg.Command() == "" {
		// Mentions and replies carry the prompt in the message body.
		prompt = strings.TrimSpace(msg.Text)
	}
	if prompt == "" {
		return c.ReplyText(update, c.L("AskUsage", nil))
	}

	if err := c.Tg.SendChatAction(msg.Chat.ID, telegram.ActionTyping); err != nil {
		c.Logger.WithError(err).Debug("Failed to send chat action")
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	reply, err := c.ChatService.Ask(ctx, c.ScopeOf(update), prompt)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrInsufficientFunds):
			balance, _ := c.ChatService.Balance(ctx, msg.From.ID)
			return c.ReplyText(update, c.L("InsufficientFunds", map[string]any{
				"Have": balance,
				"Need": c.ChatService.EstimateCost(c.Cfg.AI().MaxTokens),
			}))
		case errors.Is(err, service.ErrPromptTooLarge):
			return c.ReplyText(update, c.L("PromptTooLarge", nil))
		}
		c.Logger.WithError(err).WithFields(logger.Fields{
			"chat_id": msg.Chat.ID,
			"user_id": msg.From.ID,
		}).Error("Ask failed")
		return c.ReplyText(update, c.L("GenericError", nil))
	}

	if reply.Artifact != nil {
		if err := c.Tg.SendChatAction(msg.Chat.ID, telegram.ActionUploadingDocument); err != nil {
			c.Logger.WithError(err).Debug("Failed to send chat action")
		}
		doc := telegram.NewDocument(msg.Chat.ID, reply.Artifact.Filename, reply.Artifact.Data)
		doc.ReplyTo = msg.MessageID
		if c.ChatService.BillingEnabled() {
			doc.Caption = c.L("DocumentCaption", map[string]any{
				"Coins":  reply.CoinsCharged,
				"Tokens": reply.TokensUsed,
			})
		}
		if _, err := c.Tg.SendWithRetry(doc, 3); err != nil {
			c.Logger.WithError(err).Warn("Document upload failed, falling back to text")
			return c.ReplyText(update, c.L("RenderFallback", nil)+"\n\n"+reply.Text)
		}
		return nil
	}

	return c.ReplyText(update, reply.Text)
}

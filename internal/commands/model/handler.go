package model

import (
	"strings"

	"github.com/vlasenkov/chatscribe/internal/ai"
	"github.com/vlasenkov/chatscribe/internal/app/di"
	"github.com/vlasenkov/chatscribe/internal/commands/base"
	"github.com/vlasenkov/chatscribe/internal/history"
	"github.com/vlasenkov/chatscribe/internal/telegram"
)

const CommandName = "model"

type Command struct {
	*base.Command
	settings *history.ChatSettings
	registry *ai.ProviderRegistry
}

func New(di *di.Container) *Command {
	return &Command{
		Command:  base.NewCommand(di),
		settings: di.ChatSettings,
		registry: di.AI,
	}
}

func (c *Command) Name() string {
	return CommandName
}

func (c *Command) Aliases() []string {
	return []string{"m"}
}

func (c *Command) Handle(update telegram.Update) error {
	chatID := update.Message.Chat.ID
	arg := strings.TrimSpace(update.Message.CommandArguments())

	switch arg {
	case "":
		current, err := c.settings.Model(chatID)
		if err != nil {
			c.Logger.WithError(err).Error("Failed to read chat model")
			return c.ReplyText(update, c.L("GenericError", nil))
		}
		if current == "" {
			current = c.Cfg.AI().DefaultModel
		}
		return c.ReplyText(update, c.L("ModelCurrent", map[string]any{
			"Model":     current,
			"Providers": strings.Join(c.registry.Providers(), ", "),
		}))
	case "reset":
		if err := c.settings.DeleteModel(chatID); err != nil {
			c.Logger.WithError(err).Error("Failed to reset chat model")
			return c.ReplyText(update, c.L("GenericError", nil))
		}
		return c.ReplyText(update, c.L("ModelResetDone", map[string]any{
			"Model": c.Cfg.AI().DefaultModel,
		}))
	default:
		if _, _, err := c.registry.ResolveModel(arg); err != nil {
			return c.ReplyText(update, c.L("ModelUnknown", map[string]any{
				"Reason": err.Error(),
			}))
		}
		if err := c.settings.SaveModel(chatID, arg); err != nil {
			c.Logger.WithError(err).Error("Failed to save chat model")
			return c.ReplyText(update, c.L("GenericError", nil))
		}
		return c.ReplyText(update, c.L("ModelSet", map[string]any{"Model": arg}))
	}
}

package reset

import (
	"context"
	"time"

	"github.com/vlasenkov/chatscribe/internal/app/di"
	"github.com/vlasenkov/chatscribe/internal/commands/base"
	"github.com/vlasenkov/chatscribe/internal/telegram"
)

const CommandName = "reset"

type Command struct {
	*base.Command
}

func New(di *di.Container) *Command {
	return &Command{Command: base.NewCommand(di)}
}

func (c *Command) Name() string {
	return CommandName
}

func (c *Command) Handle(update telegram.Update) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.ChatService.Reset(ctx, c.ScopeOf(update)); err != nil {
		c.Logger.WithError(err).Error("Failed to reset conversation")
		return c.ReplyText(update, c.L("GenericError", nil))
	}
	return c.ReplyText(update, c.L("ResetDone", nil))
}

package balance

import (
	"context"
	"time"

	"github.com/vlasenkov/chatscribe/internal/app/di"
	"github.com/vlasenkov/chatscribe/internal/commands/base"
	"github.com/vlasenkov/chatscribe/internal/telegram"
)

const CommandName = "balance"

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
	if !c.ChatService.BillingEnabled() {
		return c.ReplyText(update, c.L("BillingDisabled", nil))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	coins, err := c.ChatService.Balance(ctx, update.Message.From.ID)
	if err != nil {
		c.Logger.WithError(err).Error("Failed to read balance")
		return c.ReplyText(update, c.L("GenericError", nil))
	}
	return c.ReplyText(update, c.L("BalanceInfo", map[string]any{"Coins": coins}))
}

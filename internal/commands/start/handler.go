package start

import (
	"github.com/vlasenkov/chatscribe/internal/app/di"
	"github.com/vlasenkov/chatscribe/internal/commands/base"
	"github.com/vlasenkov/chatscribe/internal/telegram"
)

const CommandName = "start"

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
	return c.ReplyText(update, c.L("Welcome", map[string]any{
		"UserID": update.Message.From.ID,
	}))
}

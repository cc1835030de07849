package commands

import (
	"github.com/vlasenkov/chatscribe/internal/telegram"
)

type Command interface {
	Name() string
	Aliases() []string
	Handle(update telegram.Update) error
}

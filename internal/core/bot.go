package core

import (
	"context"
	"slices"
	"strings"

	"github.com/vlasenkov/chatscribe/internal/commands"
	"github.com/vlasenkov/chatscribe/internal/commands/ask"
	"github.com/vlasenkov/chatscribe/internal/config"
	"github.com/vlasenkov/chatscribe/internal/logger"
	"github.com/vlasenkov/chatscribe/internal/telegram"
)

// Bot owns the update loop: it filters unauthorized traffic and
// dispatches commands, mentions, and bot replies onto handlers.
type Bot struct {
	commands map[string]commands.Command
	logger   logger.Logger
	tg       telegram.Client
	cfg      *config.Config
}

func NewBot(tg telegram.Client, log logger.Logger, cfg *config.Config) *Bot {
	return &Bot{
		commands: make(map[string]commands.Command),
		tg:       tg,
		logger:   log,
		cfg:      cfg,
	}
}

func (b *Bot) RegisterCommand(cmd commands.Command) {
	b.commands[cmd.Name()] = cmd
	b.logger.WithField("command", cmd.Name()).Info("Command registered")
}

func (b *Bot) Start(ctx context.Context) error {
	updates := b.tg.GetUpdatesChan(b.tg.NewUpdate(0, 60, 0))

	b.logger.Info("Bot started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(update)
		}
	}
}

func (b *Bot) handleUpdate(update telegram.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	if !b.cfg.Telegram().IsAllowed(msg.From.ID, msg.Chat.ID) {
		b.logger.WithFields(logger.Fields{
			"user_id":  msg.From.ID,
			"username": msg.From.UserName,
			"chat_id":  msg.Chat.ID,
		}).Warn("Unauthorized access attempt")
		return
	}

	if command := msg.Command(); command != "" {
		cmd := b.lookup(command)
		if cmd == nil {
			return
		}
		b.logger.WithFields(logger.Fields{
			"command":  command,
			"user_id":  msg.From.ID,
			"username": msg.From.UserName,
		}).Info("Handling command")
		b.dispatch(cmd, update)
		return
	}

	// Mentions and replies to the bot continue the conversation without
	// an explicit command.
	botUsername := b.tg.Self().UserName
	if b.containsBotMention(msg.Text, botUsername) {
		update.Message.Text = stripMention(msg.Text, botUsername)
		if cmd, ok := b.commands[ask.CommandName]; ok {
			b.dispatch(cmd, update)
		}
		return
	}
	if msg.Chat.Type == "private" || b.isReplyToBot(update, botUsername) {
		if cmd, ok := b.commands[ask.CommandName]; ok {
			b.dispatch(cmd, update)
		}
	}
}

func (b *Bot) dispatch(cmd commands.Command, update telegram.Update) {
	go func() {
		if err := cmd.Handle(update); err != nil {
			b.logger.WithError(err).WithField("command", cmd.Name()).
				Error("Failed to handle command")
		}
	}()
}

func (b *Bot) lookup(name string) commands.Command {
	for cmdName, cmd := range b.commands {
		if cmdName == name || slices.Contains(cmd.Aliases(), name) {
			return cmd
		}
	}
	return nil
}

func (b *Bot) containsBotMention(text, botUsername string) bool {
	if botUsername == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), "@"+strings.ToLower(botUsername))
}

func (b *Bot) isReplyToBot(update telegram.Update, botUsername string) bool {
	reply := update.Message.ReplyToMessage
	return reply != nil && reply.From != nil &&
		reply.From.IsBot && strings.EqualFold(reply.From.UserName, botUsername)
}

func stripMention(text, botUsername string) string {
	out := strings.ReplaceAll(text, "@"+botUsername, "")
	out = strings.ReplaceAll(out, "@"+strings.ToLower(botUsername), "")
	return strings.TrimSpace(out)
}

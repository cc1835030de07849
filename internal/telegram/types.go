package telegram

import (
	tgbotapi "github.com/OvyFlash/telegram-bot-api"
)

type ParseMode = string

const (
	ModeMarkdownV2 = "MarkdownV2"
)

type (
	Update    = tgbotapi.Update
	Chattable = tgbotapi.Chattable
	FileBytes = tgbotapi.FileBytes
)

type Message struct {
	MessageID int
	Chat      Chat
	Text      string
	From      User
	ReplyTo   *Message
	Command   string
}

type User struct {
	ID        int64
	FirstName string
	UserName  string
}

type Chat struct {
	ID   int64
	Type string
}

type MessageConfig interface {
	ToChattable() tgbotapi.Chattable
}

type TextMessage struct {
	ChatID              int64
	Text                string
	ReplyTo             int
	LinkPreviewDisabled bool
	ParseMode           ParseMode
}

func NewMessage(chatID int64, text string, replyTo int) TextMessage {
	return TextMessage{
		ChatID:  chatID,
		Text:    text,
		ReplyTo: replyTo,
	}
}

func (m TextMessage) ToChattable() tgbotapi.Chattable {
	msg := tgbotapi.NewMessage(m.ChatID, m.Text)
	msg.ReplyParameters.MessageID = m.ReplyTo
	msg.ParseMode = m.ParseMode
	msg.LinkPreviewOptions.IsDisabled = m.LinkPreviewDisabled
	return msg
}

// DocumentMessage uploads an in-memory file, used for rendered
// artifacts.
type DocumentMessage struct {
	ChatID   int64
	Filename string
	Data     []byte
	Caption  string
	ReplyTo  int
}

func NewDocument(chatID int64, filename string, data []byte) DocumentMessage {
	return DocumentMessage{
		ChatID:   chatID,
		Filename: filename,
		Data:     data,
	}
}

func (m DocumentMessage) ToChattable() tgbotapi.Chattable {
	doc := tgbotapi.NewDocument(m.ChatID, tgbotapi.FileBytes{
		Name:  m.Filename,
		Bytes: m.Data,
	})
	doc.Caption = m.Caption
	doc.ReplyParameters.MessageID = m.ReplyTo
	return doc
}

type UpdateConfig struct {
	Offset  int
	Limit   int
	Timeout int
}

type ChatAction string

const (
	ActionTyping            ChatAction = "typing"
	ActionUploadingDocument ChatAction = "upload_document"
)

// Client is the narrow bot surface the rest of the code depends on, so
// tests can substitute a fake.
type Client interface {
	Send(msg MessageConfig) (*Message, error)
	SendWithRetry(msg MessageConfig, maxRetryCount int) (*Message, error)
	SendChatAction(chatID int64, action ChatAction) error
	GetUpdatesChan(config UpdateConfig) <-chan tgbotapi.Update
	NewUpdate(offset, timeout, limit int) UpdateConfig
	Self() User
}

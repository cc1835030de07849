package ai

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged turn of a conversation. Name carries the
// optional participant name some providers accept on a turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

type Response struct {
	Content string
	Model   string
	Usage   Usage
}

type Provider interface {
	Name() string
	Ask(ctx context.Context, model string, messages []Message, maxTokens int) (*Response, error)
	GenerateImage(ctx context.Context, model, prompt string) ([]byte, error)
	GetDefaultModel() string
}

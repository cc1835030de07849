// Package history persists conversation turns per chat/user scope and
// enforces the stored-turn cap. Token-window truncation happens later,
// at request time; the cap here only bounds storage growth.
package history

import (
	"context"

	"github.com/vlasenkov/chatscribe/internal/ai"
)

// Scope identifies one conversation: a user inside a chat. Private
// chats have ChatID == UserID.
type Scope struct {
	ChatID int64
	UserID int64
}

type Store interface {
	// Turns returns the stored turns oldest first, without the system
	// prompt. The system turn is injected by the caller per request.
	Turns(ctx context.Context, scope Scope) ([]ai.Message, error)
	Append(ctx context.Context, scope Scope, turns ...ai.Message) error
	Reset(ctx context.Context, scope Scope) error
}

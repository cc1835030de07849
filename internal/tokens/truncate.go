package tokens

import (
	"slices"
	"unicode/utf8"

	"github.com/vlasenkov/chatscribe/internal/ai"
)

// Truncate returns the subsequence of turns that fits the model's context
// window once reserve tokens are withheld for the reply. Chronological
// order of retained turns is preserved.
//
// A leading system turn is always kept whole; if it alone does not fit,
// the result is empty rather than a partially cut system message. The
// remaining turns are kept newest-first until the budget runs out, which
// favors recency and may clip a user/assistant pair.
func (e *Estimator) Truncate(turns []ai.Message, model string, reserve int) []ai.Message {
	profile := e.registry.ProfileFor(model)
	available := profile.ContextWindow - reserve
	if available <= 0 {
		return []ai.Message{}
	}

	if profile.ImageModel {
		return truncateImagePrompt(turns, available)
	}

	if e.CountConversation(turns, model) <= available {
		return turns
	}

	rest := turns
	var system *ai.Message
	if len(turns) > 0 && turns[0].Role == ai.RoleSystem {
		system = &turns[0]
		rest = turns[1:]
	}

	budget := available - e.TokensReplyPrimer
	if system != nil {
		budget -= e.countTurn(*system, model)
		if budget < 0 {
			return []ai.Message{}
		}
	}

	var retained []ai.Message
	used := 0
	for i := len(rest) - 1; i >= 0; i-- {
		cost := e.countTurn(rest[i], model)
		if used+cost > budget {
			break
		}
		used += cost
		retained = append(retained, rest[i])
	}
	slices.Reverse(retained)

	result := make([]ai.Message, 0, len(retained)+1)
	if system != nil {
		result = append(result, *system)
	}
	return append(result, retained...)
}

// truncateImagePrompt applies the character-budget variant used by image
// generation models: either the whole conversation fits, or only the most
// recent user turn is sent. Image prompts do not carry history.
func truncateImagePrompt(turns []ai.Message, available int) []ai.Message {
	total := 0
	for _, turn := range turns {
		total += utf8.RuneCountInString(turn.Content)
	}
	if total <= available {
		return turns
	}

	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == ai.RoleUser {
			return []ai.Message{turns[i]}
		}
	}
	return []ai.Message{}
}

package tokens

import (
	"sync"
	"unicode/utf8"

	tiktoken "github.com/pkoukk/tiktoken-go"

	"github.com/vlasenkov/chatscribe/internal/ai"
	"github.com/vlasenkov/chatscribe/internal/logger"
)

// fallbackEncoding is used when a model of the exact family has no
// encoding registered under its own name.
const fallbackEncoding = "cl100k_base"

// Per-turn framing overheads, modeled on the cl100k chat format: every
// turn costs a few tokens of role/delimiter framing and the whole request
// pays a flat primer for the reply. Other model families approximate.
const (
	DefaultTokensPerTurn     = 3
	DefaultTokensPerName     = 1
	DefaultTokensReplyPrimer = 3
)

// Estimator counts tokens per model. Counting never fails: malformed or
// missing input yields a best-effort non-negative integer.
type Estimator struct {
	registry *Registry
	logger   logger.Logger

	// Overridable framing costs. Truncation uses the same constants, so
	// budget fitting and final accounting stay in agreement.
	TokensPerTurn     int
	TokensPerName     int
	TokensReplyPrimer int

	encodersMu sync.RWMutex
	encoders   map[string]*tiktoken.Tiktoken
}

func NewEstimator(registry *Registry, log logger.Logger) *Estimator {
	return &Estimator{
		registry:          registry,
		logger:            log,
		TokensPerTurn:     DefaultTokensPerTurn,
		TokensPerName:     DefaultTokensPerName,
		TokensReplyPrimer: DefaultTokensReplyPrimer,
		encoders:          make(map[string]*tiktoken.Tiktoken),
	}
}

// Count returns the token count of text under the given model's counting
// strategy. Empty text counts as zero.
func (e *Estimator) Count(text, model string) int {
	if text == "" {
		return 0
	}

	profile := e.registry.ProfileFor(model)
	if profile.ImageModel {
		// Image prompts have no tokenizer contract; characters stand in
		// for tokens when fitting the prompt budget.
		return utf8.RuneCountInString(text)
	}

	if profile.Strategy == StrategyExact {
		if enc := e.encoderFor(model); enc != nil {
			return len(enc.Encode(text, nil, nil))
		}
	}

	return heuristicCount(text)
}

// CountConversation returns the full request cost of the turns, including
// per-turn framing overhead and the reply primer.
func (e *Estimator) CountConversation(turns []ai.Message, model string) int {
	if len(turns) == 0 {
		return 0
	}

	total := 0
	for _, turn := range turns {
		total += e.countTurn(turn, model)
	}
	return total + e.TokensReplyPrimer
}

func (e *Estimator) countTurn(turn ai.Message, model string) int {
	cost := e.TokensPerTurn + e.Count(turn.Content, model)
	if turn.Name != "" {
		cost += e.TokensPerName + e.Count(turn.Name, model)
	}
	return cost
}

// encoderFor returns the cached tokenizer for a model, initializing it on
// first use. Initialization races are harmless: the cache is idempotent
// per key and the loser's encoder is simply discarded.
func (e *Estimator) encoderFor(model string) *tiktoken.Tiktoken {
	e.encodersMu.RLock()
	enc, ok := e.encoders[model]
	e.encodersMu.RUnlock()
	if ok {
		return enc
	}

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			e.logger.WithError(err).WithField("model", model).
				Warn("Tokenizer unavailable, falling back to heuristic counting")
			return nil
		}
	}

	e.encodersMu.Lock()
	e.encoders[model] = enc
	e.encodersMu.Unlock()
	return enc
}

// heuristicCount approximates tokens as one per four characters, rounding
// up so short non-empty strings still cost at least one token.
func heuristicCount(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vlasenkov/chatscribe/internal/ai"
	"github.com/vlasenkov/chatscribe/internal/billing"
	"github.com/vlasenkov/chatscribe/internal/config"
	"github.com/vlasenkov/chatscribe/internal/document"
	"github.com/vlasenkov/chatscribe/internal/history"
	"github.com/vlasenkov/chatscribe/internal/logger"
	"github.com/vlasenkov/chatscribe/internal/tokens"
)

// ErrPromptTooLarge means even the system prompt plus the newest turn do
// not fit the model's context window.
var ErrPromptTooLarge = errors.New("prompt does not fit the context window")

// Reply is the outcome of one ask: either plain text or a rendered
// document artifact, plus the accounting that request produced.
type Reply struct {
	Text         string
	Artifact     *document.Artifact
	Model        string
	TokensUsed   int
	CoinsCharged int64
	Balance      int64
}

// ChatService runs the full ask flow: history, truncation, the provider
// call, billing, and optional document rendering.
type ChatService struct {
	store     history.Store
	settings  *history.ChatSettings
	registry  *ai.ProviderRegistry
	estimator *tokens.Estimator
	ledger    billing.Ledger
	pipeline  *document.Pipeline
	cfg       *config.Config
	logger    logger.Logger
}

func NewChatService(
	store history.Store,
	settings *history.ChatSettings,
	registry *ai.ProviderRegistry,
	estimator *tokens.Estimator,
	ledger billing.Ledger,
	pipeline *document.Pipeline,
	cfg *config.Config,
	log logger.Logger,
) *ChatService {
	return &ChatService{
		store:     store,
		settings:  settings,
		registry:  registry,
		estimator: estimator,
		ledger:    ledger,
		pipeline:  pipeline,
		cfg:       cfg,
		logger:    log,
	}
}

func (s *ChatService) Ask(ctx context.Context, scope history.Scope, prompt string) (*Reply, error) {
	aiCfg := s.cfg.AI()

	provider, model, err := s.resolveModel(scope.ChatID)
	if err != nil {
		return nil, err
	}

	stored, err := s.store.Turns(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	userTurn := ai.Message{Role: ai.RoleUser, Content: prompt}
	request := make([]ai.Message, 0, len(stored)+2)
	if aiCfg.SystemPrompt != "" {
		request = append(request, ai.Message{Role: ai.RoleSystem, Content: aiCfg.SystemPrompt})
	}
	request = append(request, stored...)
	request = append(request, userTurn)

	truncated := s.estimator.Truncate(request, model, aiCfg.ReserveTokens)
	if len(truncated) == 0 || truncated[len(truncated)-1].Role != ai.RoleUser {
		return nil, ErrPromptTooLarge
	}
	if dropped := len(request) - len(truncated); dropped > 0 {
		s.logger.WithFields(logger.Fields{
			"model":   model,
			"dropped": dropped,
		}).Debug("Truncated conversation to fit context window")
	}

	// Pre-authorize against the worst case: the request itself plus a
	// maximal reply. The actual charge uses reported usage.
	estimated := s.estimator.CountConversation(truncated, model) + aiCfg.MaxTokens
	if err := s.authorize(ctx, scope.UserID, estimated); err != nil {
		return nil, err
	}

	resp, err := provider.Ask(ctx, model, truncated, aiCfg.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", provider.Name(), err)
	}

	used := int(resp.Usage.TotalTokens)
	if used == 0 {
		used = s.estimator.CountConversation(truncated, model) + s.estimator.Count(resp.Content, model)
	}

	charged := s.ledger.Cost(used)
	balance, err := s.ledger.Charge(ctx, scope.UserID, used)
	if err != nil {
		// The reply already exists; an account drained by a concurrent
		// charge is logged, not surfaced.
		s.logger.WithError(err).WithField("user_id", scope.UserID).Warn("Failed to charge usage")
	}

	if err := s.store.Append(ctx, scope, userTurn, ai.Message{Role: ai.RoleAssistant, Content: resp.Content}); err != nil {
		s.logger.WithError(err).Warn("Failed to persist turns")
	}

	reply := &Reply{
		Text:         resp.Content,
		Model:        resp.Model,
		TokensUsed:   used,
		CoinsCharged: charged,
		Balance:      balance,
	}

	if format, ok := DetectFormat(prompt); ok {
		reply.Artifact = s.render(resp.Content, format)
	}
	return reply, nil
}

func (s *ChatService) Reset(ctx context.Context, scope history.Scope) error {
	return s.store.Reset(ctx, scope)
}

func (s *ChatService) Balance(ctx context.Context, userID int64) (int64, error) {
	return s.ledger.Balance(ctx, userID)
}

func (s *ChatService) BillingEnabled() bool {
	return s.cfg.Billing().Enabled
}

func (s *ChatService) EstimateCost(tokenCount int) int64 {
	return s.ledger.Cost(tokenCount)
}

// resolveModel prefers the per-chat override over the configured default.
func (s *ChatService) resolveModel(chatID int64) (ai.Provider, string, error) {
	modelSpec := ""
	if s.settings != nil {
		override, err := s.settings.Model(chatID)
		if err != nil {
			s.logger.WithError(err).WithField("chat_id", chatID).Warn("Failed to read chat model override")
		} else {
			modelSpec = override
		}
	}
	return s.registry.ResolveModel(modelSpec)
}

func (s *ChatService) authorize(ctx context.Context, userID int64, estimatedTokens int) error {
	if !s.cfg.Billing().Enabled {
		return nil
	}
	need := s.ledger.Cost(estimatedTokens)
	have, err := s.ledger.Balance(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to read balance: %w", err)
	}
	if have < need {
		return fmt.Errorf("%w: have %d, need %d", billing.ErrInsufficientFunds, have, need)
	}
	return nil
}

// render turns the model output into an artifact. Any failure degrades
// to nil; the caller falls back to the plain-text reply.
func (s *ChatService) render(raw string, format document.Format) *document.Artifact {
	artifact, err := s.pipeline.Render(raw, format)
	if err != nil {
		s.logger.WithError(err).WithField("format", format).Warn("Document render failed, falling back to text")
		return nil
	}
	return artifact
}

// DetectFormat scans the prompt for an output format request.
func DetectFormat(prompt string) (document.Format, bool) {
	lower := strings.ToLower(prompt)
	switch {
	case containsWord(lower, "docx") || containsWord(lower, "word"):
		return document.FormatDocx, true
	case containsWord(lower, "pdf"):
		return document.FormatPDF, true
	case containsWord(lower, "xlsx") || containsWord(lower, "excel") || containsWord(lower, "table"):
		return document.FormatXlsx, true
	case containsWord(lower, "rtf"):
		return document.FormatRTF, true
	}
	return "", false
}

func containsWord(text, word string) bool {
	for f := range strings.FieldsSeq(text) {
		if strings.Trim(f, ".,!?:;()\"'") == word {
			return true
		}
	}
	return false
}

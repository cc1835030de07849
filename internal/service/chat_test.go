package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vlasenkov/chatscribe/internal/ai"
	"github.com/vlasenkov/chatscribe/internal/billing"
	"github.com/vlasenkov/chatscribe/internal/config"
	"github.com/vlasenkov/chatscribe/internal/document"
	"github.com/vlasenkov/chatscribe/internal/document/render"
	"github.com/vlasenkov/chatscribe/internal/history"
	"github.com/vlasenkov/chatscribe/internal/logger"
	"github.com/vlasenkov/chatscribe/internal/tokens"
)

type fakeProvider struct {
	response *ai.Response
	err      error
	lastAsk  []ai.Message
}

func (f *fakeProvider) Name() string            { return "fake" }
func (f *fakeProvider) GetDefaultModel() string { return "test-model" }

func (f *fakeProvider) Ask(_ context.Context, _ string, messages []ai.Message, _ int) (*ai.Response, error) {
	f.lastAsk = messages
	return f.response, f.err
}

func (f *fakeProvider) GenerateImage(context.Context, string, string) ([]byte, error) {
	return nil, nil
}

type fakeLedger struct {
	balance int64
	charged int64
}

func (f *fakeLedger) Balance(context.Context, int64) (int64, error) { return f.balance, nil }

func (f *fakeLedger) Charge(_ context.Context, _ int64, tokens int) (int64, error) {
	cost := f.Cost(tokens)
	if f.balance < cost {
		return f.balance, billing.ErrInsufficientFunds
	}
	f.balance -= cost
	f.charged += cost
	return f.balance, nil
}

func (f *fakeLedger) TopUp(_ context.Context, _ int64, coins int64, _ string) (int64, error) {
	f.balance += coins
	return f.balance, nil
}

func (f *fakeLedger) Cost(tokens int) int64 { return billing.Cost(tokens, 1) }

func testConfig(billingEnabled bool) *config.Config {
	return config.NewFromMap(map[string]any{
		config.AI_SYSTEM_PROMPT:  "be helpful",
		config.AI_DEFAULT_MODEL:  "fake:test-model",
		config.AI_MAX_TOKENS:     100,
		config.AI_RESERVE_TOKENS: 100,
		config.BILLING_ENABLED:   billingEnabled,
		config.BILLING_COINS_PER_1K: 1,
	})
}

func newTestService(provider ai.Provider, ledger billing.Ledger, cfg *config.Config) (*ChatService, *history.MemoryStore) {
	log := logger.NewTestLogger()
	registry := ai.NewProviderRegistry(cfg, log)
	registry.RegisterProvider("fake", provider)

	store := history.NewMemoryStore(20)
	pipeline := document.NewPipeline(log)
	pipeline.RegisterBackend(render.NewRTFBackend(log))

	estimator := tokens.NewEstimator(tokens.NewRegistry(), log)

	return NewChatService(store, nil, registry, estimator, ledger, pipeline, cfg, log), store
}

func TestChatService_Ask(t *testing.T) {
	scope := history.Scope{ChatID: 10, UserID: 20}

	t.Run("PlainAnswer", func(t *testing.T) {
		provider := &fakeProvider{response: &ai.Response{
			Content: "the answer",
			Model:   "test-model",
			Usage:   ai.Usage{TotalTokens: 50},
		}}
		svc, store := newTestService(provider, billing.NoopLedger{}, testConfig(false))

		reply, err := svc.Ask(t.Context(), scope, "what is the question?")
		require.NoError(t, err)
		assert.Equal(t, "the answer", reply.Text)
		assert.Nil(t, reply.Artifact)
		assert.Equal(t, 50, reply.TokensUsed)

		// System prompt injected, user turn last.
		require.NotEmpty(t, provider.lastAsk)
		assert.Equal(t, ai.RoleSystem, provider.lastAsk[0].Role)
		assert.Equal(t, "what is the question?", provider.lastAsk[len(provider.lastAsk)-1].Content)

		// Both sides of the exchange persisted, without the system turn.
		turns, err := store.Turns(t.Context(), scope)
		require.NoError(t, err)
		require.Len(t, turns, 2)
		assert.Equal(t, ai.RoleUser, turns[0].Role)
		assert.Equal(t, ai.RoleAssistant, turns[1].Role)
	})

	t.Run("DocumentRequestRendersArtifact", func(t *testing.T) {
		provider := &fakeProvider{response: &ai.Response{
			Content: `{"meta":{"title":"Report"},"blocks":[{"type":"paragraph","text":"done"}]}`,
			Usage:   ai.Usage{TotalTokens: 80},
		}}
		svc, _ := newTestService(provider, billing.NoopLedger{}, testConfig(false))

		reply, err := svc.Ask(t.Context(), scope, "make me a report as rtf please")
		require.NoError(t, err)
		require.NotNil(t, reply.Artifact)
		assert.Equal(t, document.FormatRTF, reply.Artifact.Format)
		assert.Contains(t, reply.Artifact.Filename, ".rtf")
		assert.Contains(t, string(reply.Artifact.Data), "Report")
	})

	t.Run("UnparseableDocumentFallsBackToText", func(t *testing.T) {
		provider := &fakeProvider{response: &ai.Response{
			Content: "sorry, I answered in prose instead",
			Usage:   ai.Usage{TotalTokens: 30},
		}}
		svc, _ := newTestService(provider, billing.NoopLedger{}, testConfig(false))

		reply, err := svc.Ask(t.Context(), scope, "report as rtf")
		require.NoError(t, err)
		assert.Nil(t, reply.Artifact)
		assert.Equal(t, "sorry, I answered in prose instead", reply.Text)
	})

	t.Run("InsufficientFundsRefusedBeforeProviderCall", func(t *testing.T) {
		provider := &fakeProvider{response: &ai.Response{Content: "never sent"}}
		svc, _ := newTestService(provider, &fakeLedger{balance: 0}, testConfig(true))

		_, err := svc.Ask(t.Context(), scope, "hello")
		require.ErrorIs(t, err, billing.ErrInsufficientFunds)
		assert.Nil(t, provider.lastAsk)
	})

	t.Run("UsageCharged", func(t *testing.T) {
		provider := &fakeProvider{response: &ai.Response{
			Content: "ok",
			Usage:   ai.Usage{TotalTokens: 1500},
		}}
		ledger := &fakeLedger{balance: 100}
		svc, _ := newTestService(provider, ledger, testConfig(true))

		reply, err := svc.Ask(t.Context(), scope, "hello")
		require.NoError(t, err)
		assert.Equal(t, int64(2), reply.CoinsCharged)
		assert.Equal(t, int64(2), ledger.charged)
		assert.Equal(t, int64(98), reply.Balance)
	})
}

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		prompt string
		want   document.Format
		ok     bool
	}{
		{"make a report as DOCX", document.FormatDocx, true},
		{"give me a word file about cats", document.FormatDocx, true},
		{"export this as pdf.", document.FormatPDF, true},
		{"I need an excel sheet", document.FormatXlsx, true},
		{"build a table of results", document.FormatXlsx, true},
		{"answer in rtf", document.FormatRTF, true},
		{"just a normal question", "", false},
		{"what about pdfs in general", "", false},
	}

	for _, tc := range cases {
		got, ok := DetectFormat(tc.prompt)
		assert.Equal(t, tc.ok, ok, tc.prompt)
		assert.Equal(t, tc.want, got, tc.prompt)
	}
}

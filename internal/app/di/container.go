package di

import (
	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"github.com/vlasenkov/chatscribe/internal/ai"
	"github.com/vlasenkov/chatscribe/internal/billing"
	"github.com/vlasenkov/chatscribe/internal/config"
	"github.com/vlasenkov/chatscribe/internal/database"
	"github.com/vlasenkov/chatscribe/internal/document"
	"github.com/vlasenkov/chatscribe/internal/document/render"
	"github.com/vlasenkov/chatscribe/internal/history"
	"github.com/vlasenkov/chatscribe/internal/logger"
	"github.com/vlasenkov/chatscribe/internal/service"
	"github.com/vlasenkov/chatscribe/internal/telegram"
	"github.com/vlasenkov/chatscribe/internal/tokens"
)

type Container struct {
	BotClient    telegram.Client
	Logger       logger.Logger
	DB           database.Database
	Cfg          *config.Config
	AI           *ai.ProviderRegistry
	Estimator    *tokens.Estimator
	Pipeline     *document.Pipeline
	Ledger       billing.Ledger
	Store        history.Store
	ChatSettings *history.ChatSettings
	ChatService  *service.ChatService
	Localizer    *service.Localizer
}

func NewContainer(cfg *config.Config) (*Container, error) {
	logCfg := cfg.Log()
	l := logger.NewLogrusLogger(&logCfg)

	if cfg.GetCommandConfig("ask").Enabled && len(cfg.AI().Providers) == 0 {
		l.Fatal("Ask command enabled, but AI providers not found")
	}

	db, err := database.NewSQLiteDB(cfg, l)
	if err != nil {
		return nil, err
	}

	localizer, err := service.NewLocalizer(cfg.Global().InterfaceLanguage)
	if err != nil {
		l.WithError(err).Fatal("Error create localizer")
	}

	providerRegistry := ai.NewProviderRegistry(cfg, l)
	for _, providerCfg := range cfg.AI().Providers {
		provider, err := ai.NewOpenAIClient(providerCfg, l)
		if err != nil {
			l.WithError(err).WithField("provider", providerCfg.Name).Error("Failed to initialize AI provider")
			continue
		}
		providerRegistry.RegisterProvider(providerCfg.Name, provider)
		l.WithField("provider", providerCfg.Name).Info("Initialized AI provider")
	}

	modelRegistry := tokens.NewRegistryFromConfig(cfg.AI())
	estimator := tokens.NewEstimator(modelRegistry, l)

	pipeline := document.NewPipeline(l)
	pipeline.RegisterBackend(render.NewDocxBackend(l))
	pipeline.RegisterBackend(render.NewPDFBackend(l))
	pipeline.RegisterBackend(render.NewXLSXBackend(l))
	pipeline.RegisterBackend(render.NewRTFBackend(l))

	var ledger billing.Ledger = billing.NoopLedger{}
	if cfg.Billing().Enabled {
		ledger = billing.NewSQLiteLedger(db, cfg.Billing(), l)
	}

	store := history.NewSQLiteStore(db, l, cfg.Global().MaxConversationTurns)
	chatSettings := history.NewChatSettings(db)

	chatService := service.NewChatService(
		store,
		chatSettings,
		providerRegistry,
		estimator,
		ledger,
		pipeline,
		cfg,
		l,
	)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram().Token)
	if err != nil {
		l.WithError(err).Fatal("Bot API client initialization error")
	}
	botClient := telegram.NewBotClient(api, l)

	return &Container{
		BotClient:    botClient,
		Logger:       l,
		DB:           db,
		Cfg:          cfg,
		AI:           providerRegistry,
		Estimator:    estimator,
		Pipeline:     pipeline,
		Ledger:       ledger,
		Store:        store,
		ChatSettings: chatSettings,
		ChatService:  chatService,
		Localizer:    localizer,
	}, nil
}

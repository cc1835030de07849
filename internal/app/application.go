package app

import (
	"context"
	"flag"

	"github.com/vlasenkov/chatscribe/internal/app/di"
	"github.com/vlasenkov/chatscribe/internal/commands/ask"
	"github.com/vlasenkov/chatscribe/internal/commands/balance"
	"github.com/vlasenkov/chatscribe/internal/commands/model"
	"github.com/vlasenkov/chatscribe/internal/commands/reset"
	"github.com/vlasenkov/chatscribe/internal/commands/start"
	"github.com/vlasenkov/chatscribe/internal/config"
	"github.com/vlasenkov/chatscribe/internal/core"
	"github.com/vlasenkov/chatscribe/internal/logger"
)

type Application struct {
	Logger logger.Logger
	cfg    *config.Config
	bot    *core.Bot
	di     *di.Container
	ctx    context.Context
	cancel context.CancelFunc
}

func New() (*Application, error) {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	cfg, err := config.Load()
	if err != nil {
		cancel()
		return nil, err
	}

	di, err := di.NewContainer(cfg)
	if err != nil {
		cancel()
		return nil, err
	}
	di.Logger.Info("DI Container created")

	botInstance := core.NewBot(di.BotClient, di.Logger, cfg)
	di.Logger.Info("Bot instance created")

	app := &Application{
		cfg:    cfg,
		bot:    botInstance,
		di:     di,
		Logger: di.Logger,
		ctx:    ctx,
		cancel: cancel,
	}

	app.registerCommands()

	return app, nil
}

func (a *Application) Start() error {
	a.Logger.Info("Starting application")
	return a.bot.Start(a.ctx)
}

func (a *Application) registerCommands() {
	if a.cfg.GetCommandConfig(start.CommandName).Enabled {
		a.bot.RegisterCommand(start.New(a.di))
	}
	if a.cfg.GetCommandConfig(ask.CommandName).Enabled {
		a.bot.RegisterCommand(ask.New(a.di))
	}
	if a.cfg.GetCommandConfig(reset.CommandName).Enabled {
		a.bot.RegisterCommand(reset.New(a.di))
	}
	if a.cfg.GetCommandConfig(balance.CommandName).Enabled {
		a.bot.RegisterCommand(balance.New(a.di))
	}
	if a.cfg.GetCommandConfig(model.CommandName).Enabled {
		a.bot.RegisterCommand(model.New(a.di))
	}
}

func (a *Application) WaitForShutdown() {
	<-a.ctx.Done()
	if err := a.di.DB.Close(); err != nil {
		a.Logger.WithError(err).Error("Failed to close database")
	}
	a.Logger.Info("Application stopped")
}

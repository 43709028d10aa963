package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/elee1766/taskchat/src/aisdk"
	"github.com/elee1766/taskchat/src/chatservice"
	"github.com/elee1766/taskchat/src/config"
	"github.com/elee1766/taskchat/src/events"
	"github.com/elee1766/taskchat/src/orclient"
	"github.com/elee1766/taskchat/src/storage"
	"github.com/elee1766/taskchat/src/taskagent/tools"
)

// app bundles the wired-up services shared by the CLI commands.
type app struct {
	cfg           *config.Config
	logger        *slog.Logger
	db            *storage.DB
	tasks         *storage.TaskStore
	conversations *storage.ConversationStore
	chat          *chatservice.Service
}

// buildApp loads configuration and wires the storage, event, model, and chat
// layers together.
func buildApp(cli *CLI) (*app, error) {
	cfg, err := config.NewLoader().Load(cli.Config)
	if err != nil {
		return nil, err
	}

	// The --log-level flag wins over the config file
	level := cli.LogLevel
	if level == "" {
		level = cfg.Log.Level
	}
	logger := newLogger(level, cfg.Log.Format)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	taskStore := storage.NewTaskStore(db, logger)
	convStore := storage.NewConversationStore(db, logger)

	modelClient := orclient.NewClient(aisdk.ClientConfig{
		APIKey:  cfg.API.APIKey,
		BaseURL: cfg.API.BaseURL,
		Model:   cfg.API.Model,
		Timeout: time.Duration(cfg.API.TimeoutSecs) * time.Second,
		Logger:  logger,
	})

	chat := chatservice.NewService(chatservice.ServiceConfig{
		Model:         modelClient,
		Conversations: convStore,
		ToolDeps: tools.Deps{
			Tasks:  taskStore,
			Sink:   events.NewLogSink(logger),
			Logger: logger,
		},
		Logger:        logger,
		MaxToolRounds: cfg.Agent.MaxToolRounds,
		ModelRetries:  cfg.Agent.ModelRetries,
		ToolTimeout:   time.Duration(cfg.Agent.ToolTimeoutSecs) * time.Second,
	})

	return &app{
		cfg:           cfg,
		logger:        logger,
		db:            db,
		tasks:         taskStore,
		conversations: convStore,
		chat:          chat,
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

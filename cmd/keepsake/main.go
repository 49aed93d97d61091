package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/keepsake-bot/keepsake/config"
	"github.com/keepsake-bot/keepsake/pkg/bot"
	"github.com/keepsake-bot/keepsake/pkg/bus"
	"github.com/keepsake-bot/keepsake/pkg/events"
	"github.com/keepsake-bot/keepsake/pkg/memory"
	"github.com/keepsake-bot/keepsake/pkg/session"
	"github.com/keepsake-bot/keepsake/pkg/storage"
	"github.com/keepsake-bot/keepsake/pkg/telegram"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if len(os.Args) > 1 && os.Args[1] == "init" {
		if err := config.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "init: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// store initialization is the one startup step that aborts the process
	store, err := memory.NewSQLiteStore(filepath.Join(cfg.DataDir, "keepsake.db"))
	if err != nil {
		return fmt.Errorf("open memory store: %w", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	messageBus := bus.NewMessageBus()
	sessions := session.NewManager(time.Duration(cfg.SessionTTLHours) * time.Hour)
	provider := events.NewClient(cfg.Events)
	photos := storage.NewPhotoStore(cfg.PhotoDir)

	channel, err := telegram.NewTelegramChannel(cfg.Telegram, messageBus, photos)
	if err != nil {
		return err
	}
	if err := channel.Start(ctx); err != nil {
		return err
	}
	defer channel.Stop(context.Background())

	go sessions.Run(ctx, time.Hour)

	dispatcher := bot.NewDispatcher(messageBus, sessions, provider, store)
	dispatcher.Run(ctx)

	slog.Info("shutting down")
	return nil
}

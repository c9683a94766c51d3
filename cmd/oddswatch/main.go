package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rewired-gh/oddswatch/internal/config"
	"github.com/rewired-gh/oddswatch/internal/engine"
	"github.com/rewired-gh/oddswatch/internal/feed"
	"github.com/rewired-gh/oddswatch/internal/logger"
	"github.com/rewired-gh/oddswatch/internal/snapshot"
	"github.com/rewired-gh/oddswatch/internal/storage"
	"github.com/rewired-gh/oddswatch/internal/telegram"
	"github.com/rewired-gh/oddswatch/internal/watch"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	var store *storage.Storage
	if cfg.Storage.Enabled {
		store, err = storage.New(cfg.Storage.MaxAlerts, cfg.Storage.DBPath)
		if err != nil {
			logger.Fatal("Failed to initialize storage: %v", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("Failed to close storage: %v", err)
			}
		}()
	} else {
		logger.Debug("Alert history storage disabled")
	}

	feedClient := feed.NewClient(
		cfg.Feed.BaseURL,
		cfg.Feed.Timeout,
		cfg.Feed.MaxRetries,
		cfg.Feed.RetryDelayBase,
	)
	snapshotClient := snapshot.NewClient(
		cfg.Snapshot.BaseURL,
		cfg.Snapshot.APIKey,
		cfg.Snapshot.Timeout,
		snapshot.ClientConfig{
			MaxRetries:     cfg.Snapshot.MaxRetries,
			RetryDelayBase: cfg.Snapshot.RetryDelayBase,
		},
	)

	registry := watch.NewRegistry()
	queue := watch.NewQueue(cfg.Watch.QueueCap)

	var history watch.AlertSink
	if store != nil {
		history = store
	}
	poller := watch.NewPoller(
		registry,
		queue,
		snapshotClient,
		history,
		cfg.Watch.PollInterval(),
		cfg.Watch.FetchTimeout,
	)

	eng := engine.New(feedClient, snapshotClient, registry, queue, poller, cfg.Watch.DrainLimit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		poller.Stop()
		cancel()
	}()

	if cfg.Telegram.Enabled {
		var historySource telegram.HistorySource
		if store != nil {
			historySource = store
		}
		tgClient, err := telegram.NewClient(
			cfg.Telegram.BotToken,
			cfg.Telegram.ChatID,
			eng,
			historySource,
			cfg.Telegram.MaxRetries,
			cfg.Telegram.RetryDelayBase,
		)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		tgClient.ListenForCommands(ctx)
		logger.Info("Telegram command listener started")
	} else {
		logger.Debug("Telegram integration disabled")
	}

	logger.Info("Starting watch engine (poll interval: %v, queue cap: %d)",
		cfg.Watch.PollInterval(), cfg.Watch.QueueCap)
	poller.Start()

	<-ctx.Done()
	logger.Info("Service stopped")
}

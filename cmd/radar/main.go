package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/clickhouse"
	"gorm.io/gorm"

	"arbradar/configs"
	"arbradar/internal/aggregator"
	"arbradar/internal/alert"
	"arbradar/internal/exchange"
	"arbradar/internal/notify"
	"arbradar/internal/registry"
	"arbradar/internal/scheduler"
	"arbradar/internal/spread"
	"arbradar/internal/storage"
	"arbradar/server/handler"
	"arbradar/server/repository"
	"arbradar/server/router"
	"arbradar/server/service"
)

func main() {
	cfg := configs.AppLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}

	var adapters []exchange.Adapter
	for _, name := range cfg.Exchanges {
		adapter, err := exchange.NewAdapter(name, httpClient, cfg.QuoteAsset)
		if err != nil {
			logger.Error("Invalid exchange in configuration", "exchange", name, "error", err)
			os.Exit(1)
		}
		adapters = append(adapters, adapter)
	}
	if len(adapters) < 2 {
		logger.Error("At least two exchanges are required", "enabled", len(adapters))
		os.Exit(1)
	}

	store := registry.NewFileStore(cfg.SymbolCacheFile)
	reg := registry.New(adapters, store, registry.Config{
		TTL:   cfg.SymbolCacheTTL,
		Limit: cfg.SymbolLimit,
	}, logger)

	agg := aggregator.New(adapters, aggregator.Config{
		RequestTimeout:       cfg.RequestTimeout,
		RequestsPerSecond:    cfg.RequestsPerSecond,
		MaxConcurrentSymbols: cfg.MaxConcurrentSymbols,
	}, logger)

	calc := spread.NewCalculator(cfg.Exchanges)
	deduper := alert.NewDeduper(cfg.SpreadThreshold, cfg.AlertMinDelta)

	var notifiers []notify.Notifier
	if cfg.Telegram.Enabled {
		telegramLogger := logrus.New()
		telegramLogger.SetLevel(logrus.InfoLevel)
		telegramLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		notifiers = append(notifiers, notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, telegramLogger))
	}
	if cfg.Kafka.Enabled {
		feed := notify.NewKafkaFeed(cfg.Kafka.Broker, cfg.Kafka.Topic, logger)
		defer feed.Close()
		notifiers = append(notifiers, feed)
	}

	var history scheduler.History
	var repo repository.OpportunityRepository
	if cfg.DBDSN != "" {
		opportunityStorage, err := storage.NewClickHouseStorage(cfg.DBDSN)
		if err != nil {
			logger.Warn("History storage unavailable, continuing without it", "error", err)
		} else {
			defer opportunityStorage.Close()
			history = opportunityStorage
		}

		db, err := gorm.Open(clickhouse.Open(cfg.DBDSN), &gorm.Config{})
		if err != nil {
			logger.Warn("History read connection unavailable", "error", err)
		} else {
			repo = repository.NewGormOpportunityRepository(db)
		}
	}

	snapshots := scheduler.NewSnapshotStore()
	sched := scheduler.New(reg, agg, calc, deduper, notifiers, history, snapshots, scheduler.Config{
		Interval: cfg.RefreshInterval,
		TopN:     cfg.TopN,
	}, logger)

	radarService := service.NewRadarService(snapshots, reg, repo)
	radarHandler := handler.NewRadarHandler(radarService, logger)
	engine := router.NewRouter(&router.Config{RadarHandler: radarHandler})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: engine,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Info("HTTP API listening", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			cancel()
		}
	}()

	logger.Info("Starting arbitrage radar",
		"exchanges", cfg.Exchanges,
		"quoteAsset", cfg.QuoteAsset,
		"threshold", cfg.SpreadThreshold,
		"interval", cfg.RefreshInterval)

	if err := sched.Run(ctx); err != nil {
		logger.Error("Scheduler stopped with error", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown", "error", err)
	}

	logger.Info("Shutdown complete")
}

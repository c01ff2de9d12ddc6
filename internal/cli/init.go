// Package cli provides common initialization for the fincore binaries.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fincore/internal/amqp"
	"fincore/internal/config"
	"fincore/internal/log"
	"fincore/internal/notify"
	"fincore/internal/storage"
	"fincore/internal/telegram"

	"github.com/joho/godotenv"
)

// Store is a notification store that also enforces retention.
type Store interface {
	notify.Store
	Prune(ctx context.Context, now time.Time) (int, error)
}

// Bootstrap loads the .env file (optional), the configuration and the
// logger, and exits the process when the configuration is invalid.
func Bootstrap(component string) (*config.Config, *log.Logger) {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: component,
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// OpenStore opens the SQLite store, or an in-memory one when no path is
// configured. The returned func releases it.
func OpenStore(logger *log.Logger, dbPath string) (Store, func()) {
	if dbPath == "" {
		logger.Info("No SQLITE_DB_PATH configured, notifications are kept in memory")
		return notify.NewMemoryStore(), func() {}
	}
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	logger.Info("SQLite repository initialized", "path", dbPath)
	return repo, func() { repo.Close() }
}

// ConnectAMQP returns nil when AMQP is disabled or unreachable and the
// caller can continue without it. required makes a failure fatal.
func ConnectAMQP(logger *log.Logger, cfg *config.Config, required bool) *amqp.Client {
	if cfg.AMQPURL == "" {
		if required {
			logger.Error("AMQP_URL is required")
			os.Exit(1)
		}
		logger.Info("AMQP disabled")
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		if required {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		logger.Warn("Failed to initialize AMQP client, continuing without fan-out", log.FieldError, err)
		return nil
	}
	logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// ConnectTelegram returns nil when no bot token is configured.
func ConnectTelegram(logger *log.Logger, cfg *config.Config) *telegram.Notifier {
	if cfg.TelegramBotToken == "" {
		logger.Info("Telegram disabled")
		return nil
	}
	n, err := telegram.New(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.TelegramBaseURL)
	if err != nil {
		logger.Warn("Failed to initialize Telegram notifier", log.FieldError, err)
		return nil
	}
	return n
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM.
func GracefulShutdown(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

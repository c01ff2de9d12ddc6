package main

import (
	"context"
	"errors"
	"os"

	"fincore/internal/cli"
	"fincore/internal/core"
	"fincore/internal/log"
	"fincore/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentAMQP)
	logger.Info("Starting fincore-relay")

	tg := cli.ConnectTelegram(logger, cfg)
	if tg == nil {
		logger.Error("Telegram is required for the relay: set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
		os.Exit(1)
	}

	amqpClient := cli.ConnectAMQP(logger, cfg, true)
	defer amqpClient.Close()

	var types []core.NotificationType
	for _, t := range cfg.RelayTypes {
		types = append(types, core.NotificationType(t))
	}
	relay := worker.NewRelayWorker(types, tg)

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	logger.Info("Relaying notifications", "queue", cfg.AMQPQueue, "types", cfg.RelayTypes)
	if err := amqpClient.ConsumeNotifications(ctx, relay.HandleNotificationMessage); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Relay shutdown complete")
}

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"
	"venuebook/internal/notifier"
	"venuebook/pkg/config"
	"venuebook/pkg/kafka"
	kafka_config "venuebook/pkg/kafka/config"
	kafka_middleware "venuebook/pkg/kafka/middleware"
)

const (
	ServiceName = "notifier"
	SendTimeout = 10 * time.Second
	LagInterval = 30 * time.Second
)

func main() {
	cfg := config.Load(ServiceName)
	if cfg.MailerSendAPIKey == "" {
		cfg.Log.Fatal("MAILERSEND_API_KEY must be set")
	}

	kafkaCfg := kafka_config.Load(cfg.Log)
	mailer := notifier.NewMailerSendMailer(cfg.MailerSendAPIKey, cfg.MailFromName, cfg.MailFromEmail, SendTimeout)
	handler := notifier.NewHandler(mailer, cfg.Log)

	consumer, err := kafka.NewConsumer(kafkaCfg,
		cfg.NotificationTopic,
		cfg.NotificationGroupID,
		cfg.NotificationDLQTopic,
		handler.Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create notification consumer", "error", err)
	}
	metrics := kafka_middleware.NewMetrics()
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(metrics.Consumer())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting Notifier service", "topic", cfg.NotificationTopic, "group", cfg.NotificationGroupID)
	go reportLag(ctx, consumer, cfg)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Notification consumer stopped", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close notification consumer", "error", err)
	}
	snapshot := metrics.Snapshot()
	cfg.Log.Info("Notifier stopped",
		"delivered", snapshot.Succeeded,
		"failed", snapshot.Failed,
		"avg_duration", snapshot.AvgDuration,
	)
}

func reportLag(ctx context.Context, consumer *kafka.Consumer, cfg *config.Config) {
	ticker := time.NewTicker(LagInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cfg.Log.Info("Notification consumer lag", "lag", consumer.Lag())
		}
	}
}

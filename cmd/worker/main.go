package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/domain"
	"storefront/infra/postgres"
	"storefront/internal/catalog"
	"storefront/internal/consumers"
	"storefront/pkg/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// The feed worker is a headless consumer of the live catalog: it runs
// the sync engine against the Postgres snapshot reader and the
// RabbitMQ change feed, logging every reconciled snapshot. It doubles
// as the reference wiring for any UI embedding the engine.
func main() {
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, _ := zapConfig.Build()
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	zap.L().Info("Catalog feed worker starting...")

	appConfig := config.Read()
	zap.L().Info("Worker config loaded",
		zap.String("serviceName", appConfig.ServiceName),
		zap.String("rabbitMQURL", appConfig.RabbitMQURL),
	)

	if appConfig.RabbitMQURL == "" {
		zap.L().Fatal("RABBITMQ_URL is required for the feed worker")
	}

	pgRepository := postgres.NewPgRepository(
		appConfig.PostgresHost,
		appConfig.PostgresDatabase,
		appConfig.PostgresUsername,
		appConfig.PostgresPassword,
		appConfig.PostgresPort,
	)
	defer pgRepository.Close()

	notifier := consumers.NewFeedNotifier(appConfig.RabbitMQURL, appConfig.ServiceName)
	engine := catalog.NewEngine(pgRepository, notifier, catalog.DefaultQuery())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handle, err := engine.Start(ctx,
		func(items []domain.Item) {
			zap.L().Info("Catalog snapshot",
				zap.Int("count", len(items)),
				zap.Any("newest", newestName(items)),
			)
		},
		func(err error) {
			zap.L().Error("Catalog snapshot delivery failed", zap.Error(err))
		},
	)
	if err != nil {
		zap.L().Fatal("Failed to start catalog sync engine", zap.Error(err))
	}
	defer handle.Stop()

	// Periodic manual refresh, same path a pull-to-refresh takes.
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := engine.Refresh(ctx); err != nil {
					zap.L().Warn("Manual catalog refresh failed", zap.Error(err))
				}
			}
		}
	}()

	// Connection pool monitoring
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := pgRepository.GetPoolStats()
				zap.L().Info("Connection pool stats",
					zap.Int("max_open", stats["max_open_connections"].(int)),
					zap.Int("open", stats["open_connections"].(int)),
					zap.Int("in_use", stats["in_use"].(int)),
					zap.Int("idle", stats["idle"].(int)),
				)
			}
		}
	}()

	zap.L().Info("Feed worker started. Waiting for catalog changes...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	zap.L().Info("Shutdown signal received, stopping feed worker...")
	cancel()
	zap.L().Info("Feed worker stopped gracefully")
}

func newestName(items []domain.Item) string {
	if len(items) == 0 {
		return ""
	}
	return items[0].Name
}

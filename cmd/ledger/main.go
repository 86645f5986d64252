package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"ledger/internal/app/ledger"
	"ledger/internal/config"
	ledger_http "ledger/internal/handler/http/ledger"
	kafka_handler "ledger/internal/handler/kafka"
	"ledger/internal/infrastructure/database"
	kafka_infra "ledger/internal/infrastructure/kafka"
	"ledger/internal/outbox"
	accounts_memory "ledger/internal/repository/accounts_repo/memory"
	budgets_memory "ledger/internal/repository/budgets_repo/memory"
	"ledger/internal/repository/inbox_repo"
	"ledger/internal/repository/outbox_repo"
	"ledger/internal/repository/transactions_repo"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"

	appLogger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create zap logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		appLogger.Warn("Failed to load .env file", zap.Error(envErr))
	}
	appLogger.Info("Ledger Service starting...", zap.String("db_driver", cfg.DBDriver), zap.Bool("kafka_enabled", cfg.KafkaEnabled))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Connect(ctx, database.DBConfig{
		Driver:     cfg.DBDriver,
		DSN:        cfg.GetDBConnectionString(),
		MaxRetries: 10,
		RetryDelay: 5 * time.Second,
	}, appLogger)
	if err != nil {
		appLogger.Fatal("Could not connect to database. Exiting.", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Error closing database connection", zap.Error(err))
		} else {
			appLogger.Info("Database connection closed.")
		}
	}()

	appLogger.Info("Running database migrations...")
	if err := database.Migrate(db, cfg.DBDriver); err != nil {
		appLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}
	appLogger.Info("Database migrations completed successfully (or no new migrations).")

	outboxRepository := outbox_repo.NewOutboxRepository()
	ledgerService := ledger.NewLedgerService(
		db,
		accounts_memory.NewAccountRepository(),
		budgets_memory.NewBudgetRepository(),
		transactions_repo.NewTransactionRepository(),
		outboxRepository,
		inbox_repo.NewInboxRepository(),
		cfg.KafkaTransactionsTopic,
		appLogger.With(zap.String("component", "LedgerService")),
	)

	g, gctx := errgroup.WithContext(ctx)
	if cfg.KafkaEnabled {
		brokers := cfg.GetKafkaBrokers()

		topicsCtx, topicsCancel := context.WithTimeout(ctx, 30*time.Second)
		err := kafka_infra.EnsureTopics(topicsCtx, brokers, []string{cfg.KafkaTransactionsTopic, cfg.KafkaImportTopic}, appLogger)
		topicsCancel()
		if err != nil {
			appLogger.Warn("Failed to ensure Kafka topics", zap.Error(err))
		}

		kafkaProducer := kafka_infra.NewProducer(brokers, appLogger.With(zap.String("component", "KafkaProducer")))
		defer kafkaProducer.Close()

		processor := outbox.NewProcessor(
			db,
			outboxRepository,
			kafkaProducer,
			cfg.OutboxPollInterval,
			cfg.OutboxPollTimeout,
			appLogger.With(zap.String("component", "OutboxProcessor")),
		)
		g.Go(func() error {
			processor.Start(gctx)
			return nil
		})
		appLogger.Info("Transactional Outbox sender started.")

		importHandler := kafka_handler.NewTransactionImportConsumer(ledgerService, appLogger.With(zap.String("component", "TransactionImportConsumer")))
		consumer := kafka_infra.NewConsumer(brokers, cfg.KafkaImportTopic, cfg.KafkaConsumerGroup, importHandler.HandleMessage, appLogger)
		defer consumer.Close()
		g.Go(func() error {
			if err := consumer.Consume(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("kafka transaction import consumer: %w", err)
			}
			return nil
		})
		appLogger.Info("Kafka transaction import consumer started!")
	}

	router, err := ledger_http.NewRouter(ledgerService, cfg.GetCORSAllowedOrigins(), appLogger)
	if err != nil {
		appLogger.Fatal("Failed to build HTTP router", zap.Error(err))
	}

	serverAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()
	appLogger.Info("Ledger Service started", zap.String("address", serverAddr))

	<-sigChan

	appLogger.Info("Shutting down Ledger Service...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Ledger Service graceful shutdown failed", zap.Error(err))
	}

	cancel()
	if err := g.Wait(); err != nil {
		appLogger.Error("Background worker failed", zap.Error(err))
	}
	appLogger.Info("Ledger Service stopped.")
}

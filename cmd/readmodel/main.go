package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"readmodel/internal/app/projection"
	"readmodel/internal/config"
	readmodel_http "readmodel/internal/handler/http/readmodel"
	kafka_handler "readmodel/internal/handler/kafka"
	"readmodel/internal/infrastructure/database"
	kafka_infra "readmodel/internal/infrastructure/kafka"
	"readmodel/internal/metrics"
	"readmodel/internal/repository/accounts_repo"
	"readmodel/internal/repository/transactions_repo"
	"readmodel/internal/repository/transfers_repo"
)

func ensureKafkaTopics(ctx context.Context, brokerURLs []string, topics []string, logger *zap.Logger) error {
	conn, err := kafka.DialContext(ctx, "tcp", brokerURLs[0])
	if err != nil {
		return fmt.Errorf("failed to dial kafka broker for admin operations: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to get kafka controller: %w", err)
	}
	controllerConn, err := kafka.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return fmt.Errorf("failed to dial kafka controller: %w", err)
	}
	defer controllerConn.Close()

	topicConfigs := make([]kafka.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}

	err = controllerConn.CreateTopics(topicConfigs...)
	if err != nil {
		if err == kafka.TopicAlreadyExists {
			logger.Info("One or more Kafka topics already exist, skipping creation.")
		} else {
			return fmt.Errorf("failed to create Kafka topics: %w", err)
		}
	} else {
		logger.Info("Kafka topics ensured successfully.", zap.Strings("topics", topics))
	}

	return nil
}

func main() {
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
	appLogger.Info("Read Model Service starting...")

	appLogger.Info("Waiting for database to be available...")
	dbConfig := database.DBConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.Name,
		SSLMode:  cfg.DBConfig.SSLMode,
	}

	var db *sql.DB
	maxRetries := 10
	retryDelay := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = database.NewPostgresDB(dbConfig)
		if err == nil {
			appLogger.Info("Successfully connected to PostgreSQL database!")
			break
		}
		appLogger.Warn(fmt.Sprintf("Failed to connect to database (attempt %d/%d): %v. Retrying in %s...", i+1, maxRetries, err, retryDelay))
		time.Sleep(retryDelay)
	}

	if db == nil {
		appLogger.Fatal("Could not connect to database after multiple retries. Exiting.", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Error closing database connection", zap.Error(err))
		} else {
			appLogger.Info("Database connection closed.")
		}
	}()

	appLogger.Info("Running database migrations...")
	m, err := migrate.New(cfg.MigrationsPath, cfg.GetDBMigrationConnectionString())
	if err != nil {
		appLogger.Fatal("Failed to create migrate instance", zap.Error(err))
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		appLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}
	appLogger.Info("Database migrations completed successfully (or no new migrations).")

	kafkaBrokers := cfg.GetKafkaBrokers()

	topicCtx, topicCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer topicCancel()
	if err := ensureKafkaTopics(topicCtx, kafkaBrokers, cfg.GetKafkaTopics(), appLogger); err != nil {
		appLogger.Fatal("Failed to ensure Kafka topics", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	projectionMetrics := metrics.NewProjectionMetrics(registry)

	accountRepository := accounts_repo.NewAccountRepository()
	transactionRepository := transactions_repo.NewTransactionRepository()
	transferRepository := transfers_repo.NewTransferRepository()
	txManager := database.NewSQLTxManager(db, appLogger.With(zap.String("component", "TxManager")))

	projectionService := projection.NewProjectionService(
		db,
		txManager,
		accountRepository,
		transactionRepository,
		transferRepository,
		projectionMetrics,
		appLogger.With(zap.String("component", "ProjectionService")),
	)
	appLogger.Info("Projection Service initialized.")

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	readmodel_http.RegisterRoutes(router, projectionService, appLogger.With(zap.String("component", "HTTPHandler")))
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: router,
	}
	appLogger.Info("HTTP server configured.")

	type subscription struct {
		topic   string
		handler kafka_infra.MessageHandler
	}
	subscriptions := []subscription{
		{
			topic:   cfg.KafkaAccountCreatedTopic,
			handler: kafka_handler.AccountCreatedMessageHandler(projectionService, projectionMetrics, appLogger.With(zap.String("component", "AccountCreatedHandler"))),
		},
		{
			topic:   cfg.KafkaMoneyDepositedTopic,
			handler: kafka_handler.MoneyDepositedMessageHandler(projectionService, projectionMetrics, appLogger.With(zap.String("component", "MoneyDepositedHandler"))),
		},
		{
			topic:   cfg.KafkaMoneyWithdrawnTopic,
			handler: kafka_handler.MoneyWithdrawnMessageHandler(projectionService, projectionMetrics, appLogger.With(zap.String("component", "MoneyWithdrawnHandler"))),
		},
	}

	ctxMain, cancelMain := context.WithCancel(context.Background())

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	var consumers []*kafka_infra.Consumer
	var wg sync.WaitGroup
	for _, sub := range subscriptions {
		consumer := kafka_infra.NewConsumer(
			kafkaBrokers,
			cfg.KafkaConsumerGroup,
			sub.topic,
			appLogger.With(zap.String("component", "KafkaConsumer"), zap.String("topic", sub.topic)),
		)
		consumers = append(consumers, consumer)

		wg.Add(1)
		go func(c *kafka_infra.Consumer, h kafka_infra.MessageHandler, topic string) {
			defer wg.Done()
			if err := c.Run(ctxMain, h); err != nil {
				appLogger.Error("Kafka consumer failed", zap.String("topic", topic), zap.Error(err))
			}
		}(consumer, sub.handler, sub.topic)
	}
	appLogger.Info("Kafka consumers started.", zap.Int("count", len(consumers)))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	appLogger.Info("Shutting down application...")

	cancelMain()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server graceful shutdown failed", zap.Error(err))
	} else {
		appLogger.Info("HTTP server gracefully shut down.")
	}

	for _, consumer := range consumers {
		if err := consumer.Close(); err != nil {
			appLogger.Error("Error closing Kafka consumer", zap.Error(err))
		}
	}

	consumersDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(consumersDone)
	}()
	select {
	case <-consumersDone:
		appLogger.Info("All Kafka consumers stopped.")
	case <-time.After(5 * time.Second):
		appLogger.Warn("Kafka consumers did not stop cleanly within 5 seconds.")
	}

	appLogger.Info("Application gracefully shut down.")
}

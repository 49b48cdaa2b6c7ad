package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	kafkaAdapter "github.com/iho/trustledger/internal/adapter/events/kafka"
	httpAdapter "github.com/iho/trustledger/internal/adapter/http"
	"github.com/iho/trustledger/internal/adapter/http/handler"
	postgresRepo "github.com/iho/trustledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/trustledger/internal/adapter/repository/redis"
	"github.com/iho/trustledger/internal/infrastructure/config"
	"github.com/iho/trustledger/internal/infrastructure/eventpublisher"
	"github.com/iho/trustledger/internal/infrastructure/logger"
	"github.com/iho/trustledger/internal/infrastructure/metrics"
	"github.com/iho/trustledger/internal/infrastructure/postgres"
	"github.com/iho/trustledger/internal/infrastructure/redis"
	"github.com/iho/trustledger/internal/usecase"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier()
	accountRepo := postgresRepo.NewTrustAccountRepository(pool)
	ledgerRepo := postgresRepo.NewClientLedgerRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	statementRepo := postgresRepo.NewBankStatementRepository(pool)
	reconciliationRepo := postgresRepo.NewReconciliationRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// Use cases
	accountUC := usecase.NewTrustAccountUseCase(txManager, accountRepo, ledgerRepo, auditRepo, idGen)
	ledgerUC := usecase.NewClientLedgerUseCase(txManager, accountRepo, ledgerRepo, auditRepo, idGen)
	transactionUC := usecase.NewTransactionUseCase(txManager, accountRepo, ledgerRepo, transactionRepo, outboxRepo, auditRepo, idGen, retrier, m)
	balanceUC := usecase.NewBalanceUseCase(ledgerRepo, transactionRepo, auditRepo)
	statementUC := usecase.NewStatementUseCase(txManager, accountRepo, statementRepo, outboxRepo, auditRepo, idGen, cache, m)
	reconciliationUC := usecase.NewReconciliationUseCase(txManager, statementRepo, transactionRepo, reconciliationRepo, outboxRepo, auditRepo, idGen, m)

	// Handlers
	trustAccountHandler := handler.NewTrustAccountHandler(accountUC, balanceUC)
	clientLedgerHandler := handler.NewClientLedgerHandler(ledgerUC, balanceUC)
	transactionHandler := handler.NewTransactionHandler(transactionUC)
	statementHandler := handler.NewStatementHandler(statementUC)
	reconciliationHandler := handler.NewReconciliationHandler(reconciliationUC)
	auditHandler := handler.NewAuditHandler(auditRepo)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		TrustAccountHandler:   trustAccountHandler,
		ClientLedgerHandler:   clientLedgerHandler,
		TransactionHandler:    transactionHandler,
		StatementHandler:      statementHandler,
		ReconciliationHandler: reconciliationHandler,
		AuditHandler:          auditHandler,
		HealthHandler:         healthHandler,
		IdempotencyStore:      idempotencyStore,
		Metrics:               m,
		Logger:                log.Logger,
	})

	// Outbox publisher: Kafka when brokers are configured, logging
	// fallback otherwise
	var publisher eventpublisher.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := kafkaAdapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing events to kafka")
	} else {
		publisher = eventpublisher.NewLogPublisher(nil)
		log.Info().Msg("no kafka brokers configured, logging events")
	}

	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()

	ep := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  publisher,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
	})
	go func() {
		if err := ep.Start(publisherCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	stopPublisher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

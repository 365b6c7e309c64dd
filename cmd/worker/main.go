package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"talentforge/internal/adapter"
	"talentforge/internal/adapter/completion"
	"talentforge/internal/cache"
	"talentforge/internal/config"
	"talentforge/internal/database"
	"talentforge/internal/logger"
	"talentforge/internal/messaging"
	"talentforge/internal/repository"
	"talentforge/internal/service"
)

// The worker consumes skill-change events, keeps challenge pools
// stocked, assigns assessments to the originating users and forwards
// explicit assignment requests to the assignment stream.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)

	completionSource, err := completion.NewFromConfig(cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create completion source", zap.Error(err))
	}

	challengeRepo := repository.NewChallengeDatabaseAdapter(db)
	assessmentRepo := repository.NewAssessmentDatabaseAdapter(db)
	relationRepo := repository.NewRelationDatabaseAdapter(db)
	userRepo := repository.NewUserDatabaseAdapter(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	generationService := service.NewGenerationService(challengeRepo, completionSource, cfg.Generation)
	assessmentService := service.NewAssessmentService(
		assessmentRepo, challengeRepo, relationRepo,
		generationService, txManager, cacheAdapter,
		cfg.Assessment, cfg.Generation,
	)
	publisher := messaging.NewStreamPublisher(redisClient, cfg.Stream.AssignmentStream)
	distributionService := service.NewDistributionService(assessmentService, userRepo, cacheAdapter, publisher)

	consumer := messaging.NewStreamConsumer(
		redisClient,
		cfg.Stream.SkillsStream,
		cfg.Stream.ConsumerGroup,
		cfg.Stream.ConsumerName,
		messaging.SkillsChangedHandler(distributionService),
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		appLogger.Info("Shutting down worker...")
		cancel()
	}()

	if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
		appLogger.Fatal("Consumer stopped", zap.Error(err))
	}
	appLogger.Info("Worker exited gracefully")
}

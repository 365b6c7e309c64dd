package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"talentforge/internal/adapter"
	"talentforge/internal/adapter/completion"
	"talentforge/internal/cache"
	"talentforge/internal/config"
	"talentforge/internal/database"
	"talentforge/internal/handler"
	"talentforge/internal/logger"
	"talentforge/internal/messaging"
	"talentforge/internal/middleware"
	"talentforge/internal/repository"
	"talentforge/internal/service"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Get().Info("HTTP Request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
		)
		return err
	}
}

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
	txManager := repository.NewTransactionManagerAdapter(db)

	generationService := service.NewGenerationService(challengeRepo, completionSource, cfg.Generation)
	assessmentService := service.NewAssessmentService(
		assessmentRepo, challengeRepo, relationRepo,
		generationService, txManager, cacheAdapter,
		cfg.Assessment, cfg.Generation,
	)

	assessmentHandler := handler.NewAssessmentHandler(assessmentService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: middleware.ErrorHandler(),
	})
	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		MaxAge:       300,
	}))
	app.Use(recover.New())

	apiGroup := app.Group("/api")
	apiGroup.Post("/assessments", assessmentHandler.CreateAssessments)
	apiGroup.Get("/assessments/:id", assessmentHandler.GetAssessment)
	apiGroup.Post("/assessments/:id/submissions", assessmentHandler.SubmitAssessment)
	apiGroup.Get("/users/:id/assessments", assessmentHandler.ListUserAssessments)

	// Forwarded assignment events are consumed alongside the HTTP
	// surface so candidate fan-out does not depend on the worker binary.
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	assignmentConsumer := messaging.NewStreamConsumer(
		redisClient,
		cfg.Stream.AssignmentStream,
		cfg.Stream.ConsumerGroup,
		cfg.Stream.ConsumerName,
		messaging.AssignmentHandler(assessmentService),
	)
	go func() {
		if err := assignmentConsumer.Run(consumerCtx); err != nil && consumerCtx.Err() == nil {
			appLogger.Error("assignment consumer stopped", zap.Error(err))
		}
	}()

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	stopConsumer()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}

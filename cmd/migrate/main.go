package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"talentforge/internal/config"
	"talentforge/internal/database"
	"talentforge/internal/logger"
)

func main() {
	migrationsDir := flag.String("dir", "database/migrations", "directory holding *.up.sql files")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := database.NewMigrateOracleDB(cfg.GetDSN())
	if err != nil {
		logger.Get().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(db, *migrationsDir); err != nil {
		logger.Get().Fatal("Migrations failed", zap.Error(err))
	}
	logger.Get().Info("Migrations completed successfully")
}

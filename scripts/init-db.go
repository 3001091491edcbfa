package main

import (
	"context"
	"flag"
	"log"

	"furniture_board/internal/config"
	"furniture_board/internal/database"
	"furniture_board/internal/logger"
	"furniture_board/internal/migrations"

	"go.uber.org/zap"
)

func main() {
	reset := flag.Bool("reset", false, "drop every board table before migrating")
	seed := flag.Bool("seed", true, "insert demo customers and vendors into an empty directory")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	zapLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer zapLogger.Sync()

	db, err := database.Initialize(cfg.DatabaseURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if *reset {
		zapLogger.Info("Dropping existing tables")
		if err := db.Migrator().DropTable(migrations.Models()...); err != nil {
			zapLogger.Warn("Error dropping tables", zap.Error(err))
		}
	}

	if err := migrations.RunMigrations(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	if *seed {
		if err := migrations.SeedDirectory(context.Background(), db, zapLogger, cfg.DefaultPaymentTerms); err != nil {
			zapLogger.Fatal("Failed to seed directory", zap.Error(err))
		}
	}

	zapLogger.Info("Database initialized")
}

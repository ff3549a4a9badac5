package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/apmatch/backend/internal/infrastructure/config"
	"github.com/apmatch/backend/internal/infrastructure/logger"
	"github.com/apmatch/backend/internal/infrastructure/persistence"
	"github.com/apmatch/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if !cfg.Database.Enabled {
		log.Fatal("Database is disabled; set database.enabled = true to run migrations")
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	log.Info("Running migrations",
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.DBName))

	if err := db.DB.AutoMigrate(&models.MatchRecordModel{}); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}

	log.Info("Migrations completed successfully")
}

package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/medforo/medforo/internal/db"
	"github.com/medforo/medforo/internal/models"
	"github.com/medforo/medforo/pkg/config"
	"github.com/medforo/medforo/pkg/logging"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Running Medforo schema migration")

	// Connect to database
	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.AutoMigrate(
		&models.User{},
		&models.Community{},
		&models.Member{},
		&models.PendingMember{},
		&models.Moderator{},
		&models.Ban{},
		&models.Post{},
		&models.PostImage{},
		&models.Comment{},
		&models.Notification{},
	); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}

	logger.Info("Migration complete")
}

package main

import (
	"os"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		middleware.Logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		middleware.Logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(db); err != nil {
		middleware.Logger.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	middleware.Logger.Info("Migration completed")
}

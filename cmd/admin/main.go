// Command admin promotes an existing account to a given role from the CLI.
// Useful for bootstrapping the first admin before any admin exists to use
// the management API.
package main

import (
	"flag"
	"os"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	username := flag.String("username", "", "username of the account to promote")
	role := flag.String("role", string(models.RoleAdmin), "role to assign: admin, manager, or user")
	flag.Parse()

	if *username == "" {
		middleware.Logger.Error("username is required")
		os.Exit(1)
	}
	if !models.ValidRole(models.Role(*role)) {
		middleware.Logger.Error("invalid role", "role", *role)
		os.Exit(1)
	}

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

	var user models.User
	if err := db.Where("username = ?", *username).First(&user).Error; err != nil {
		middleware.Logger.Error("User not found", "username", *username)
		os.Exit(1)
	}

	user.Role = models.Role(*role)
	if err := db.Save(&user).Error; err != nil {
		middleware.Logger.Error("Failed to update role", "error", err)
		os.Exit(1)
	}

	middleware.Logger.Info("Role updated", "username", user.Username, "role", user.Role)
}

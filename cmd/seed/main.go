package main

import (
	"flag"
	"os"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	users := flag.Int("users", seed.DefaultOptions.Users, "number of regular users to create")
	postsPerUser := flag.Int("posts", seed.DefaultOptions.PostsPerUser, "posts per user")
	commentsPerPost := flag.Int("comments", seed.DefaultOptions.CommentsPerPost, "comments per published post")
	votersPerPost := flag.Int("voters", seed.DefaultOptions.VotersPerPost, "voters per published post")
	flag.Parse()

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

	opts := seed.Options{
		Users:           *users,
		PostsPerUser:    *postsPerUser,
		CommentsPerPost: *commentsPerPost,
		VotersPerPost:   *votersPerPost,
	}
	if err := seed.Run(db, opts); err != nil {
		middleware.Logger.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
	middleware.Logger.Info("Seeding completed",
		"users", opts.Users,
		"posts_per_user", opts.PostsPerUser,
	)
}

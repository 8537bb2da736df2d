// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"
	"inkwell/internal/token"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	tokens         *token.Issuer
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	likeRepo       repository.LikeRepository
	accountService *service.AccountService
	postService    *service.PostService
	commentService *service.CommentService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	prom := middleware.InitMetrics("inkwell-api")
	tokens := token.NewIssuer(cfg.JWTSecret, redisClient)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		tokens:         tokens,
		userRepo:       userRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		likeRepo:       likeRepo,
	}
	server.accountService = service.NewAccountService(userRepo, tokens)
	server.postService = service.NewPostService(postRepo, likeRepo)
	server.commentService = service.NewCommentService(commentRepo, postRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid so it can pick up the ID)
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter) so
	// browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health", s.HealthCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 10, time.Minute), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, time.Minute), s.Login)
	auth.Post("/logout", s.Logout)
	auth.Get("/profile", s.AuthRequired(), s.GetProfile)
	auth.Put("/profile", s.AuthRequired(), s.UpdateProfile)
	auth.Post("/change-password", s.AuthRequired(), s.ChangePassword)

	// User management routes
	users := api.Group("/users", s.AuthRequired())
	users.Get("/", s.ListUsers)
	users.Get("/:id", s.GetUser)
	users.Put("/:id", s.UpdateUser)
	users.Delete("/:id", s.DeleteUser)

	// Post routes. Fixed segments are registered before /:id so the router
	// never treats them as post IDs.
	posts := api.Group("/posts")
	posts.Get("/", s.OptionalAuth(), s.ListPublishedPosts)
	posts.Post("/", s.AuthRequired(), middleware.RateLimit(s.redis, 30, time.Minute, "create-post"), s.CreatePost)
	posts.Get("/mine", s.AuthRequired(), s.ListMyPosts)
	posts.Get("/manage", s.AuthRequired(), s.ListManagedPosts)
	posts.Get("/manage/:id", s.AuthRequired(), s.GetManagedPost)
	posts.Get("/:id", s.OptionalAuth(), s.GetPublishedPost)
	posts.Put("/:id", s.AuthRequired(), s.UpdatePost)
	posts.Delete("/:id", s.AuthRequired(), s.DeletePost)
	posts.Patch("/:id/status", s.AuthRequired(), s.ChangePostStatus)
	posts.Post("/:id/vote", s.AuthRequired(), s.VotePost)
	posts.Delete("/:id/vote", s.AuthRequired(), s.UnvotePost)
	posts.Get("/:id/votes", s.GetVoteCounts)
	posts.Get("/:id/comments", s.ListPostComments)
	posts.Post("/:id/comments", s.AuthRequired(), middleware.RateLimit(s.redis, 60, time.Minute, "create-comment"), s.CreateComment)

	// Comment routes
	comments := api.Group("/comments", s.AuthRequired())
	comments.Get("/:id", s.GetComment)
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)
}

// AuthRequired rejects requests without a valid access token and loads the
// full actor record into the request locals.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, models.NewInvalidCredentialsError())
		}

		userID, err := s.tokens.VerifyAccess(tokenString)
		if err != nil {
			return models.RespondWithError(c, models.NewInvalidCredentialsError())
		}

		actor, err := s.loadActor(c.Context(), userID)
		if err != nil || !actor.IsActive {
			return models.RespondWithError(c, models.NewInvalidCredentialsError())
		}

		c.Locals("actorID", actor.ID)
		c.Locals("actor", actor)
		return c.Next()
	}
}

// OptionalAuth loads the actor when a valid token is present and continues
// anonymously otherwise.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return c.Next()
		}
		userID, err := s.tokens.VerifyAccess(tokenString)
		if err != nil {
			return c.Next()
		}
		if actor, err := s.loadActor(c.Context(), userID); err == nil && actor.IsActive {
			c.Locals("actorID", actor.ID)
			c.Locals("actor", actor)
		}
		return c.Next()
	}
}

// loadActor resolves the authenticated user, serving repeat lookups from the
// user cache. The repository invalidates the entry on update and delete, so
// role changes and deactivations take effect on the next request.
func (s *Server) loadActor(ctx context.Context, userID uint) (*models.User, error) {
	var actor models.User
	err := cache.Aside(ctx, cache.UserKey(userID), &actor, cache.UserTTL, func() error {
		fresh, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		actor = *fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &actor, nil
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// currentActor returns the authenticated user loaded by AuthRequired, or nil
// on anonymous requests.
func currentActor(c *fiber.Ctx) *models.User {
	actor, _ := c.Locals("actor").(*models.User)
	return actor
}

func currentActorID(c *fiber.Ctx) uint {
	id, _ := c.Locals("actorID").(uint)
	return id
}

// HealthCheck reports service health including database and Redis reachability.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	status := fiber.Map{
		"status":  "ok",
		"service": "inkwell-api",
	}

	if sqlDB, err := s.db.DB(); err != nil || sqlDB.Ping() != nil {
		status["status"] = "degraded"
		status["database"] = "unreachable"
		return c.Status(fiber.StatusServiceUnavailable).JSON(status)
	}
	status["database"] = "ok"

	if s.redis != nil {
		if err := s.redis.Ping(c.Context()).Err(); err != nil {
			status["redis"] = "unreachable"
		} else {
			status["redis"] = "ok"
		}
	}

	return c.JSON(status)
}

// Start builds the Fiber app and begins serving on the configured port.
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:      "inkwell",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app

	middleware.Logger.Info("Server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app == nil {
		return nil
	}
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the underlying Fiber app, assembling it on first use. Tests
// drive requests through this without binding a port.
func (s *Server) App() *fiber.App {
	if s.app == nil {
		app := fiber.New()
		s.SetupMiddleware(app)
		s.SetupRoutes(app)
		s.app = app
	}
	return s.app
}

// Package main is the entrypoint for the Stride API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/strideapp/stride/internal/auth"
	"github.com/strideapp/stride/internal/cache"
	"github.com/strideapp/stride/internal/config"
	"github.com/strideapp/stride/internal/handler"
	"github.com/strideapp/stride/internal/metrics"
	"github.com/strideapp/stride/internal/middleware"
	"github.com/strideapp/stride/internal/repository"
	"github.com/strideapp/stride/internal/server"
	"github.com/strideapp/stride/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	tokens, err := auth.NewTokenManager([]byte(cfg.TokenSigningKey), cfg.TokenTTL)
	if err != nil {
		logger.Error("failed to initialize token manager", "error", err)
		os.Exit(1)
	}

	recorder := metrics.NewNoop()
	userService := service.NewUserService(repo, cacheClient, tokens, logger, recorder)
	goalService := service.NewGoalService(repo)

	if err := seedAdminUser(ctx, cfg, userService, logger); err != nil {
		logger.Error("failed to seed admin user", "error", err)
		os.Exit(1)
	}

	userHandler := handler.NewUserHandler(userService, logger)
	goalHandler := handler.NewGoalHandler(goalService, logger)
	healthHandler := handler.NewHealthHandler(repo, cacheClient)

	r := setupRouter(userHandler, goalHandler, healthHandler, tokens, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"token_ttl", cfg.TokenTTL,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// seedAdminUser creates the configured master user if it does not exist.
// An existing username is fine: seeding is idempotent across restarts.
func seedAdminUser(ctx context.Context, cfg *config.Config, users *service.UserService, logger *slog.Logger) error {
	if cfg.SeedAdminUsername == "" {
		return nil
	}

	var displayName *string
	if cfg.SeedAdminDisplayName != "" {
		displayName = &cfg.SeedAdminDisplayName
	}

	user, err := users.CreateUser(ctx, service.CreateUserInput{
		Username:    cfg.SeedAdminUsername,
		DisplayName: displayName,
		Password:    cfg.SeedAdminPassword,
	})
	if err != nil {
		if errors.Is(err, service.ErrUsernameExists) {
			logger.Info("admin user already seeded", "username", cfg.SeedAdminUsername)
			return nil
		}
		return err
	}

	logger.Info("admin user seeded", "user_id", user.ID, "username", user.Username)
	return nil
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	userHandler *handler.UserHandler,
	goalHandler *handler.GoalHandler,
	healthHandler *handler.HealthHandler,
	tokens *auth.TokenManager,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	if origins := cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Login (no auth required)
	r.Post("/token", userHandler.Login)

	authCfg := middleware.AuthConfig{
		Logger: logger,
		Tokens: tokens,
	}

	// API v1 routes (require a bearer token)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.List)
			r.Get("/{id}", userHandler.Get)
			r.Post("/", userHandler.Create)
			r.Patch("/{id}", userHandler.Update)
			r.Delete("/{id}", userHandler.Delete)
		})

		r.Route("/goals", func(r chi.Router) {
			r.Get("/", goalHandler.List)
			r.Get("/{id}", goalHandler.Get)
			r.Post("/", goalHandler.Create)
			r.Patch("/{id}", goalHandler.Update)
			r.Delete("/{id}", goalHandler.Delete)
		})
	})

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}

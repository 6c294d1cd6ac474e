// Package main is the entry point for the blogpress server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogpress/internal/blog"
	"blogpress/internal/config"
	"blogpress/internal/database"
	"blogpress/internal/handlers"
	"blogpress/internal/middleware"
	"blogpress/internal/render"
	"blogpress/internal/router"
	"blogpress/internal/session"
	"blogpress/internal/storage"
	"blogpress/internal/store"
	"blogpress/internal/store/memory"
)

func main() {
	// Load configuration from environment variables (and .env).
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: JSON in production, text elsewhere.
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"store", cfg.StoreDriver,
	)

	ctx := context.Background()
	checks := map[string]handlers.HealthCheck{}

	// Repositories: PostgreSQL or in-memory.
	deps := blog.Deps{PerPage: cfg.PostsPerPage}
	switch cfg.StoreDriver {
	case config.DriverMemory:
		mem := memory.New()
		deps.Posts, deps.Categories, deps.Tags = mem.Posts(), mem.Categories(), mem.Tags()
		deps.Comments, deps.Users = mem.Comments(), mem.Users()
		slog.Warn("using in-memory store, data is lost on restart")
	default:
		db, err := database.Connect(ctx, cfg.DSN())
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		deps.Posts, deps.Categories, deps.Tags = store.NewPostStore(db), store.NewCategoryStore(db), store.NewTagStore(db)
		deps.Comments, deps.Users = store.NewCommentStore(db), store.NewUserStore(db)
		checks["database"] = pingDB(db)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(ctx, deps.Users, deps.Categories, deps.Tags); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Featured images: S3-compatible storage when configured, local disk otherwise.
	var files storage.Store
	var media http.Handler
	s3, err := storage.NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if s3 != nil {
		files = s3
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		local, err := storage.NewLocal(cfg.MediaRoot, cfg.MediaURL)
		if err != nil {
			slog.Error("failed to initialize media directory", "error", err)
			os.Exit(1)
		}
		files = local
		media = handlers.Media(local.Root())
		slog.Info("local media storage", "root", local.Root(), "url", cfg.MediaURL)
	}
	deps.Files = files

	// Connect to Valkey (session store).
	valkeyClient, err := session.Connect(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()
	checks["valkey"] = func(ctx context.Context) error { return valkeyClient.Ping(ctx).Err() }

	// Outside development, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	renderer, err := render.New(files.URL)
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	svc := blog.NewService(deps)

	// Ten login, 2FA or comment submissions per minute per client.
	limiter := middleware.NewRateLimiter(10, time.Minute)
	defer limiter.Stop()

	r := router.New(router.Config{
		Sessions:      sessionStore,
		Renderer:      renderer,
		Public:        handlers.NewPublic(renderer, svc),
		Author:        handlers.NewAuthor(renderer, svc),
		Auth:          handlers.NewAuth(renderer, sessionStore, svc),
		Admin:         handlers.NewAdmin(renderer, svc),
		Health:        handlers.Health(checks),
		Media:         media,
		MediaPrefix:   cfg.MediaURL,
		Limiter:       limiter,
		SecureCookies: secureCookies,
		MaxBodyBytes:  cfg.MaxBodyBytes(),
	})

	// Create the HTTP server with sensible timeouts. Reads allow for
	// image uploads on slow links.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func pingDB(db *sql.DB) handlers.HealthCheck {
	return db.PingContext
}

// Package main is the entry point for the NextPing blog API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nextping/internal/ai"
	"nextping/internal/cache"
	"nextping/internal/config"
	"nextping/internal/cover"
	"nextping/internal/database"
	"nextping/internal/handlers"
	"nextping/internal/middleware"
	"nextping/internal/router"
	"nextping/internal/scheduler"
	"nextping/internal/session"
	"nextping/internal/storage"
	"nextping/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (sessions + response cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark session cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)
	respCache := cache.NewResponseCache(valkeyClient, cache.DefaultResponseTTL)

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	postStore := store.NewPostStore(db)
	topicStore := store.NewTopicStore(db)

	// Connect to R2 object storage (optional — app works without it).
	storageClient, err := storage.New(
		cfg.R2Endpoint, cfg.R2AccessKey, cfg.R2SecretKey,
		cfg.R2Bucket, cfg.R2PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize object storage", "error", err)
		os.Exit(1)
	}
	if storageClient == nil {
		slog.Warn("object storage not configured — uploads and cover images disabled")
	} else {
		slog.Info("object storage connected", "endpoint", cfg.R2Endpoint, "bucket", cfg.R2Bucket)
	}

	// The generation client holds its config by value; missing fields
	// surface as configuration errors on the first call, so the server
	// still starts without AI credentials.
	aiClient := ai.NewClient(ai.Config{
		Endpoint:        cfg.AIEndpoint,
		APIKey:          cfg.AIAPIKey,
		APIVersion:      cfg.AIAPIVersion,
		Deployment:      cfg.AIDeployment,
		ImageDeployment: cfg.AIImageDeployment,
	})

	// Cover pipeline needs both the image model and object storage.
	var coverAttacher *cover.Attacher
	if storageClient != nil {
		coverAttacher = cover.NewAttacher(aiClient, storageClient)
	}

	// The scheduler publishes under the oldest admin account.
	admin, err := userStore.FirstAdmin()
	if err != nil {
		slog.Error("failed to resolve scheduler author", "error", err)
		os.Exit(1)
	}
	if admin == nil {
		slog.Error("no admin account exists — seed the database or create one")
		os.Exit(1)
	}

	var runnerCovers scheduler.CoverAttacher
	if coverAttacher != nil {
		runnerCovers = coverAttacher
	}
	runner := scheduler.NewRunner(topicStore, postStore, aiClient, runnerCovers, admin.ID)

	// Generation endpoints are rate-limited per IP.
	rateLimiter := middleware.NewRateLimiter(10, time.Minute)
	defer rateLimiter.Stop()

	// Create handler groups with their dependencies.
	r := router.New(router.Deps{
		Sessions:    sessionStore,
		RateLimiter: rateLimiter,
		Auth:        handlers.NewAuth(sessionStore, userStore),
		Posts:       handlers.NewPosts(postStore, respCache),
		Topics:      handlers.NewTopics(topicStore),
		Generate:    handlers.NewGenerate(runner, aiClient, postStore, runnerCovers),
		Upload:      handlers.NewUpload(storageClient),
		Analytics:   handlers.NewAnalytics(postStore, userStore, topicStore),
	})

	// WriteTimeout must accommodate generation endpoints that wait on the
	// LLM plus the image model (up to 60s each).
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// Package main is the entry point for the item catalog server.
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

	"github.com/joho/godotenv"

	"itemcatalog/internal/config"
	"itemcatalog/internal/database"
	"itemcatalog/internal/handlers"
	"itemcatalog/internal/identity"
	"itemcatalog/internal/render"
	"itemcatalog/internal/router"
	"itemcatalog/internal/session"
	"itemcatalog/internal/store"
)

func main() {
	// A local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

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

	// OAuth credentials registered with the identity provider.
	secrets, err := config.LoadClientSecrets(cfg.ClientSecretsFile)
	if err != nil {
		slog.Error("failed to load client secrets", "file", cfg.ClientSecretsFile, "error", err)
		os.Exit(1)
	}

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

	// Seed the category taxonomy (no-op if categories already exist).
	if err := database.Seed(db); err != nil {
		slog.Error("failed to seed database", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey (Redis-compatible session store).
	valkeyClient, err := session.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// HTML template renderer. Templates are embedded in the binary.
	renderer, err := render.New(secrets.ClientID)
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Data stores.
	categoryStore := store.NewCategoryStore(db)
	itemStore := store.NewItemStore(db)

	// Identity verifier against the hosted OAuth provider.
	verifier := identity.New(identity.Config{
		ClientID:     secrets.ClientID,
		ClientSecret: secrets.ClientSecret,
	})

	// Handler groups with their dependencies.
	catalogHandlers := handlers.NewCatalog(renderer, sessionStore, categoryStore, itemStore)
	itemHandlers := handlers.NewItems(renderer, sessionStore, categoryStore, itemStore)
	authHandlers := handlers.NewAuth(sessionStore, verifier)

	// Chi router with all middleware and routes.
	r := router.New(sessionStore, secureCookies, catalogHandlers, itemHandlers, authHandlers)

	// HTTP server with sensible timeouts. WriteTimeout accommodates the
	// login flow's round trips to the identity provider.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
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

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/alluz/alluz-web/internal/catalog"
	"github.com/alluz/alluz-web/internal/config"
	"github.com/alluz/alluz-web/internal/gateway"
	"github.com/alluz/alluz-web/internal/handler"
	"github.com/alluz/alluz-web/internal/lead"
	"github.com/alluz/alluz-web/internal/logging"
	"github.com/alluz/alluz-web/internal/middleware"
	"github.com/alluz/alluz-web/internal/render"
	"github.com/alluz/alluz-web/internal/scheduler"
	"github.com/alluz/alluz-web/internal/session"
	"github.com/alluz/alluz-web/internal/store"
	"github.com/alluz/alluz-web/internal/version"
	"github.com/alluz/alluz-web/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// registerSettingsRoutes registers a settings page with Get, Put, and Post (for HTML forms).
func registerSettingsRoutes(r chi.Router, route string, get, update http.HandlerFunc) {
	r.Get(route, get)
	r.Put(route, update)
	r.Post(route, update) // HTML forms can't send PUT
}

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Alluz Energia - solar monitoring subscription site\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ALLUZ_API_BASE_URL     Alluz API root URL (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ALLUZ_API_TOKEN        Service token for background refresh (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ALLUZ_SESSION_SECRET   Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ALLUZ_DB_PATH          SQLite session database path (default: ./data/alluz.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ALLUZ_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ALLUZ_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ALLUZ_REFRESH_MINUTES  Content refresh interval, 0 disables (default: 5)\n")
	}

	flag.Parse()

	// Handle -h/-help flag
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	// Handle -v/-version flag
	if *showVersion {
		info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
		_, _ = fmt.Printf("alluz-web %s\n", info)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := &version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	slog.Info("starting alluz-web", "version", versionInfo.Version, "commit", versionInfo.GitCommit)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize the session database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also persist WARN and ERROR logs to the events table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	// API client and session manager depend on each other: the client's
	// auth-reject hook tears the session down, and the session manager
	// validates credentials through the client. The hook closes over the
	// manager variable to break the cycle.
	var sessions *session.Manager
	client := gateway.New(gateway.Config{
		BaseURL: cfg.APIBaseURL,
		Token: func(ctx context.Context) string {
			if token := gateway.TokenFromContext(ctx); token != "" {
				return token
			}
			return cfg.APIToken
		},
		OnAuthReject: func(ctx context.Context) {
			if sessions != nil {
				sessions.ForceLogout(ctx)
			}
		},
	})
	sessions = session.New(db, client, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// Initialize template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessions.SCS(),
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	// Load the content/plan snapshot. A failed initial load is not
	// fatal: the site serves registered defaults until the background
	// refresh succeeds.
	cat := catalog.New(client)
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	if err := cat.LoadAll(loadCtx); err != nil {
		slog.Warn("initial catalog load failed, serving defaults", "error", err)
	} else {
		slog.Info("catalog loaded", "plans", len(cat.Plans()))
	}
	cancelLoad()

	// Start the background refresh
	sched := scheduler.New(cat, time.Duration(cfg.RefreshMinutes)*time.Minute, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	pipeline := lead.NewPipeline(client, logger)
	triage := lead.NewTriage(client)

	publicHandler := handler.NewPublicHandler(cat, pipeline, renderer)
	authHandler := handler.NewAuthHandler(sessions, renderer, client)
	adminHandler := handler.NewAdminHandler(cat, triage, client, renderer, sessions)

	// Rate limiters: lead submissions are limited per IP ahead of the
	// API's own limits; login gets a tighter budget.
	leadLimiter := middleware.NewIPRateLimiter(1, 5)
	loginLimiter := middleware.NewIPRateLimiter(0.5, 3)
	slog.Info("rate limiters initialized", "leads_rps", 1, "login_rps", 0.5)

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig(
		[]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerAddr(),
	))

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(sessions.SCS().LoadAndSave)

	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Get("/", publicHandler.Home)
		r.With(leadLimiter.Middleware()).Post("/leads", publicHandler.CreateLead)
	})

	// Admin routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(csrfMiddleware)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RedirectIfAuthenticated(sessions))
			r.Use(loginLimiter.HTMLMiddleware())
			r.Get("/login", authHandler.LoginForm)
			r.Post("/login", authHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(sessions))

			r.Get("/", adminHandler.Dashboard)
			r.Post("/logout", authHandler.Logout)

			// Lead triage
			r.Post("/leads/{id}/status", adminHandler.UpdateLeadStatus)
			r.Get("/leads/export", adminHandler.ExportCSV)

			// Content and contact configuration
			registerSettingsRoutes(r, "/content", adminHandler.ContentForm, adminHandler.ContentUpdate)
			registerSettingsRoutes(r, "/whatsapp", adminHandler.WhatsAppForm, adminHandler.WhatsAppUpdate)

			// Plan management
			r.Get("/plans", adminHandler.PlansList)
			r.Get("/plans/new", adminHandler.PlanNewForm)
			r.Post("/plans", adminHandler.PlanCreate)
			r.Get("/plans/{id}/edit", adminHandler.PlanEditForm)
			r.Put("/plans/{id}", adminHandler.PlanUpdate)
			r.Post("/plans/{id}", adminHandler.PlanUpdate) // HTML forms can't send PUT
			r.Post("/plans/{id}/delete", adminHandler.PlanDelete)

			// Password change
			registerSettingsRoutes(r, "/password", authHandler.PasswordForm, authHandler.PasswordUpdate)
		})
	})

	// Static file serving: assets are embedded, cache for 1 year
	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	staticHandler := middleware.StaticCache(31536000)(http.StripPrefix("/static/dist/", http.FileServer(http.FS(staticFS))))
	r.Handle("/static/dist/*", staticHandler)

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

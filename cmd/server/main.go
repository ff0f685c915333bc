package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"reelshelf"
	"reelshelf/internal/auth"
	"reelshelf/internal/config"
	"reelshelf/internal/database"
	"reelshelf/internal/handlers"
	"reelshelf/internal/logging"
	"reelshelf/internal/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "reelshelf:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.LogLevel,
		File:        cfg.LogFile,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Initialize database (runs migrations)
	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	// Initialize TMDB client and services
	tmdbClient := services.NewTMDBClient(cfg.TMDBAPIKey, cfg.TMDBBaseURL)
	rowRegistry, err := services.NewRowRegistry(services.DefaultRows)
	if err != nil {
		return err
	}
	locale, err := services.NewLocaleRule(cfg.ContentLocale)
	if err != nil {
		return fmt.Errorf("CONTENT_LOCALE: %w", err)
	}
	aggregator := services.NewContentRowAggregator(tmdbClient, rowRegistry, locale, cfg.RowPageCap, cfg.RowMinCount, logger.Named("rows"))
	ratings := services.NewRatingsService(tmdbClient, logger.Named("ratings"))

	// Auth
	issuer, err := auth.NewTokenIssuer(cfg.AuthSecret, cfg.AppURL)
	if err != nil {
		return err
	}
	authMiddleware := auth.NewMiddleware(issuer, db, logger.Named("auth"))
	devLinks := auth.NewDevLinkStore(1024, 15*time.Minute)

	var mailer auth.Mailer
	if cfg.ResendAPIKey != "" && !cfg.IsDevelopment() {
		mailer = services.NewResendMailer(cfg.ResendAPIKey, cfg.EmailFrom)
	} else if cfg.IsDevelopment() {
		logger.Warn("email delivery disabled, magic links are logged")
	} else {
		logger.Warn("email delivery disabled, RESEND_API_KEY is not set")
	}
	magicLinks := auth.NewMagicLinkService(db, mailer, devLinks, cfg.AppURL, cfg.AuthSecret, cfg.IsDevelopment(), logger.Named("auth"))

	sweeper := services.NewSessionSweeper(db, time.Hour, logger.Named("sweeper"))
	sweeper.Start()
	defer sweeper.Stop()

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(tmdbClient, ratings, locale, logger)
	rowHandler := handlers.NewContentRowHandler(aggregator, ratings, logger)
	watchlistHandler := handlers.NewWatchlistHandler(db, logger)
	userHandler := handlers.NewUserHandler(db, logger)
	authHandler := handlers.NewAuthHandler(magicLinks, issuer, authMiddleware, devLinks, handlers.AuthOptions{
		AppURL:        cfg.AppURL,
		DevMode:       cfg.IsDevelopment(),
		SecureCookies: cfg.SecureCookies(),
	}, logger)

	// Setup router using standard library ServeMux
	mux := http.NewServeMux()

	// Health check (no auth required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	requireAuth := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.RequireAuth(h)
	}

	// Catalog routes
	mux.HandleFunc("GET /api/content-rows", rowHandler.GetContentRow)
	mux.HandleFunc("GET /api/content-rows/ids", rowHandler.ListContentRows)
	mux.HandleFunc("GET /api/content", catalogHandler.GetContent)
	mux.HandleFunc("GET /api/search", catalogHandler.Search)
	mux.HandleFunc("GET /api/genre/{id}", catalogHandler.GetGenre)
	mux.HandleFunc("GET /api/genres", catalogHandler.GetGenres)
	mux.HandleFunc("GET /api/details/{type}/{id}", catalogHandler.GetDetails)

	// Watchlist routes
	mux.Handle("GET /api/watchlist", requireAuth(watchlistHandler.GetWatchlist))
	mux.Handle("POST /api/watchlist", requireAuth(watchlistHandler.AddToWatchlist))
	mux.Handle("GET /api/watchlist/lookup", requireAuth(watchlistHandler.LookupWatchlistItem))
	mux.Handle("PATCH /api/watchlist/{id}", requireAuth(watchlistHandler.UpdateWatchlistItem))
	mux.Handle("DELETE /api/watchlist/{id}", requireAuth(watchlistHandler.RemoveFromWatchlist))

	// User routes
	mux.Handle("GET /api/user/me", requireAuth(userHandler.GetCurrentUser))
	mux.Handle("PATCH /api/user/update-name", requireAuth(userHandler.UpdateName))

	// Auth routes
	mux.HandleFunc("POST /api/auth/signin/email", authHandler.SignInEmail)
	mux.HandleFunc("GET /api/auth/callback/email", authHandler.CallbackEmail)
	mux.HandleFunc("GET /api/auth/session", authHandler.GetSession)
	mux.HandleFunc("POST /api/auth/signout", authHandler.SignOut)
	mux.HandleFunc("GET /api/auth/dev-magic-link", authHandler.DevMagicLink)

	// Static files (SPA) - from disk when STATIC_DIR exists, embedded otherwise
	var static fs.FS
	if _, err := os.Stat(cfg.StaticDir); err == nil {
		logger.Info("serving static files from disk", zap.String("dir", cfg.StaticDir))
		static = os.DirFS(cfg.StaticDir)
	} else {
		logger.Info("serving embedded static files")
		static, err = reelshelf.GetDistFS()
		if err != nil {
			return fmt.Errorf("failed to create sub filesystem: %w", err)
		}
	}
	registerSPA(mux, static)

	handler := cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins(cfg),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})(mux)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func corsOrigins(cfg *config.Config) []string {
	if len(cfg.CORSOrigins) > 0 {
		return cfg.CORSOrigins
	}
	return []string{cfg.AppURL}
}

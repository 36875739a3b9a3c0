package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/AdamBeresnev/tennis-fun/internal/backend"
	"github.com/AdamBeresnev/tennis-fun/internal/config"
	"github.com/AdamBeresnev/tennis-fun/internal/db"
	"github.com/AdamBeresnev/tennis-fun/internal/live"
	"github.com/AdamBeresnev/tennis-fun/internal/service"
	"github.com/AdamBeresnev/tennis-fun/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	database, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB, db.MigrationsURL); err != nil {
		return err
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Store = sqlite3store.New(database.DB)
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	auth, err := service.NewAuthService(cfg.AdminEmail, cfg.AdminPasswordHash, config.DefaultAdminPassword)
	if err != nil {
		return err
	}
	if cfg.AdminPasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH not set, using the default admin password")
	}

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout)
	tournaments := service.NewTournamentService(client, store.NewSnapshotStore(database), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := live.NewHub(logger)
	go hub.Run(ctx)

	board := live.NewBoard(client, hub, cfg.RefreshInterval, logger)
	go board.Run(ctx)

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: newRouter(&application{
			sessions:       sessionManager,
			board:          board,
			tournaments:    tournaments,
			auth:           auth,
			backend:        client,
			hub:            hub,
			allowedOrigins: cfg.AllowedOrigins,
			logger:         logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "backend", cfg.BackendURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Package server wires and runs the libdesk development server: it opens and
// migrates the SQLite database, seeds the startup account and serves the
// REST API until the context is cancelled.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/libdesk/internal/logging"
	"github.com/dmitrijs2005/libdesk/internal/server/config"
	"github.com/dmitrijs2005/libdesk/internal/server/httpapi"
	"github.com/dmitrijs2005/libdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/libdesk/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	handler     http.Handler
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	m := repomanager.NewSQLiteRepositoryManager()

	db, err := m.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	us := services.NewUserService(db, m, c)
	ls := services.NewLibraryService(db, m)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		userService: us,
		handler:     httpapi.NewServer(us, ls, c.SecretKey, logger,
			httpapi.WithCORS(c.CORSOrigins),
			httpapi.WithLoginRateLimit(c.LoginRate, c.LoginBurst),
		),
	}, nil
}

// Seed creates the configured startup account when it is missing.
func (app *App) Seed(ctx context.Context) error {
	if app.config.AdminUser == "" {
		return nil
	}
	_, created, err := app.userService.EnsureUser(ctx, app.config.AdminUser, app.config.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed user %q: %w", app.config.AdminUser, err)
	}
	if created {
		app.logger.Info(ctx, "created startup user", "user", app.config.AdminUser)
	}
	return nil
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully and closes the database.
func (app *App) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", app.config.Addr)
	if err != nil {
		return err
	}
	return app.Serve(ctx, listener)
}

func (app *App) Serve(ctx context.Context, listener net.Listener) error {
	defer app.db.Close()

	if err := app.Seed(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           app.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "Starting HTTP server", "address", listener.Addr().String())
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

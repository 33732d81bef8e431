// Package server initializes and runs the auth server: it loads config,
// opens the database, applies migrations, and supervises the background
// session sweeper. The AuthService it exposes is the operation surface a
// delivery layer (HTTP, gRPC) mounts on top.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MohamedLemine13/JobPortal/internal/logging"
	"github.com/MohamedLemine13/JobPortal/internal/server/config"
	"github.com/MohamedLemine13/JobPortal/internal/server/repositories/repomanager"
	"github.com/MohamedLemine13/JobPortal/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	authService *services.AuthService
}

// NewApp wires the application together. It refuses to start without a
// signing secret: a guessable default here would make every token forgeable.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key is required (set SECRET_KEY or -s)")
	}

	logger, err := newLogger(cfg.LogBackend)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		authService: services.NewAuthService(db, rm, cfg, logger),
	}, nil
}

func newLogger(backend string) (logging.Logger, error) {
	switch backend {
	case "", "slog":
		return logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil))), nil
	case "zap":
		zl, err := zap.NewProduction()
		if err != nil {
			return nil, err
		}
		return logging.NewZapLogger(zl), nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}

// AuthService returns the operation surface for the delivery layer.
func (app *App) AuthService() *services.AuthService {
	return app.authService
}

// Run blocks until the context is cancelled or a termination signal
// arrives, keeping the session sweeper going in the meantime.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "starting auth server",
		"sweep_interval", app.config.SessionSweepInterval.String())

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.runSessionSweeper(ctx)
	})

	err := g.Wait()

	app.logger.Info(ctx, "shutting down")
	if cerr := app.db.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// runSessionSweeper periodically deletes physically expired session rows.
// Revocation correctness never depends on it; it only keeps the table from
// growing without bound.
func (app *App) runSessionSweeper(ctx context.Context) error {
	ticker := time.NewTicker(app.config.SessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := app.authService.SweepExpiredSessions(ctx); err != nil {
				app.logger.Error(ctx, "session sweep failed", "error", err)
			}
		}
	}
}

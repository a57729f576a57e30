package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"cwh-todolist/backend/internal/config"
	"cwh-todolist/backend/internal/database"
	"cwh-todolist/backend/internal/logging"
	"cwh-todolist/backend/internal/repositories"
	"cwh-todolist/backend/internal/routes"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	gin.SetMode(ginMode(cfg))

	deps, cleanup, err := buildDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           routes.SetupRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Env, "db_driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildDependencies は DB_DRIVER に応じてストアを用意します。
func buildDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (routes.Dependencies, func(), error) {
	deps := routes.Dependencies{Config: cfg, Logger: logger}

	switch cfg.DBDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		store := repositories.NewMemoryStore()
		deps.Users = store.Users()
		deps.Todos = store.Todos()
		return deps, func() {}, nil

	case config.DriverMySQL:
		db, err := database.Open(ctx, cfg.DSN())
		if err != nil {
			return deps, nil, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return deps, nil, err
		}
		logger.Info("database ready", "host", cfg.DBHost, "name", cfg.DBName)
		deps.DB = db
		deps.Users = repositories.NewUserRepository(db)
		deps.Todos = repositories.NewTodoRepository(db)
		return deps, func() { db.Close() }, nil

	default:
		return deps, nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

func ginMode(cfg *config.Config) string {
	switch {
	case cfg.IsProduction():
		return gin.ReleaseMode
	case cfg.Env == "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

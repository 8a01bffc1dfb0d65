package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-repairs/internal/config"
	"github.com/diewo77/go-repairs/internal/db"
	"github.com/diewo77/go-repairs/internal/logging"
	"github.com/diewo77/go-repairs/internal/notify"
	"github.com/diewo77/go-repairs/internal/policy"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logging.NewLogger(cfg.Log.Level, cfg.App.Dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	dbConn, err := db.Open(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	if *migrateOnlyFlag {
		if err := migrate(cfg, dbConn); err != nil {
			return err
		}
		logger.Info("migrations completed")
		return nil
	}
	if *seedOnlyFlag {
		if err := seed(cfg, dbConn); err != nil {
			return err
		}
		logger.Info("seeding completed")
		return nil
	}

	if cfg.App.Migrations {
		if err := migrate(cfg, dbConn); err != nil {
			return err
		}
		logger.Info("migrations completed")
	}
	if err := seed(cfg, dbConn); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := notify.NewDispatcher(dbConn, policy.NewDBProfileResolver(dbConn), logger, notify.Options{
		Async:     cfg.Notify.Async,
		QueueSize: cfg.Notify.QueueSize,
	})
	dispatcher.Start(ctx)
	defer dispatcher.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      NewApp(dbConn, cfg, dispatcher, logger, nil),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port), zap.Bool("dev", cfg.App.Dev),
			zap.String("db_driver", cfg.Database.Driver), zap.Bool("notify_async", cfg.Notify.Async))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutdown signal received")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error during shutdown", zap.Error(err))
	}
	logger.Info("server stopped gracefully")
	return nil
}

// migrate applies the SQL migrations when a directory is configured and
// falls back to AutoMigrate otherwise.
func migrate(cfg *config.Config, conn *gorm.DB) error {
	if cfg.App.MigrationsDir != "" && !cfg.Database.IsSQLite() {
		if err := db.RunSQLMigrations(cfg.App.MigrationsDir, cfg.Database.URL()); err != nil {
			return fmt.Errorf("sql migrations: %w", err)
		}
		return nil
	}
	if err := db.Migrate(conn); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func seed(cfg *config.Config, conn *gorm.DB) error {
	if err := db.Seed(conn, db.SeedOptions{
		AdminEmail:    cfg.Auth.AdminEmail,
		AdminPassword: cfg.Auth.AdminPassword,
	}); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/zhouzirui/unlonely/backend/internal/config"
	"github.com/zhouzirui/unlonely/backend/internal/logger"
	"github.com/zhouzirui/unlonely/backend/internal/storage"
)

var CLI struct {
	Force   bool          `help:"Apply the schema even in production or to a non-file database."`
	Strict  bool          `help:"Exit non-zero when setup fails instead of leaving the app to fall back to client storage."`
	Timeout time.Duration `help:"How long to wait for the database." default:"10s"`
}

// errSetup is reported by main as a warning unless --strict.
var errSetup = errors.New("database setup failed")

func main() {
	kong.Parse(&CLI,
		kong.Name("dbsetup"),
		kong.Description("Prepare the mood journal database."),
		kong.UsageOnError(),
	)

	if err := godotenv.Load(); err != nil {
		log.Warn("failed to load .env file, using system environment variables", "err", err)
	}

	cfg, err := config.Load()
	if errors.Is(err, config.ErrRemoteRequired) {
		report(log.Default(), fmt.Errorf("%w: %v", errSetup, err), CLI.Strict)
		return
	}
	if err != nil {
		log.Fatal("failed to load configuration", "err", err)
	}

	appLog, closeLog, err := logger.Init(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		log.Fatal("failed to initialise logger", "err", err)
	}
	defer closeLog()

	ctx, cancel := context.WithTimeout(context.Background(), CLI.Timeout)
	defer cancel()

	if err := setup(ctx, os.Stdout, cfg, CLI.Force, appLog); err != nil {
		closeLog()
		report(appLog, err, CLI.Strict)
	}
}

// report exits non-zero only with --strict; otherwise the app falls back at runtime.
func report(logger *log.Logger, err error, strict bool) {
	if strict {
		logger.Error("database setup failed", "err", err)
		os.Exit(1)
	}
	logger.Warn("database setup failed, app will use client-side storage fallback", "err", err)
}

// setup migrates local SQLite databases in development, or any database with
// force, and only checks connectivity otherwise.
func setup(ctx context.Context, out io.Writer, cfg *config.Config, force bool, logger *log.Logger) error {
	dsn := cfg.Persistence.DatabaseURL
	if dsn == "" {
		fmt.Fprintln(out, "No DATABASE_URL configured, skipping database setup")
		return nil
	}

	backend, err := storage.NewRemoteBackend(dsn, cfg.Persistence.Driver)
	if err != nil {
		return fmt.Errorf("%w: %v", errSetup, err)
	}
	defer backend.Close()

	local := backend.Driver() != storage.DriverPostgres
	if force || (!cfg.IsProduction() && local) {
		logger.Info("applying schema", "driver", backend.Driver())
		if err := backend.Migrate(ctx); err != nil {
			return fmt.Errorf("%w: %v", errSetup, err)
		}
		fmt.Fprintln(out, "Database schema applied successfully")
		return nil
	}

	fmt.Fprintln(out, "Skipping schema push (production or non-local database), verifying connectivity")
	if err := backend.Verify(ctx); err != nil {
		return fmt.Errorf("%w: %v", errSetup, err)
	}
	fmt.Fprintln(out, "Database reachable")
	return nil
}

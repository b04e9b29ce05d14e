package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/zhouzirui/unlonely/backend/internal/config"
	"github.com/zhouzirui/unlonely/backend/internal/handler"
	"github.com/zhouzirui/unlonely/backend/internal/logger"
	"github.com/zhouzirui/unlonely/backend/internal/model/persona"
	"github.com/zhouzirui/unlonely/backend/internal/service/ai"
	"github.com/zhouzirui/unlonely/backend/internal/service/chat"
	"github.com/zhouzirui/unlonely/backend/internal/service/mood"
	"github.com/zhouzirui/unlonely/backend/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", "err", err)
	}

	appLog, closeLog, err := logger.Init(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File, JSON: cfg.Log.JSON})
	if err != nil {
		log.Fatal("failed to initialise logger", "err", err)
	}
	defer closeLog()

	if envErr != nil {
		appLog.Warn("failed to load .env file, continuing with system environment variables only", "err", envErr)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	companion, ok := personaStore.FindByID(persona.DefaultID)
	if !ok {
		appLog.Fatal("default persona missing", "id", persona.DefaultID)
	}

	provider, err := ai.NewProvider(ctx, cfg.Chat)
	if err != nil {
		appLog.Warn("failed to initialise chat provider, chat requests will fail with configuration_error", "provider", cfg.Chat.Provider, "err", err)
		provider = nil
	} else if provider == nil {
		appLog.Warn("chat provider credentials not configured", "provider", cfg.Chat.Provider)
	} else {
		appLog.Info("chat provider initialised", "provider", provider.Name())
	}
	relay := chat.NewRelay(provider, companion, cfg.Chat.Timeout, appLog)

	backend, err := storage.Open(cfg.Persistence, appLog)
	if err != nil {
		appLog.Fatal("remote persistence required but unusable", "err", err)
	}
	defer backend.Close()

	moodSvc := mood.NewService(backend, mood.Config{
		RequireRemote: cfg.Persistence.RequireRemote,
		Timeout:       cfg.Persistence.Timeout,
	}, appLog)

	router := handler.NewRouter(personaStore, relay, moodSvc, appLog)

	startServer(ctx, cfg.Server, router, appLog)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *log.Logger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("UnLonely backend listening", "addr", addr)
	if err := runServer(ctx, srv); err != nil {
		logger.Error("server error", "err", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

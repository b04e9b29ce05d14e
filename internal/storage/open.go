package storage

import (
	"github.com/charmbracelet/log"

	"github.com/zhouzirui/unlonely/backend/internal/config"
)

// Open selects the backend for the process. An empty DATABASE_URL, or one that
// cannot be parsed, yields an UnavailableBackend so the mood journal falls back
// to client storage; with RequireRemote set, a bad URL is a startup error instead.
func Open(cfg config.PersistenceConfig, logger *log.Logger) (Backend, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, mood entries will use client storage")
		return UnavailableBackend{Reason: "no database configured"}, nil
	}

	backend, err := NewRemoteBackend(cfg.DatabaseURL, cfg.Driver)
	if err != nil {
		if cfg.RequireRemote {
			return nil, err
		}
		logger.Warn("database unusable, mood entries will use client storage", "err", err)
		return UnavailableBackend{Reason: err.Error()}, nil
	}

	logger.Info("mood storage configured", "driver", backend.Driver())
	return backend, nil
}

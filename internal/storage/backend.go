// Package storage holds the server-side persistence backends for mood entries.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/zhouzirui/unlonely/backend/internal/model/mood"
)

// ErrUnavailable is returned by every operation of a backend that cannot reach a database.
var ErrUnavailable = errors.New("database not available")

// Backend persists mood entries. Implementations are chosen once at startup.
type Backend interface {
	// Ping is a cheap liveness check; it must not scan the table.
	Ping(ctx context.Context) error
	// List returns every entry, newest first.
	List(ctx context.Context) ([]mood.Entry, error)
	// Create stores a new entry and returns it with its generated id.
	Create(ctx context.Context, m mood.Mood, note *string, createdAt time.Time) (mood.Entry, error)
	Close() error
}

// UnavailableBackend stands in when no database is configured.
type UnavailableBackend struct {
	Reason string
}

// Ping implements Backend.
func (b UnavailableBackend) Ping(context.Context) error { return b.err() }

// List implements Backend.
func (b UnavailableBackend) List(context.Context) ([]mood.Entry, error) { return nil, b.err() }

// Create implements Backend.
func (b UnavailableBackend) Create(context.Context, mood.Mood, *string, time.Time) (mood.Entry, error) {
	return mood.Entry{}, b.err()
}

// Close implements Backend.
func (b UnavailableBackend) Close() error { return nil }

func (b UnavailableBackend) err() error {
	if b.Reason == "" {
		return ErrUnavailable
	}
	return &unavailableError{reason: b.Reason}
}

type unavailableError struct {
	reason string
}

func (e *unavailableError) Error() string { return ErrUnavailable.Error() + ": " + e.reason }

func (e *unavailableError) Unwrap() error { return ErrUnavailable }

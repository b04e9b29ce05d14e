package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/zhouzirui/unlonely/backend/internal/model/mood"
)

// StorageKey is where the entry array lives in the medium.
const StorageKey = "unlonely_mood_entries"

// ErrNotInteractive is returned for writes when there is no medium to write to.
var ErrNotInteractive = errors.New("no client storage available in this environment")

// StorageError reports a medium that refused a write.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s mood entry: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// LocalCache mirrors mood entries on the client when the server cannot keep them.
// Reads never fail; unreadable data is logged and treated as empty.
type LocalCache struct {
	mu     sync.Mutex
	medium Medium
	now    func() time.Time
	logger *log.Logger
}

// NewLocalCache wraps medium. A nil medium behaves like a non-interactive
// environment.
func NewLocalCache(medium Medium, logger *log.Logger) *LocalCache {
	if logger == nil {
		logger = log.Default()
	}
	return &LocalCache{medium: medium, now: time.Now, logger: logger.WithPrefix("local")}
}

// List returns the stored entries newest first.
func (c *LocalCache) List(context.Context) ([]mood.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.load()
	mood.SortNewestFirst(entries)
	return entries, nil
}

// Count reports how many entries are stored.
func (c *LocalCache) Count(ctx context.Context) int {
	entries, _ := c.List(ctx)
	return len(entries)
}

// Append stores a new entry with a client id. The mood is not validated here.
func (c *LocalCache) Append(_ context.Context, m mood.Mood, note *string) (mood.Entry, error) {
	entry := mood.NewClientEntry(m, note, c.now())
	if err := c.keep(entry); err != nil {
		return mood.Entry{}, err
	}
	return entry, nil
}

// Clear removes every entry. Failures are only logged.
func (c *LocalCache) Clear(context.Context) error {
	if c.medium == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.medium.Remove(StorageKey); err != nil {
		c.logger.Error("failed to clear mood entries", "err", err)
	}
	return nil
}

// keep stores entry ahead of the existing ones, as-is.
func (c *LocalCache) keep(entry mood.Entry) error {
	if c.medium == nil {
		return ErrNotInteractive
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entries := append([]mood.Entry{entry}, c.load()...)
	data, err := json.Marshal(entries)
	if err != nil {
		return &StorageError{Op: "encode", Err: err}
	}
	if err := c.medium.Set(StorageKey, data); err != nil {
		c.logger.Error("failed to save mood entry", "err", err)
		return &StorageError{Op: "save", Err: err}
	}
	return nil
}

// load must be called with mu held.
func (c *LocalCache) load() []mood.Entry {
	entries := []mood.Entry{}
	if c.medium == nil {
		return entries
	}

	data, ok, err := c.medium.Get(StorageKey)
	if err != nil {
		c.logger.Error("failed to read mood entries", "err", err)
		return entries
	}
	if !ok || len(data) == 0 {
		return entries
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Error("stored mood entries are corrupt, ignoring them", "err", err)
		return []mood.Entry{}
	}
	if entries == nil {
		entries = []mood.Entry{}
	}
	return entries
}

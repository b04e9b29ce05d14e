package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/unlonely/backend/internal/model/mood"
)

// RemoteBackend stores entries in PostgreSQL or SQLite through database/sql.
// created_at is kept as unix microseconds so ordering is identical on every driver.
type RemoteBackend struct {
	db      *sql.DB
	dialect dialect

	mu       sync.Mutex
	migrated bool
}

// NewRemoteBackend opens the database lazily; no connection is made until the first Ping.
func NewRemoteBackend(dsn, driverOverride string) (*RemoteBackend, error) {
	driver, err := DetectDriver(dsn, driverOverride)
	if err != nil {
		return nil, err
	}

	db, err := openDB(driver, dsn)
	if err != nil {
		return nil, err
	}

	return &RemoteBackend{db: db, dialect: dialect{driver: driver}}, nil
}

// Driver returns the database/sql driver in use.
func (b *RemoteBackend) Driver() string {
	return b.dialect.driver
}

// Ping checks connectivity and creates the schema only when the table is missing.
func (b *RemoteBackend) Ping(ctx context.Context) error {
	if err := b.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return b.ensureSchema(ctx)
}

// Verify checks connectivity without touching the schema.
func (b *RemoteBackend) Verify(ctx context.Context) error {
	if err := b.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Migrate applies the schema unconditionally.
func (b *RemoteBackend) Migrate(ctx context.Context) error {
	for _, stmt := range b.schema() {
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, stmt)
		}
	}
	return nil
}

func (b *RemoteBackend) ensureSchema(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.migrated {
		return nil
	}
	// An existing table is used as-is, so a role without CREATE privilege can still serve.
	if _, err := b.db.ExecContext(ctx, `SELECT 1 FROM mood_entries WHERE 1 = 0`); err == nil {
		b.migrated = true
		return nil
	}
	if err := b.Migrate(ctx); err != nil {
		return err
	}
	b.migrated = true
	return nil
}

func (b *RemoteBackend) schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS mood_entries (
			id TEXT PRIMARY KEY,
			mood TEXT NOT NULL CHECK (mood IN ('Happy', 'Meh', 'Sad')),
			note TEXT,
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_mood_entries_created ON mood_entries(created_at)`,
	}
}

// List implements Backend.
func (b *RemoteBackend) List(ctx context.Context) ([]mood.Entry, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT id, mood, note, created_at FROM mood_entries ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query mood entries: %w", err)
	}
	defer rows.Close()

	entries := make([]mood.Entry, 0)
	for rows.Next() {
		var (
			entry     mood.Entry
			rawMood   string
			note      sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&entry.ID, &rawMood, &note, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan mood entry: %w", err)
		}
		entry.Mood = mood.Mood(rawMood)
		if note.Valid {
			n := note.String
			entry.Note = &n
		}
		entry.CreatedAt = time.UnixMicro(createdAt).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mood entries: %w", err)
	}
	return entries, nil
}

// Create implements Backend. createdAt is truncated to microseconds.
func (b *RemoteBackend) Create(ctx context.Context, m mood.Mood, note *string, createdAt time.Time) (mood.Entry, error) {
	entry := mood.Entry{
		ID:        uuid.NewString(),
		Mood:      m,
		Note:      mood.NormalizeNote(note),
		CreatedAt: createdAt.UTC().Truncate(time.Microsecond),
	}

	var noteArg sql.NullString
	if entry.Note != nil {
		noteArg = sql.NullString{String: *entry.Note, Valid: true}
	}

	placeholders := make([]string, 4)
	for i := range placeholders {
		placeholders[i] = b.dialect.placeholder(i + 1)
	}
	query := `INSERT INTO mood_entries (id, mood, note, created_at) VALUES (` + strings.Join(placeholders, ", ") + `)`

	if _, err := b.db.ExecContext(ctx, query, entry.ID, string(entry.Mood), noteArg, entry.CreatedAt.UnixMicro()); err != nil {
		return mood.Entry{}, fmt.Errorf("failed to insert mood entry: %w", err)
	}
	return entry, nil
}

// Close implements Backend.
func (b *RemoteBackend) Close() error {
	return b.db.Close()
}

package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/unlonely/backend/internal/config"
	"github.com/zhouzirui/unlonely/backend/internal/logger"
	"github.com/zhouzirui/unlonely/backend/internal/model/mood"
)

func newTestBackend(t *testing.T) *RemoteBackend {
	t.Helper()
	backend, err := NewRemoteBackend(":memory:", "")
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	require.NoError(t, backend.Ping(context.Background()))
	return backend
}

func strPtr(s string) *string { return &s }

func TestRemoteBackendCreateAndList(t *testing.T) {
	ctx := context.Background()
	backend := newTestBackend(t)
	assert.Equal(t, DriverSQLite, backend.Driver())

	base := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)
	first, err := backend.Create(ctx, mood.Happy, strPtr("good day"), base)
	require.NoError(t, err)
	second, err := backend.Create(ctx, mood.Sad, nil, base.Add(time.Hour))
	require.NoError(t, err)
	third, err := backend.Create(ctx, mood.Meh, strPtr(""), base.Add(30*time.Minute))
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.False(t, mood.IsClientID(first.ID))
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, base.Truncate(time.Microsecond), first.CreatedAt)
	assert.Nil(t, third.Note, "empty note stored as null")

	entries, err := backend.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{second.ID, third.ID, first.ID}, []string{entries[0].ID, entries[1].ID, entries[2].ID})

	got := entries[2]
	assert.Equal(t, mood.Happy, got.Mood)
	require.NotNil(t, got.Note)
	assert.Equal(t, "good day", *got.Note)
	assert.True(t, got.CreatedAt.Equal(first.CreatedAt))
	assert.Nil(t, entries[0].Note)
}

func TestRemoteBackendListEmpty(t *testing.T) {
	entries, err := newTestBackend(t).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestRemoteBackendRejectsUnknownMood(t *testing.T) {
	_, err := newTestBackend(t).Create(context.Background(), mood.Mood("Angry"), nil, time.Now())
	assert.Error(t, err)
}

func TestRemoteBackendPingAfterClose(t *testing.T) {
	backend, err := NewRemoteBackend(":memory:", "")
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	err = backend.Ping(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestUnavailableBackend(t *testing.T) {
	ctx := context.Background()
	backend := UnavailableBackend{Reason: "no database configured"}

	assert.ErrorIs(t, backend.Ping(ctx), ErrUnavailable)
	_, err := backend.List(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = backend.Create(ctx, mood.Happy, nil, time.Now())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NoError(t, backend.Close())
	assert.True(t, errors.Is(UnavailableBackend{}.Ping(ctx), ErrUnavailable))
}

func TestDetectDriver(t *testing.T) {
	cases := []struct {
		dsn, override, want string
	}{
		{"postgres://u@localhost:5432/unlonely", "", DriverPostgres},
		{"postgresql://u@db/unlonely?sslmode=disable", "", DriverPostgres},
		{"host=localhost dbname=unlonely sslmode=disable", "", DriverPostgres},
		{"file:./dev.db", "", DriverSQLite},
		{":memory:", "", DriverSQLite},
		{"/var/lib/unlonely/mood.sqlite", "", DriverSQLite},
		{"file:./dev.db", "sqlite3", DriverSQLiteCgo},
		{"anything", "postgresql", DriverPostgres},
	}
	for _, tc := range cases {
		got, err := DetectDriver(tc.dsn, tc.override)
		require.NoError(t, err, tc.dsn)
		assert.Equal(t, tc.want, got, tc.dsn)
	}

	_, err := DetectDriver("https://accelerate.example/?api_key=x", "")
	assert.Error(t, err)
	_, err = DetectDriver("file:./dev.db", "mysql")
	assert.Error(t, err)
}

func TestOpenSelectsBackend(t *testing.T) {
	log := logger.Discard()

	backend, err := Open(config.PersistenceConfig{}, log)
	require.NoError(t, err)
	assert.IsType(t, UnavailableBackend{}, backend)

	backend, err = Open(config.PersistenceConfig{DatabaseURL: "https://accelerate.example"}, log)
	require.NoError(t, err)
	assert.IsType(t, UnavailableBackend{}, backend)

	_, err = Open(config.PersistenceConfig{DatabaseURL: "https://accelerate.example", RequireRemote: true}, log)
	assert.Error(t, err)

	backend, err = Open(config.PersistenceConfig{DatabaseURL: ":memory:"}, log)
	require.NoError(t, err)
	defer backend.Close()
	assert.IsType(t, &RemoteBackend{}, backend)
}

func TestRemoteBackendVerifyLeavesSchemaAlone(t *testing.T) {
	ctx := context.Background()
	backend, err := NewRemoteBackend(":memory:", "")
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	require.NoError(t, backend.Verify(ctx))
	_, err = backend.List(ctx)
	assert.Error(t, err, "verify must not create the table")

	require.NoError(t, backend.Migrate(ctx))
	entries, err := backend.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRemoteBackendPingUsesExistingTable(t *testing.T) {
	ctx := context.Background()
	backend, err := NewRemoteBackend(":memory:", "")
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	_, err = backend.db.ExecContext(ctx, `CREATE TABLE mood_entries (
		id TEXT PRIMARY KEY,
		mood TEXT NOT NULL,
		note TEXT,
		created_at BIGINT NOT NULL
	)`)
	require.NoError(t, err)

	require.NoError(t, backend.Ping(ctx))

	var indexes int
	require.NoError(t, backend.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_mood_entries_created'`).Scan(&indexes))
	assert.Zero(t, indexes, "no DDL should run against an existing table")

	_, err = backend.Create(ctx, mood.Happy, nil, time.Now())
	require.NoError(t, err)
}

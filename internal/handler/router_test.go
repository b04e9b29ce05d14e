package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/unlonely/backend/internal/logger"
	"github.com/zhouzirui/unlonely/backend/internal/model/persona"
	chatService "github.com/zhouzirui/unlonely/backend/internal/service/chat"
	moodService "github.com/zhouzirui/unlonely/backend/internal/service/mood"
	"github.com/zhouzirui/unlonely/backend/internal/storage"
)

func newTestRouter(t *testing.T, backend storage.Backend) http.Handler {
	t.Helper()
	personas := persona.NewMemoryStore(persona.Seed())
	relay := chatService.NewRelay(nil, persona.Seed()[0], time.Second, logger.Discard())
	moods := moodService.NewService(backend, moodService.Config{Timeout: time.Second}, logger.Discard())
	return NewRouter(personas, relay, moods, logger.Discard())
}

func getHealth(t *testing.T, r http.Handler) map[string]string {
	t.Helper()
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body
}

func TestHealthReportsDependencies(t *testing.T) {
	backend, err := storage.NewRemoteBackend(":memory:", "")
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	body := getHealth(t, newTestRouter(t, backend))
	assert.Equal(t, map[string]string{"status": "ok", "database": "available", "chat": "unconfigured"}, body)
}

func TestHealthWithoutDatabase(t *testing.T) {
	body := getHealth(t, newTestRouter(t, storage.UnavailableBackend{Reason: "none"}))
	assert.Equal(t, "unavailable", body["database"])
	assert.Equal(t, "ok", body["status"])
}

func TestRoutesMountedUnderAPI(t *testing.T) {
	r := newTestRouter(t, storage.UnavailableBackend{Reason: "none"})

	for _, path := range []string{"/api/persona", "/api/personas", "/api/mood"} {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, resp.Code, path)
	}

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/mood", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

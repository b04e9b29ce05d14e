package persona

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/unlonely/backend/internal/model/persona"
)

func setupRouter(items []persona.Persona) *chi.Mux {
	r := chi.NewRouter()
	New(persona.NewMemoryStore(items)).RegisterRoutes(r)
	return r
}

func TestDefaultPersonaHidesInstruction(t *testing.T) {
	r := setupRouter(persona.Seed())

	req := httptest.NewRequest(http.MethodGet, "/persona", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "Key guidelines") {
		t.Fatal("system prompt leaked through the persona endpoint")
	}

	var got persona.Persona
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != persona.DefaultID || got.Name != "UnLonely" {
		t.Fatalf("unexpected persona: %+v", got)
	}
}

func TestDefaultPersonaMissing(t *testing.T) {
	r := setupRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/persona", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestListPersonas(t *testing.T) {
	r := setupRouter(persona.Seed())

	req := httptest.NewRequest(http.MethodGet, "/personas", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var got []persona.Persona
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one persona, got %d", len(got))
	}
}

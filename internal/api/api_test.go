package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/corretora/internal/api"
	"github.com/JaimeStill/corretora/internal/config"
	"github.com/JaimeStill/corretora/internal/infrastructure"
)

func newModule(t *testing.T) *api.Module {
	t.Helper()

	cfg := &config.Config{}
	cfg.Database.Name = "corretora"
	cfg.Database.User = "corretora"
	cfg.Storage.BasePath = t.TempDir()
	cfg.Auth.Secret = strings.Repeat("s", 32)
	cfg.API.CORS.Enabled = true
	cfg.API.CORS.Origins = []string{"http://localhost:5173"}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("infrastructure.New: %v", err)
	}

	return api.NewModule(cfg, infra)
}

func TestHealthz(t *testing.T) {
	h := newModule(t).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("body = %q, want OK", rec.Body.String())
	}
}

func TestReadyzBeforeStartup(t *testing.T) {
	h := newModule(t).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newModule(t).Handler()

	paths := []string{
		"/api/seguro_incendio",
		"/api/imobiliarias",
		"/api/notificacoes/events",
		"/api/anotacoes",
		"/api/cep/01001000",
	}

	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestLoginIsPublic(t *testing.T) {
	h := newModule(t).Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestTrailingSlashRedirects(t *testing.T) {
	h := newModule(t).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cep/01001000/?x=1", nil))

	if rec.Code != http.StatusMovedPermanently {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMovedPermanently)
	}
	if got := rec.Header().Get("Location"); got != "/api/cep/01001000?x=1" {
		t.Errorf("Location = %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newModule(t).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/seguro_incendio", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

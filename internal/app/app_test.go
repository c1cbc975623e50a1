package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/microlearn-backend/internal/platform/logger"
	"github.com/yungbote/microlearn-backend/internal/store"
)

// clearCredentialEnv pins the test to the degraded wiring path regardless of
// what the host environment carries.
func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY",
		"GOOGLE_APPLICATION_CREDENTIALS",
		"GOOGLE_APPLICATION_CREDENTIALS_JSON",
		"OTEL_ENABLED",
		"PORT",
		"APP_ENV",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearCredentialEnv(t)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	cfg := LoadConfig(log)
	if cfg.Port != "8080" {
		t.Fatalf("port: got=%q want=%q", cfg.Port, "8080")
	}
	if cfg.Environment != "development" {
		t.Fatalf("environment: got=%q want=%q", cfg.Environment, "development")
	}
	if cfg.Version != "2.0.0" {
		t.Fatalf("version: got=%q want=%q", cfg.Version, "2.0.0")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "staging")

	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	cfg := LoadConfig(log)
	if cfg.Port != "9090" || cfg.Environment != "staging" {
		t.Fatalf("config: got=%+v", cfg)
	}
}

func TestWireServicesWithoutClients(t *testing.T) {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	svcs, err := wireServices(log, Clients{}, store.NewSessionStore(log))
	if err != nil {
		t.Fatalf("wireServices: %v", err)
	}
	if svcs.Transcode == nil || svcs.Synthesis == nil || svcs.Progress == nil ||
		svcs.Reshape == nil || svcs.Responder == nil {
		t.Fatalf("wireServices left a nil service: %+v", svcs)
	}
}

func TestNewAppBootsWithoutCredentials(t *testing.T) {
	clearCredentialEnv(t)
	gin.SetMode(gin.TestMode)

	a, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if a.Router == nil {
		t.Fatalf("router not wired")
	}
	if a.Clients.Openai != nil || a.Clients.GcpSpeech != nil || a.Clients.GcpVision != nil {
		t.Fatalf("expected all clients disabled, got %+v", a.Clients)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("health status: got=%d want=%d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `"healthy"`) {
		t.Fatalf("health body: got=%s", w.Body.String())
	}
}

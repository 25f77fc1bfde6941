package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yaguaretech/builder/config"
)

func testConfig(t *testing.T, store string) *Config {
	t.Helper()
	app := &config.Config{
		Env:          "development",
		DatabasePath: filepath.Join(t.TempDir(), "builder.sqlite"),
		FrontendDir:  t.TempDir(),
		SessionStore: store,
		SessionTTL:   time.Hour,
		Generator:    "mock",
		TreeBaseline: "default",
	}
	return NewConfig(app)
}

func TestNew_WiresComponents(t *testing.T) {
	for _, store := range []string{SessionStoreMemory, SessionStoreSQLite} {
		t.Run(store, func(t *testing.T) {
			s, err := New(testConfig(t, store))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			defer s.Shutdown(context.Background())

			if s.Workspace() == nil || s.Sessions() == nil || s.Exchanger() == nil {
				t.Fatal("component missing")
			}
			if s.Workspace().Generator() != "mock" {
				t.Errorf("generator = %s", s.Workspace().Generator())
			}
			if got := s.Exchanger().Name(); got != "stub" {
				t.Errorf("exchanger = %s", got)
			}
		})
	}
}

func TestNew_RejectsUnknownSettings(t *testing.T) {
	cfg := testConfig(t, "redis")
	if _, err := New(cfg); err == nil {
		t.Error("expected error for unknown session store")
	}

	cfg = testConfig(t, SessionStoreMemory)
	cfg.TreeBaseline = "angular"
	if _, err := New(cfg); err == nil {
		t.Error("expected error for unknown baseline")
	}
}

func TestServeFrontend_SPAFallback(t *testing.T) {
	cfg := testConfig(t, SessionStoreMemory)
	if err := os.WriteFile(filepath.Join(cfg.FrontendDir, "index.html"), []byte("<html>app</html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Shutdown(context.Background())
	s.ServeFrontend()

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/github/callback", nil))
	if w.Code != http.StatusOK {
		t.Errorf("SPA route status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown API route status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/assets/../../etc/passwd", nil))
	if w.Code == http.StatusOK {
		t.Error("path traversal served a file")
	}
}

func TestRunSessionPruner_StopsOnCancel(t *testing.T) {
	s, err := New(testConfig(t, SessionStoreSQLite))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.RunSessionPruner(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("RunSessionPruner: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pruner did not stop")
	}
}

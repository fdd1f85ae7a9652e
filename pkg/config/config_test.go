package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Store.Backend != BackendMemory {
		t.Errorf("backend = %q", cfg.Store.Backend)
	}
	if cfg.Server.Listen != "localhost:8080" {
		t.Errorf("listen = %q", cfg.Server.Listen)
	}
	if cfg.Telemetry.ServiceName != "pagedata" {
		t.Errorf("service name = %q", cfg.Telemetry.ServiceName)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagedata.yaml")
	content := `
store:
  backend: sqlite
  sqlite:
    path: /tmp/pagedata.db
    max_open_conns: 4
models:
  - display.yaml
server:
  listen: ":9000"
  read_timeout: 3s
telemetry:
  logging:
    level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Store.Backend != BackendSQLite || cfg.Store.SQLite.Path != "/tmp/pagedata.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Store.SQLite.MaxOpenConns != 4 {
		t.Errorf("max open conns = %d", cfg.Store.SQLite.MaxOpenConns)
	}
	if cfg.Server.Listen != ":9000" || cfg.Server.ReadTimeout != 3*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	// Untouched defaults survive.
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("shutdown timeout = %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Telemetry.Logging.Level != "debug" || cfg.Telemetry.Logging.Format != "console" {
		t.Errorf("logging = %+v", cfg.Telemetry.Logging)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{"unknown backend", "store:\n  backend: postgres\n", "Backend"},
		{"sqlite without path", "store:\n  backend: sqlite\n  sqlite:\n    path: \"\"\n", "Path"},
		{"bad listen address", "server:\n  listen: nowhere\n", "Listen"},
		{"empty model entry", "models: [\"\"]\n", "Models"},
		{"watch with sqlite", "store:\n  backend: sqlite\nmodels: [a.yaml]\nwatch: true\n", "watch"},
		{"watch without models", "watch: true\n", "model file"},
		{"unknown field", "stor: {}\n", "field stor not found"},
		{"bad log level", "telemetry:\n  logging:\n    level: loud\n", "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Parse([]byte(tt.yaml), Default())
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestParseSQLitePathOnlyRequiredForSQLite(t *testing.T) {
	cfg := Default()
	if err := Parse([]byte("store:\n  sqlite:\n    path: \"\"\n"), cfg); err != nil {
		t.Errorf("memory backend should not need a path: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

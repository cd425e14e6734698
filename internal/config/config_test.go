package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv blanks every key Load reads, so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	for _, key := range []string{"PORT", "DB_PATH", "JWT_SECRET", "TOKEN_TTL", "LOG_LEVEL", "CORS_ORIGIN"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.Addr())
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("expected 24h TTL, got %v", cfg.TokenTTL)
	}
	if cfg.DBPath != "./data/flatsby.db" || cfg.LogLevel != "info" || cfg.CORSOrigin != "*" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")

	path := filepath.Join(t.TempDir(), ".env")
	content := "PORT=7000\nJWT_SECRET=from-file\nTOKEN_TTL=90m\nLOG_LEVEL=debug\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("environment should win over file, got port %s", cfg.Port)
	}
	if cfg.JWTSecret != "from-file" || cfg.LogLevel != "debug" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.TokenTTL != 90*time.Minute {
		t.Errorf("expected 90m TTL, got %v", cfg.TokenTTL)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{}},
		{"bad ttl", map[string]string{"JWT_SECRET": "s", "TOKEN_TTL": "soon"}},
		{"negative ttl", map[string]string{"JWT_SECRET": "s", "TOKEN_TTL": "-1h"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

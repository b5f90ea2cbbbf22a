package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/matzehuels/cpanmeta/pkg/errors"
	"github.com/matzehuels/cpanmeta/pkg/navsync"
	"github.com/matzehuels/cpanmeta/pkg/search"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("LoadConfig = %+v, want defaults", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
base_url = "http://localhost:3000"
api_version = 1
cache_ttl = "10m"
policy = "last-resolved"
default_match_mode = "exact"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BaseURL != "http://localhost:3000" || cfg.APIVersion != 1 {
		t.Errorf("host settings = %q v%d", cfg.BaseURL, cfg.APIVersion)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Errorf("CacheTTL = %v, want 10m", cfg.CacheTTL)
	}
	if cfg.ResponsePolicy() != navsync.LastResolvedWins {
		t.Errorf("ResponsePolicy = %v", cfg.ResponsePolicy())
	}
	if cfg.MatchMode() != search.Exact {
		t.Errorf("MatchMode = %v", cfg.MatchMode())
	}
	// Unset keys keep their defaults.
	if cfg.Timeout != DefaultConfig().Timeout {
		t.Errorf("Timeout = %v, want default", cfg.Timeout)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code apperrors.Code
	}{
		{"syntax", `base_url = `, apperrors.ErrCodeInvalidConfig},
		{"unknown key", `colour = "blue"`, apperrors.ErrCodeInvalidConfig},
		{"bad version", `api_version = 3`, apperrors.ErrCodeInvalidConfig},
		{"bad url", `base_url = "ftp://cpan.org"`, apperrors.ErrCodeInvalidConfig},
		{"bad policy", `policy = "first-wins"`, apperrors.ErrCodeInvalidConfig},
		{"bad mode", `default_match_mode = "fuzzy"`, apperrors.ErrCodeInvalidMatchMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperrors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig of written file: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("round trip = %+v, want defaults", cfg)
	}

	if err := writeDefaultConfig(path); !errors.Is(err, fs.ErrExist) {
		t.Errorf("second write error = %v, want ErrExist", err)
	}
}

func TestClientFlagsApply(t *testing.T) {
	cfg := DefaultConfig()
	f := clientFlags{baseURL: "http://mirror.local", apiVersion: 1}
	if err := f.apply(&cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.BaseURL != "http://mirror.local" || cfg.APIVersion != 1 {
		t.Errorf("apply left %q v%d", cfg.BaseURL, cfg.APIVersion)
	}

	bad := clientFlags{apiVersion: 7}
	cfg = DefaultConfig()
	if err := bad.apply(&cfg); err == nil {
		t.Error("apply should reject API version 7")
	}
}

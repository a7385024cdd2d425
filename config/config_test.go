package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestExportAndLoad(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configPath := filepath.Join(tempDir, "config.hcl")

	// Test Export
	defaultCfg := DefaultConfig()
	defaultCfg.BatchSize = 500
	defaultCfg.Port = 9090
	defaultCfg.KeepaliveURL = "https://example.com/health"
	err = Export(configPath, defaultCfg)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	// Test Load
	loadedCfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loadedCfg.BatchSize != 500 {
		t.Errorf("expected BatchSize 500, got %d", loadedCfg.BatchSize)
	}
	if loadedCfg.Port != 9090 {
		t.Errorf("expected Port 9090, got %d", loadedCfg.Port)
	}
	if loadedCfg.KeepaliveURL != "https://example.com/health" {
		t.Errorf("unexpected KeepaliveURL %q", loadedCfg.KeepaliveURL)
	}
	if err := loadedCfg.Validate(); err != nil {
		t.Errorf("exported defaults should validate: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test_empty")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configPath := filepath.Join(tempDir, "empty.hcl")
	err = os.WriteFile(configPath, []byte(""), 0644)
	if err != nil {
		t.Fatalf("failed to write empty config: %v", err)
	}

	loadedCfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loadedCfg.BatchSize != 1000 {
		t.Errorf("expected default BatchSize 1000, got %d", loadedCfg.BatchSize)
	}
	if loadedCfg.Port != 8080 {
		t.Errorf("expected default Port 8080, got %d", loadedCfg.Port)
	}
}

func TestLoadRejectsUnknownAttribute(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.hcl")
	if err := os.WriteFile(configPath, []byte(`colour = "blue"`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(configPath); err == nil {
		t.Fatal("expected an error for an unknown attribute")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PORT":                  "3000",
		"TABCONV_HOST":          "127.0.0.1",
		"TABCONV_TEMP_DIR":      "/var/tmp/tabconv",
		"LOG_LEVEL":             "debug",
		"LOG_FORMAT":            "",
		"TABCONV_KEEPALIVE_URL": "https://svc.example/health",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:3000" {
		t.Errorf("Addr = %s", cfg.Addr())
	}
	if cfg.TempDir != "/var/tmp/tabconv" || cfg.LogLevel != "debug" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("empty env value should keep default, got %q", cfg.LogFormat)
	}

	env["PORT"] = "eighty"
	if err := DefaultConfig().ApplyEnv(lookup); err == nil {
		t.Error("expected an error for a non-numeric PORT")
	}
}

func TestValidateReportsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 0
	cfg.ShutdownTimeout = "soon"
	cfg.LogFormat = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"port", "shutdown_timeout", "log_format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %s: %v", want, err)
		}
	}
}

func TestTimeouts(t *testing.T) {
	cfg := DefaultConfig()
	got := cfg.Timeouts()
	if got.Read != 15*time.Second || got.Request != time.Minute || got.Shutdown != 30*time.Second {
		t.Errorf("unexpected timeouts %+v", got)
	}
}

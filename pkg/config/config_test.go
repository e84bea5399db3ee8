package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dashboard.PollInterval.Duration != 5*time.Second {
		t.Errorf("default poll interval = %v, want 5s", cfg.Dashboard.PollInterval.Duration)
	}
	if cfg.Server.Listen == "" {
		t.Error("default listen address should not be empty")
	}
	if cfg.Reader.Mode != "sim" {
		t.Errorf("default reader mode = %q, want sim", cfg.Reader.Mode)
	}
	if cfg.Store.Retention.Duration <= 0 {
		t.Error("default retention should be positive")
	}
}

func TestLoadFromTOMLFile(t *testing.T) {
	path := writeTempConfig(t, "config.toml", `
[dashboard]
server_url = "http://airbox:9999"
poll_interval = "2s"

[reader]
mode = "sds011"
device = "/dev/ttyUSB1"
warmup = "30s"
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile returned error: %v", err)
	}

	if cfg.Dashboard.ServerURL != "http://airbox:9999" {
		t.Errorf("server_url = %q, want http://airbox:9999", cfg.Dashboard.ServerURL)
	}
	if cfg.Dashboard.PollInterval.Duration != 2*time.Second {
		t.Errorf("poll_interval = %v, want 2s", cfg.Dashboard.PollInterval.Duration)
	}
	if cfg.Reader.Device != "/dev/ttyUSB1" {
		t.Errorf("device = %q, want /dev/ttyUSB1", cfg.Reader.Device)
	}
	if cfg.Reader.Warmup.Duration != 30*time.Second {
		t.Errorf("warmup = %v, want 30s", cfg.Reader.Warmup.Duration)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.Listen != ":8787" {
		t.Errorf("listen = %q, want default :8787", cfg.Server.Listen)
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := writeTempConfig(t, "config.yaml", `
dashboard:
  server_url: http://airbox:9999
  poll_interval: 10s
store:
  path: /var/lib/aqimon/readings.db
  retention: 48h
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile returned error: %v", err)
	}

	if cfg.Dashboard.PollInterval.Duration != 10*time.Second {
		t.Errorf("poll_interval = %v, want 10s", cfg.Dashboard.PollInterval.Duration)
	}
	if cfg.Store.Path != "/var/lib/aqimon/readings.db" {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
	if cfg.Store.Retention.Duration != 48*time.Hour {
		t.Errorf("retention = %v, want 48h", cfg.Store.Retention.Duration)
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := writeTempConfig(t, "config.ini", "[dashboard]\n")

	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for unsupported config extension")
	}
}

func TestLoadMissingExplicitPathFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("expected error for an explicit path that does not exist")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AQIMON_SERVER_URL", "http://override:1234")
	t.Setenv("AQIMON_LOG_LEVEL", "debug")

	path := writeTempConfig(t, "config.toml", `
[dashboard]
server_url = "http://from-file:1"
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Dashboard.ServerURL != "http://override:1234" {
		t.Errorf("env override lost: server_url = %q", cfg.Dashboard.ServerURL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("env override lost: log level = %q", cfg.Log.Level)
	}
}

func TestDurationParsing(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("90s")); err != nil {
		t.Fatal(err)
	}
	if d.Duration != 90*time.Second {
		t.Errorf("parsed duration = %v, want 90s", d.Duration)
	}

	if err := d.UnmarshalText([]byte("-5s")); err == nil {
		t.Error("negative duration should be rejected")
	}
	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Error("non-duration string should be rejected")
	}
}

func TestDurationEmptyStringIsZero(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText(nil); err != nil {
		t.Fatal(err)
	}
	if d.Duration != 0 {
		t.Errorf("empty duration = %v, want 0", d.Duration)
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from path, or from the standard locations when
// path is empty. Search order:
//  1. ./aqimon.toml, ./aqimon.yaml
//  2. $XDG_CONFIG_HOME/aqimon/config.toml (or ~/.config/aqimon/config.toml)
//  3. /etc/aqimon/config.toml
//
// If no file exists, returns DefaultConfig() with environment overrides
// applied.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFromFile(path)
	}
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path. The decoder is
// chosen by extension: .toml, .yaml, or .yml.
func LoadFromFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config extension %q (want .toml, .yaml, or .yml)", filepath.Ext(path))
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Dashboard: DashboardConfig{
			ServerURL:    "http://localhost:8787",
			PollInterval: Duration{5 * time.Second},
		},
		Server: ServerConfig{
			Listen: ":8787",
		},
		Reader: ReaderConfig{
			Mode:         "sim",
			Device:       "/dev/ttyUSB0",
			PollInterval: Duration{1 * time.Minute},
			Warmup:       Duration{15 * time.Second},
			Samples:      5,
			SampleGap:    Duration{2 * time.Second},
		},
		Store: StoreConfig{
			Path:      "aqimon.db",
			Retention: Duration{7 * 24 * time.Hour},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// applyEnvOverrides checks environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AQIMON_SERVER_URL"); v != "" {
		cfg.Dashboard.ServerURL = v
	}
	if v := os.Getenv("AQIMON_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("AQIMON_DB"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("AQIMON_READER_MODE"); v != "" {
		cfg.Reader.Mode = v
	}
	if v := os.Getenv("AQIMON_READER_DEVICE"); v != "" {
		cfg.Reader.Device = v
	}
	if v := os.Getenv("AQIMON_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// configSearchPaths returns the ordered list of config file paths to try.
func configSearchPaths() []string {
	paths := []string{"aqimon.toml", "aqimon.yaml"}

	home, _ := os.UserHomeDir()
	xdg := xdgConfigHome(home)
	paths = append(paths,
		filepath.Join(xdg, "aqimon", "config.toml"),
		filepath.Join(xdg, "aqimon", "config.yaml"),
	)

	// If XDG_CONFIG_HOME was explicitly set, also try the fallback default.
	defaultXDG := filepath.Join(home, ".config")
	if xdg != defaultXDG {
		paths = append(paths, filepath.Join(defaultXDG, "aqimon", "config.toml"))
	}

	return append(paths, "/etc/aqimon/config.toml")
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"fitlab/internal/platform/config"
)

func noEnv(string) (string, bool) { return "", false }

func TestLoadDefaults(t *testing.T) {
	t.Parallel()
	ws := t.TempDir()
	cfg, err := config.Load(ws, noEnv)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != filepath.Join(ws, ".fitlab", "fitlab.db") {
		t.Fatalf("unexpected db path %s", cfg.DBPath)
	}
	if cfg.Storage.Backend != config.BackendSQLite || cfg.Results.WritePolicy != "optimistic" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Results.Timeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %s", cfg.Results.Timeout)
	}
	if cfg.Percentile.Source != config.PercentileSynthetic {
		t.Fatalf("expected synthetic percentile source, got %s", cfg.Percentile.Source)
	}
}

func TestLoadFileThenDotEnvThenEnvironment(t *testing.T) {
	t.Parallel()
	ws := t.TempDir()
	if err := os.MkdirAll(filepath.Join(ws, ".fitlab"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	yaml := "storage:\n  backend: memory\nresults:\n  write_policy: strict\n  timeout: 2s\nlog:\n  level: debug\n  file: logs/fitlab.log\n"
	if err := os.WriteFile(filepath.Join(ws, ".fitlab", "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(ws, ".env"), []byte("FITLAB_RESULTS_TIMEOUT=3s\nFITLAB_LOG_LEVEL=warn\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	env := func(key string) (string, bool) {
		if key == "FITLAB_LOG_LEVEL" {
			return "error", true
		}
		return "", false
	}

	cfg, err := config.Load(ws, env)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Backend != config.BackendMemory || cfg.Results.WritePolicy != "strict" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Results.Timeout != 3*time.Second {
		t.Fatalf(".env must override file timeout, got %s", cfg.Results.Timeout)
	}
	if cfg.Log.Level != "error" {
		t.Fatalf("environment must win over .env, got %s", cfg.Log.Level)
	}
	if cfg.Log.File != filepath.Join(ws, "logs", "fitlab.log") {
		t.Fatalf("relative log file must resolve against the workspace, got %s", cfg.Log.File)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Parallel()
	cases := map[string]map[string]string{
		"backend":    {"FITLAB_STORAGE_BACKEND": "mongo"},
		"postgres":   {"FITLAB_STORAGE_BACKEND": "postgres"},
		"policy":     {"FITLAB_WRITE_POLICY": "eventual"},
		"timeout":    {"FITLAB_RESULTS_TIMEOUT": "-1s"},
		"badtimeout": {"FITLAB_RESULTS_TIMEOUT": "soon"},
		"plugin":     {"FITLAB_PERCENTILE_SOURCE": "plugin"},
		"seed":       {"FITLAB_PERCENTILE_SEED": "x"},
	}
	for name, vars := range cases {
		vars := vars
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			env := func(key string) (string, bool) {
				v, ok := vars[key]
				return v, ok
			}
			if _, err := config.Load(t.TempDir(), env); err == nil {
				t.Fatalf("expected error for %v", vars)
			}
		})
	}
	if _, err := config.Load("", noEnv); err == nil {
		t.Fatalf("empty workspace must fail")
	}
}

func TestLoadRejectsUnknownYAMLKeys(t *testing.T) {
	t.Parallel()
	ws := t.TempDir()
	if err := os.MkdirAll(filepath.Join(ws, ".fitlab"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(ws, ".fitlab", "config.yaml"), []byte("storage:\n  engine: sqlite\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(ws, noEnv); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

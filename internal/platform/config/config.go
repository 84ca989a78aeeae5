package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	stateDirName = ".fitlab"

	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"

	PercentileSynthetic = "synthetic"
	PercentilePlugin    = "plugin"

	defaultTimeout = 5 * time.Second
)

type Config struct {
	WorkspacePath string `yaml:"-"`
	StateDir      string `yaml:"-"`
	DBPath        string `yaml:"-"`

	Storage    StorageConfig    `yaml:"storage"`
	Results    ResultsConfig    `yaml:"results"`
	Percentile PercentileConfig `yaml:"percentile"`
	Log        LogConfig        `yaml:"log"`
	HTTP       HTTPConfig       `yaml:"http"`
}

type StorageConfig struct {
	Backend   string `yaml:"backend"`
	DSN       string `yaml:"dsn"`
	RedisAddr string `yaml:"redis_addr"`
	RedisKey  string `yaml:"redis_key"`
}

type ResultsConfig struct {
	WritePolicy string        `yaml:"write_policy"`
	Timeout     time.Duration `yaml:"timeout"`
}

type PercentileConfig struct {
	Source string `yaml:"source"`
	Plugin string `yaml:"plugin"`
	Seed   uint64 `yaml:"seed"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

func New(workspacePath string) (Config, error) {
	return Load(workspacePath, os.LookupEnv)
}

// Load resolves configuration in increasing priority: defaults,
// .fitlab/config.yaml, the workspace .env file, then the environment.
func Load(workspacePath string, lookup LookupFunc) (Config, error) {
	if workspacePath == "" {
		return Config{}, fmt.Errorf("workspace path is required")
	}
	stateDir := filepath.Join(workspacePath, stateDirName)
	cfg := Config{
		WorkspacePath: workspacePath,
		StateDir:      stateDir,
		DBPath:        filepath.Join(stateDir, "fitlab.db"),
		Storage:       StorageConfig{Backend: BackendSQLite, RedisAddr: "localhost:6379", RedisKey: "fitlab:results"},
		Results:       ResultsConfig{WritePolicy: "optimistic", Timeout: defaultTimeout},
		Percentile:    PercentileConfig{Source: PercentileSynthetic},
		Log:           LogConfig{Level: "info"},
		HTTP:          HTTPConfig{Addr: ":8080"},
	}
	if err := cfg.readFile(filepath.Join(stateDir, "config.yaml")); err != nil {
		return Config{}, err
	}
	dotenv, err := readDotEnv(filepath.Join(workspacePath, ".env"))
	if err != nil {
		return Config{}, err
	}
	env := func(key string) (string, bool) {
		if lookup != nil {
			if v, ok := lookup(key); ok {
				return v, true
			}
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(env); err != nil {
		return Config{}, err
	}
	if cfg.Log.File != "" && !filepath.IsAbs(cfg.Log.File) {
		cfg.Log.File = filepath.Join(workspacePath, cfg.Log.File)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendMemory:
	case BackendPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the postgres backend")
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("storage.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unsupported storage backend %q", c.Storage.Backend)
	}
	switch c.Results.WritePolicy {
	case "optimistic", "strict":
	default:
		return fmt.Errorf("unsupported write policy %q", c.Results.WritePolicy)
	}
	if c.Results.Timeout <= 0 {
		return fmt.Errorf("results.timeout must be positive")
	}
	switch c.Percentile.Source {
	case PercentileSynthetic:
	case PercentilePlugin:
		if c.Percentile.Plugin == "" {
			return fmt.Errorf("percentile.plugin is required when percentile.source is plugin")
		}
	default:
		return fmt.Errorf("unsupported percentile source %q", c.Percentile.Source)
	}
	return nil
}

func (c *Config) readFile(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(payload))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(env LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := env(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("FITLAB_STORAGE_BACKEND", &c.Storage.Backend)
	str("FITLAB_STORAGE_DSN", &c.Storage.DSN)
	str("FITLAB_REDIS_ADDR", &c.Storage.RedisAddr)
	str("FITLAB_REDIS_KEY", &c.Storage.RedisKey)
	str("FITLAB_WRITE_POLICY", &c.Results.WritePolicy)
	str("FITLAB_PERCENTILE_SOURCE", &c.Percentile.Source)
	str("FITLAB_PERCENTILE_PLUGIN", &c.Percentile.Plugin)
	str("FITLAB_LOG_LEVEL", &c.Log.Level)
	str("FITLAB_LOG_FILE", &c.Log.File)
	str("FITLAB_HTTP_ADDR", &c.HTTP.Addr)

	if v, ok := env("FITLAB_RESULTS_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse FITLAB_RESULTS_TIMEOUT: %w", err)
		}
		c.Results.Timeout = d
	}
	if v, ok := env("FITLAB_PERCENTILE_SEED"); ok && v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse FITLAB_PERCENTILE_SEED: %w", err)
		}
		c.Percentile.Seed = seed
	}
	return nil
}

func readDotEnv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read .env: %w", err)
	}
	return values, nil
}

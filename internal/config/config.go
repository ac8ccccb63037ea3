// Package config loads goaliemetrics settings.
//
// Layers, lowest precedence first:
//  1. defaults (New)
//  2. YAML file, from the path argument or GOALIE_CONFIG
//  3. environment, GOALIE_<KEY> with the key lower-cased (GOALIE_DB_PATH -> db_path)
//
// Command-line flags are applied on top by the cmd package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "GOALIE_"

// Sentinel error kinds for this package.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Config holds every tunable of the CLI.
type Config struct {
	// DBPath is the SQLite event store.
	DBPath string `koanf:"db_path"`
	// CorpusDir is the default corpus for ingest.
	CorpusDir string `koanf:"corpus_dir"`
	// LedgerPath is the JSON ledger file; empty means next to DBPath.
	LedgerPath string `koanf:"ledger_path"`
	// Workers bounds parallel document parsing.
	Workers int `koanf:"workers"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `koanf:"log_level"`

	PeopleURL     string        `koanf:"people_url"`
	LookupTimeout time.Duration `koanf:"lookup_timeout"`
	LookupRetries int           `koanf:"lookup_retries"`
	LookupBackoff time.Duration `koanf:"lookup_backoff"`
	LookupRPM     int           `koanf:"lookup_rpm"`

	// MetricsFile, when set, receives a Prometheus textfile after ingest and correct.
	MetricsFile string `koanf:"metrics_file"`
	// AIModel is the model used by the analyze command.
	AIModel string `koanf:"ai_model"`
}

// New returns a Config with defaults.
func New() *Config {
	return &Config{
		DBPath:        filepath.Join(userHome(), ".goaliemetrics", "goalies.db"),
		CorpusDir:     "data",
		Workers:       runtime.NumCPU(),
		LogLevel:      "info",
		PeopleURL:     "https://statsapi.web.nhl.com/api/v1",
		LookupTimeout: 10 * time.Second,
		LookupRetries: 2,
		LookupBackoff: time.Second,
		LookupRPM:     60,
		AIModel:       "claude-sonnet-4-5",
	}
}

// Load builds a Config from defaults, the YAML file at path (or GOALIE_CONFIG
// when path is empty) and GOALIE_* environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// Flat keys: GOALIE_LOOKUP_RPM -> lookup_rpm, matching the koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	switch {
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	case c.LookupRetries < 0:
		return fmt.Errorf("%w: lookup_retries must not be negative", ErrInvalidConfig)
	case c.LookupRPM < 0:
		return fmt.Errorf("%w: lookup_rpm must not be negative", ErrInvalidConfig)
	case c.LookupTimeout < 0 || c.LookupBackoff < 0:
		return fmt.Errorf("%w: lookup durations must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// Ledger returns the ledger file path, defaulting to ingested.json beside the database.
func (c *Config) Ledger() string {
	if c.LedgerPath != "" {
		return c.LedgerPath
	}
	return filepath.Join(filepath.Dir(c.DBPath), "ingested.json")
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

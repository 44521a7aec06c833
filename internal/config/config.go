package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds everything onair reads from config.toml, after defaults,
// the NHK_API_KEY environment override and path expansion are applied.
type Config struct {
	Area           string
	APIKey         string
	APIBase        string
	Refresh        time.Duration
	RequestTimeout time.Duration
	Workers        int
	QueueSize      int
	MetricsAddr    string
	Log            LogConfig
}

// LogConfig controls the zap logger and its rotating log file.
type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Overrides carries command-line values that win over the file.
// Zero values leave the loaded setting alone.
type Overrides struct {
	Area    string
	APIKey  string
	Refresh time.Duration
}

const (
	// APIKeyEnv names the environment variable that overrides api_key.
	APIKeyEnv = "NHK_API_KEY"

	defaultConfigPath     = "~/.config/onair/config.toml"
	defaultLogFile        = "~/.local/state/onair/onair.log"
	defaultArea           = "400"
	defaultAPIBase        = "https://api.nhk.or.jp"
	defaultRefresh        = 60 * time.Second
	defaultRequestTimeout = 10 * time.Second
	defaultWorkers        = 4
	defaultQueueSize      = 64
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
	defaultLogMaxSizeMB   = 10
	defaultLogMaxBackups  = 3
	defaultLogMaxAgeDays  = 14

	minRefresh = 5 * time.Second
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Area:           defaultArea,
		APIBase:        defaultAPIBase,
		Refresh:        defaultRefresh,
		RequestTimeout: defaultRequestTimeout,
		Workers:        defaultWorkers,
		QueueSize:      defaultQueueSize,
		Log: LogConfig{
			Level:      defaultLogLevel,
			Format:     defaultLogFormat,
			File:       mustExpand(defaultLogFile),
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}

// Load locates and parses the onair config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.applyEnv()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Area                  string `toml:"area"`
		APIKey                string `toml:"api_key"`
		APIBase               string `toml:"api_base"`
		RefreshSeconds        int    `toml:"refresh_seconds"`
		RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
		Workers               int    `toml:"workers"`
		QueueSize             int    `toml:"queue_size"`
		MetricsAddr           string `toml:"metrics_addr"`
		Log                   struct {
			Level      string `toml:"level"`
			Format     string `toml:"format"`
			File       string `toml:"file"`
			MaxSizeMB  int    `toml:"max_size_mb"`
			MaxBackups int    `toml:"max_backups"`
			MaxAgeDays int    `toml:"max_age_days"`
			Compress   bool   `toml:"compress"`
		} `toml:"log"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.Area = orDefault(raw.Area, defaultArea)
	cfg.APIKey = strings.TrimSpace(raw.APIKey)
	cfg.APIBase = orDefault(raw.APIBase, defaultAPIBase)
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)

	if raw.RefreshSeconds > 0 {
		cfg.Refresh = time.Duration(raw.RefreshSeconds) * time.Second
	}
	if raw.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeoutSeconds) * time.Second
	}
	if raw.Workers > 0 {
		cfg.Workers = raw.Workers
	}
	if raw.QueueSize > 0 {
		cfg.QueueSize = raw.QueueSize
	}

	cfg.Log.Level = strings.ToLower(orDefault(raw.Log.Level, defaultLogLevel))
	cfg.Log.Format = strings.ToLower(orDefault(raw.Log.Format, defaultLogFormat))
	if file := strings.TrimSpace(raw.Log.File); file != "" {
		cfg.Log.File = mustExpand(file)
	}
	if raw.Log.MaxSizeMB > 0 {
		cfg.Log.MaxSizeMB = raw.Log.MaxSizeMB
	}
	if raw.Log.MaxBackups > 0 {
		cfg.Log.MaxBackups = raw.Log.MaxBackups
	}
	if raw.Log.MaxAgeDays > 0 {
		cfg.Log.MaxAgeDays = raw.Log.MaxAgeDays
	}
	cfg.Log.Compress = raw.Log.Compress

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Apply copies non-zero overrides onto the config.
func (c *Config) Apply(o Overrides) {
	if area := strings.TrimSpace(o.Area); area != "" {
		c.Area = area
	}
	if key := strings.TrimSpace(o.APIKey); key != "" {
		c.APIKey = key
	}
	if o.Refresh > 0 {
		c.Refresh = o.Refresh
	}
}

// Validate reports settings onair cannot run with.
func (c Config) Validate() error {
	for _, r := range c.Area {
		if r < '0' || r > '9' {
			return fmt.Errorf("area %q must be numeric", c.Area)
		}
	}
	if c.Refresh < minRefresh {
		return fmt.Errorf("refresh interval %s is below the %s minimum", c.Refresh, minRefresh)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("log format %q must be console or json", c.Log.Format)
	}
	return nil
}

// LogDir returns the directory holding the log file.
func (c Config) LogDir() string {
	if strings.TrimSpace(c.Log.File) == "" {
		return filepath.Dir(mustExpand(defaultLogFile))
	}
	return filepath.Dir(c.Log.File)
}

func (c *Config) applyEnv() {
	if key, ok := os.LookupEnv(APIKeyEnv); ok && strings.TrimSpace(key) != "" {
		c.APIKey = strings.TrimSpace(key)
	}
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

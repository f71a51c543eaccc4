package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mention-picker/log"
	"mention-picker/workspace"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gofrs/flock"
)

const (
	ConfigFileName = "config.json"
	// LockFileName is the name of the lock file
	LockFileName = "config.lock"
	// DefaultLockTimeout is the default timeout for acquiring locks
	DefaultLockTimeout = 5 * time.Second
)

// SourcesConfig selects the listings the picker offers.
type SourcesConfig struct {
	Files   bool `json:"files"`
	Symbols bool `json:"symbols"`
	// Changes enables the changes command inside git work trees.
	Changes bool `json:"changes"`
}

// Config is the user configuration read from config.json.
type Config struct {
	// Trigger is the character that opens the picker.
	Trigger string        `json:"trigger"`
	Sources SourcesConfig `json:"sources"`

	QueryDebounceMs   int `json:"query_debounce_ms"`
	LoadingDebounceMs int `json:"loading_debounce_ms"`
	MaxResults        int `json:"max_results"`
	VisibleRows       int `json:"visible_rows"`

	// Exclude holds doublestar globs skipped while indexing the workspace.
	Exclude []string `json:"exclude"`

	LogsEnabled bool   `json:"logs_enabled"`
	LogsDir     string `json:"logs_dir,omitempty"`
	LogMaxSize  int    `json:"log_max_size"`
	LogMaxFiles int    `json:"log_max_files"`
	LogMaxAge   int    `json:"log_max_age"`
	LogCompress bool   `json:"log_compress"`
}

// GetConfigDir returns the path to the application's configuration directory
func GetConfigDir() (string, error) {
	return log.GetConfigDir()
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	logCfg := log.DefaultLogConfig()
	return &Config{
		Trigger: "@",
		Sources: SourcesConfig{
			Files:   true,
			Symbols: true,
			Changes: true,
		},
		QueryDebounceMs:   150,
		LoadingDebounceMs: 100,
		MaxResults:        50,
		VisibleRows:       8,
		Exclude:           append([]string(nil), workspace.DefaultExclude...),
		LogsEnabled:       logCfg.LogsEnabled,
		LogMaxSize:        logCfg.LogMaxSize,
		LogMaxFiles:       logCfg.LogMaxFiles,
		LogMaxAge:         logCfg.LogMaxAge,
		LogCompress:       logCfg.LogCompress,
	}
}

// TriggerRune returns the first rune of Trigger, or '@'.
func (c *Config) TriggerRune() rune {
	for _, r := range c.Trigger {
		return r
	}
	return '@'
}

// QueryDelay is the query debounce as a duration. Zero disables debouncing.
func (c *Config) QueryDelay() time.Duration {
	return delay(c.QueryDebounceMs)
}

// LoadingDelay is the spinner delay as a duration. Zero shows it at once.
func (c *Config) LoadingDelay() time.Duration {
	return delay(c.LoadingDebounceMs)
}

func delay(ms int) time.Duration {
	if ms <= 0 {
		return -1
	}
	return time.Duration(ms) * time.Millisecond
}

// LogConfig returns the logging settings for log.Initialize.
func (c *Config) LogConfig() *log.LogConfig {
	return &log.LogConfig{
		LogsEnabled: c.LogsEnabled,
		LogsDir:     c.LogsDir,
		LogMaxSize:  c.LogMaxSize,
		LogMaxFiles: c.LogMaxFiles,
		LogMaxAge:   c.LogMaxAge,
		LogCompress: c.LogCompress,
	}
}

// Validate checks the values that would otherwise fail later.
func (c *Config) Validate() error {
	if len([]rune(c.Trigger)) != 1 {
		return fmt.Errorf("trigger must be a single character, got %q", c.Trigger)
	}
	if !c.Sources.Files && !c.Sources.Symbols {
		return fmt.Errorf("at least one of the files and symbols sources must be enabled")
	}
	if c.MaxResults < 0 {
		return fmt.Errorf("max_results must not be negative")
	}
	for _, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	return nil
}

// LoadConfig loads the configuration from disk. If it cannot be done, we
// return the default configuration.
func LoadConfig() *Config {
	configDir, err := GetConfigDir()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
		return DefaultConfig()
	}

	cfg, err := LoadConfigFrom(configDir)
	if err != nil {
		log.WarningLog.Printf("failed to load config, using defaults: %v", err)
		return DefaultConfig()
	}
	return cfg
}

// LoadConfigFrom reads config.json in dir under a shared lock. A missing file
// yields the defaults.
func LoadConfigFrom(dir string) (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	lock := flock.New(filepath.Join(dir, LockFileName))
	ctx, cancel := context.WithTimeout(context.Background(), DefaultLockTimeout)
	defer cancel()

	locked, err := lock.TryRLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire read lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire read lock within timeout")
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// Fields missing from the file keep their defaults.
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to disk with locking
func SaveConfig(cfg *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	return SaveConfigTo(configDir, cfg)
}

// SaveConfigTo writes config.json in dir under an exclusive lock, replacing
// the file atomically.
func SaveConfigTo(dir string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, LockFileName))
	ctx, cancel := context.WithTimeout(context.Background(), DefaultLockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire write lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("could not acquire write lock within timeout")
	}
	defer lock.Unlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, ConfigFileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Credential store backends
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config holds user preferences
type Config struct {
	ServerURL       string        `yaml:"server_url" json:"server_url" envconfig:"SERVER_URL"`
	RequestTimeout  time.Duration `yaml:"request_timeout" json:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	CredentialStore string        `yaml:"credential_store" json:"credential_store" envconfig:"CREDENTIAL_STORE"` // file or sqlite
	DataDir         string        `yaml:"data_dir" json:"data_dir" envconfig:"DATA_DIR"`                         // Token file, sqlite db and logs live here
	ConfirmDelete   bool          `yaml:"confirm_delete" json:"confirm_delete" envconfig:"CONFIRM_DELETE"`       // Require confirmation for delete
	MetricsAddr     string        `yaml:"metrics_addr,omitempty" json:"metrics_addr,omitempty" envconfig:"METRICS_ADDR"`

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level" envconfig:"LOG_LEVEL"`       // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file" envconfig:"LOG_FILE"`          // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console" envconfig:"LOG_CONSOLE"` // Enable console logging
}

// EnvPrefix is the prefix of environment overrides, e.g. DIARY_SERVER_URL
const EnvPrefix = "DIARY"

// DefaultDataDir returns ~/.diary
func DefaultDataDir() string {
	home, _ := os.UserHomeDir()
	if home == "" {
		return ".diary"
	}
	return filepath.Join(home, ".diary")
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	dataDir := DefaultDataDir()
	return &Config{
		ServerURL:       "http://localhost:8080",
		RequestTimeout:  15 * time.Second,
		CredentialStore: StoreFile,
		DataDir:         dataDir,
		ConfirmDelete:   true,
		LogLevel:        "INFO",
		LogFile:         filepath.Join(dataDir, "logs", "diary.log"),
		LogConsole:      false,
	}
}

// Path returns the location of config.yaml
func Path() string {
	return filepath.Join(DefaultDataDir(), "config.yaml")
}

// Load loads config from ~/.diary/config.yaml and applies environment overrides
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom loads config from the given file. A missing file yields defaults.
// Variables from a .env file in the working directory are applied before the
// DIARY_* environment overrides are read.
func LoadFrom(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
		// Defaults if no config
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	_ = godotenv.Load()
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be > 0")
	}
	switch c.CredentialStore {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("unknown credential_store %q (want %s or %s)", c.CredentialStore, StoreFile, StoreSQLite)
	}
	return nil
}

// TokenFile is the JSON file used by the file credential store
func (c *Config) TokenFile() string {
	return filepath.Join(c.DataDir, "session.json")
}

// DatabaseFile is the SQLite file used by the sqlite credential store
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.DataDir, "diary.db")
}

// Save saves config to ~/.diary/config.yaml
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the config as YAML to configPath
func (c *Config) SaveTo(configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

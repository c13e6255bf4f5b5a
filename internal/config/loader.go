package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/queryprof/queryprof/internal/debug"
)

const (
	// ConfigFileName is the default configuration file name
	ConfigFileName = ".queryprof.json"

	// ConfigEnvVar is the environment variable to specify custom config path
	ConfigEnvVar = "QUERYPROF_CONFIG"
)

// Loader handles loading configuration files
type Loader struct {
	// SearchPaths contains the paths to search for configuration files
	SearchPaths []string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		SearchPaths: getDefaultSearchPaths(),
	}
}

// Load attempts to load configuration from the environment variable
// path, then the search paths. A missing configuration file is reported
// as an error wrapping os.ErrNotExist so callers can fall back to
// defaults.
func (l *Loader) Load() (*Config, error) {
	debug.LogSection("Configuration Loading")

	// First check if environment variable is set
	if envPath := os.Getenv(ConfigEnvVar); envPath != "" {
		debug.Log("Loading config from environment variable %s: %s", ConfigEnvVar, envPath)
		cfg, err := l.loadFromPath(envPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", ConfigEnvVar, err)
		}
		return cfg, nil
	}

	// Search in default paths
	debug.Log("Searching for config in default paths: %v", l.SearchPaths)
	for _, searchPath := range l.SearchPaths {
		configPath := filepath.Join(searchPath, ConfigFileName)
		debug.Log("Checking path: %s", configPath)
		if _, err := os.Stat(configPath); err == nil {
			debug.Log("Found config at: %s", configPath)
			cfg, err := l.loadFromPath(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
			}
			return cfg, nil
		}
	}

	return nil, fmt.Errorf("no configuration file found in search paths %v: %w", l.SearchPaths, os.ErrNotExist)
}

// LoadFromPath loads configuration from a specific file path
func (l *Loader) LoadFromPath(path string) (*Config, error) {
	return l.loadFromPath(path)
}

func (l *Loader) loadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %q: %w", path, err)
	}

	debug.Log("Loaded config: driver=%s directory=%s repeat=%d", cfg.Driver, cfg.Directory, cfg.Repeat)
	return &cfg, nil
}

// getDefaultSearchPaths returns the current directory followed by the
// user's home directory.
func getDefaultSearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}
	return paths
}

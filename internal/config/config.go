// Package config provides configuration loading and management for
// queryprof.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config represents the settings for a timing run. Command-line flags
// take precedence over values loaded from a file.
type Config struct {
	Driver     string `json:"driver,omitempty"`
	DSN        string `json:"dsn,omitempty"`
	Directory  string `json:"directory,omitempty"`
	Pattern    string `json:"pattern,omitempty"`
	Repeat     int    `json:"repeat,omitempty"`
	WarmUp     bool   `json:"warmup,omitempty"`
	Interleave bool   `json:"interleave,omitempty"`
}

// Validate performs validation on the Config
func (c *Config) Validate() error {
	if c.Repeat < 0 {
		return fmt.Errorf("repeat must be a positive integer, got %d", c.Repeat)
	}
	if c.DSN != "" && c.Driver == "" {
		return fmt.Errorf("dsn is set but driver is empty")
	}
	return nil
}

// Save writes the configuration to path as indented JSON.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %q: %w", path, err)
	}
	return nil
}

// Package config reads and writes the huddle client configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Config is the on-disk client configuration.
type Config struct {
	ServerURL     string   `json:"serverUrl"`
	Token         string   `json:"token,omitempty"`
	ClientID      string   `json:"clientId"`
	User          User     `json:"user"`
	PollSeconds   int      `json:"pollSeconds,omitempty"`
	MutedChannels []string `json:"mutedChannels,omitempty"`
	NoSound       bool     `json:"noSound,omitempty"`
	NoDesktop     bool     `json:"noDesktop,omitempty"`
}

// User identifies the session user notifications are attributed to.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// PollInterval returns the configured poll cadence, or zero to use the
// engine default.
func (c *Config) PollInterval() time.Duration {
	if c.PollSeconds <= 0 {
		return 0
	}
	return time.Duration(c.PollSeconds) * time.Second
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "huddle", "config.json"), nil
}

// DefaultStorePath returns the default local database location.
func DefaultStorePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "huddle", "huddle.db"), nil
}

// Load reads the config file, applies environment overrides (HUDDLE_URL,
// HUDDLE_TOKEN), and assigns a client id on first use. A missing file is
// not an error; the zero config plus overrides is returned.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if v := os.Getenv("HUDDLE_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("HUDDLE_TOKEN"); v != "" {
		cfg.Token = v
	}

	if cfg.ClientID == "" {
		cfg.ClientID = uuid.New().String()
		if err := Write(path, &cfg); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// Write persists the config to disk, creating the directory if needed.
func Write(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// Validate checks the fields required to talk to a backend.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("serverUrl is required (or set HUDDLE_URL)")
	}
	if c.User.ID == "" || c.User.Name == "" {
		return fmt.Errorf("user.id and user.name are required")
	}
	return nil
}

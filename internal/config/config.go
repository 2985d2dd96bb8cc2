// Package config handles configuration loading and management.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// UI modes.
const (
	ModeAuto   = "auto"
	ModeTUI    = "tui"
	ModeSimple = "simple"
)

// Config represents the solace configuration.
type Config struct {
	Server  ServerConfig  `toml:"server" json:"server"`
	Chat    ChatConfig    `toml:"chat" json:"chat"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Logging LoggingConfig `toml:"logging" json:"logging"`
}

// ServerConfig holds the assistant server location.
type ServerConfig struct {
	BaseURL string `toml:"base_url" json:"base_url"`
}

// ChatConfig holds user-visible chat texts.
type ChatConfig struct {
	Greeting        string `toml:"greeting" json:"greeting"`
	ErrorText       string `toml:"error_text" json:"error_text"`
	ConfirmPrompt   string `toml:"confirm_prompt" json:"confirm_prompt"`
	ClearFailedText string `toml:"clear_failed_text" json:"clear_failed_text"`
}

// UIConfig selects the chat surface.
type UIConfig struct {
	Mode string `toml:"mode" json:"mode"` // auto, tui, simple
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `toml:"level" json:"level"`
	File       string `toml:"file" json:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" json:"max_backups"`
}

// Load reads configuration from the default path, .env and environment.
func Load() (*Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile reads configuration from path. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	// .env is optional
	_ = godotenv.Load()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	cfg.applyEnv()

	// Expand paths
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	if p := os.Getenv("SOLACE_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(StateDir(), "config.toml")
}

// StateDir returns the solace state directory.
func StateDir() string {
	if p := os.Getenv("SOLACE_STATE_DIR"); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".solace")
}

// LogsDir returns the logs directory.
func LogsDir() string {
	return filepath.Join(StateDir(), "logs")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL: "http://localhost:5000",
		},
		Chat: ChatConfig{
			Greeting:        "Hi there. I'm here to listen and support you. How are you feeling today?",
			ErrorText:       "Sorry, I encountered an error. Please try again.",
			ConfirmPrompt:   "Clear conversation?",
			ClearFailedText: "Failed to clear chat",
		},
		UI: UIConfig{
			Mode: ModeAuto,
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       filepath.Join(LogsDir(), "solace.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

func (c *Config) applyEnv() {
	if u := os.Getenv("SOLACE_BASE_URL"); u != "" {
		c.Server.BaseURL = u
	}
	if lvl := os.Getenv("SOLACE_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
	if mode := os.Getenv("SOLACE_UI"); mode != "" {
		c.UI.Mode = mode
	}
}

func (c *Config) expandPaths() {
	home, _ := os.UserHomeDir()

	expand := func(p string) string {
		if strings.HasPrefix(p, "~/") {
			return filepath.Join(home, p[2:])
		}
		if strings.HasPrefix(p, "$HOME/") {
			return filepath.Join(home, p[6:])
		}
		return p
	}

	c.Logging.File = expand(c.Logging.File)
}

// Validate checks the values that would otherwise fail late.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid server.base_url %q: %w", c.Server.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid server.base_url %q: scheme must be http or https", c.Server.BaseURL)
	}

	switch c.UI.Mode {
	case ModeAuto, ModeTUI, ModeSimple:
	default:
		return fmt.Errorf("invalid ui.mode %q: want auto, tui or simple", c.UI.Mode)
	}

	return nil
}

// Save writes the config to path.
func (c *Config) Save(path string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}

// EnsureDirs creates necessary directories.
func EnsureDirs() error {
	dirs := []string{
		StateDir(),
		LogsDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	return nil
}

// Package config loads the TOML configuration file and applies environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

const defaultSystemPrompt = "You are a helpful assistant. Use the available tools to answer " +
	"questions about weather, stock prices, and Formula 1 races. Answer briefly."

type Config struct {
	ListenAddr   string `toml:"listen_addr"`
	DataDir      string `toml:"data_dir"`
	SystemPrompt string `toml:"system_prompt"`
	MaxSteps     int    `toml:"max_steps"`
	Debug        bool   `toml:"debug"`

	Provider ProviderConfig `toml:"provider"`
	Weather  ToolKey        `toml:"weather"`
	Stocks   ToolKey        `toml:"stocks"`
}

type ProviderConfig struct {
	Type    string `toml:"type"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
	APIKey  string `toml:"api_key"`
}

type ToolKey struct {
	APIKey string `toml:"api_key"`
}

func Default() *Config {
	return &Config{
		ListenAddr:   ":8080",
		DataDir:      defaultDataDir(),
		SystemPrompt: defaultSystemPrompt,
		MaxSteps:     3,
		Provider: ProviderConfig{
			Type:  "ollama",
			Model: "llama3.1:latest",
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "rudra")
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "config.toml")
}

// Load reads the config file at path, falling back to defaults when it does
// not exist, then applies environment overrides. A missing file is not an
// error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.ListenAddr, "RUDRA_LISTEN_ADDR")
	setString(&c.DataDir, "RUDRA_DATA_DIR")
	setString(&c.SystemPrompt, "RUDRA_SYSTEM_PROMPT")
	setString(&c.Provider.Type, "RUDRA_PROVIDER")
	setString(&c.Provider.BaseURL, "RUDRA_BASE_URL")
	setString(&c.Provider.Model, "RUDRA_MODEL")
	setString(&c.Provider.APIKey, "RUDRA_API_KEY")
	setString(&c.Weather.APIKey, "OPENWEATHER_API_KEY")
	setString(&c.Stocks.APIKey, "ALPHAVANTAGE_API_KEY")

	if v := os.Getenv("RUDRA_MAX_STEPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxSteps = n
		}
	}
	if v := os.Getenv("RUDRA_DEBUG"); v == "1" || v == "true" {
		c.Debug = true
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Save writes the config with secure permissions; it holds API keys.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultDeck        = "rider-waite-smith"
	DefaultLanguage    = "en"
	DefaultModel       = "gpt-3.5-turbo"
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.7

	// History file names, one per front-end
	CLIHistoryFile = "tarot_history.json"
	TUIHistoryFile = "history.json"
)

// Config represents the application configuration
type Config struct {
	DefaultDeck string  `toml:"default_deck"`
	Language    string  `toml:"language"`
	LLM         LLM     `toml:"llm"`
	History     History `toml:"history"`
}

// LLM configures the chat completion endpoint. APIKey is never written to
// the config file; it comes from the environment.
type LLM struct {
	APIKey      string  `toml:"-"`
	BaseURL     string  `toml:"base_url"`
	Model       string  `toml:"model"`
	Stream      bool    `toml:"stream"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

type History struct {
	Dir string `toml:"dir"` // Empty means next to the executable
}

// Default returns the configuration written on first run
func Default() *Config {
	return &Config{
		DefaultDeck: DefaultDeck,
		Language:    DefaultLanguage,
		LLM: LLM{
			Model:       DefaultModel,
			Stream:      true,
			MaxTokens:   DefaultMaxTokens,
			Temperature: DefaultTemperature,
		},
	}
}

// GetXDGDataHome returns XDG_DATA_HOME or default path
func GetXDGDataHome() string {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// GetXDGCacheHome returns XDG_CACHE_HOME or default path
func GetXDGCacheHome() string {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// GetXDGStateHome returns XDG_STATE_HOME or default path
func GetXDGStateHome() string {
	return xdgDir("XDG_STATE_HOME", ".local", "state")
}

func xdgDir(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(append([]string{homeDir}, fallback...)...)
}

// GetDeckLibraryPath returns the path to the deck library
func GetDeckLibraryPath() string {
	return filepath.Join(GetXDGDataHome(), "tarot", "decks")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "seer", "config.toml")
}

// GetCacheDir returns the directory for converted card art
func GetCacheDir() string {
	return filepath.Join(GetXDGCacheHome(), "seer")
}

// GetStateDir returns the directory for log files
func GetStateDir() string {
	return filepath.Join(GetXDGStateHome(), "seer")
}

// Load reads the config file, creating it with defaults when missing, then
// applies .env and environment overrides.
func Load() (*Config, error) {
	cfg, err := loadFile(GetConfigFilePath())
	if err != nil {
		return nil, err
	}

	// A missing .env is fine; variables already set win over the file.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}
	cfg.applyEnv()

	return cfg, nil
}

func loadFile(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := Default()
		if err := write(configPath, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg := Default()
	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("OPENAI_MODEL_NAME"); v != "" {
		c.LLM.Model = v
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = DefaultMaxTokens
	}
}

func write(configPath string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	return nil
}

// HistoryPath returns the history file for a front-end. Without a configured
// directory the file sits next to the running executable.
func (c *Config) HistoryPath(file string) string {
	dir := c.History.Dir
	if dir == "" {
		if exe, err := os.Executable(); err == nil {
			dir = filepath.Dir(exe)
		}
	}
	return filepath.Join(dir, file)
}

// SetDefaultDeck sets the default deck in the config
func SetDefaultDeck(deckName string) error {
	cfg, err := loadFile(GetConfigFilePath())
	if err != nil {
		return err
	}

	cfg.DefaultDeck = deckName
	return write(GetConfigFilePath(), cfg)
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/keepsake-bot/keepsake/pkg/events"
	"github.com/keepsake-bot/keepsake/pkg/telegram"
)

type Config struct {
	Telegram telegram.TelegramConfig `json:"telegram"`
	Events   events.ClientConfig     `json:"events"`
	DataDir  string                  `json:"data_dir"`
	PhotoDir string                  `json:"photo_dir"`
	// SessionTTLHours bounds how long an idle conversation keeps its state.
	SessionTTLHours int `json:"session_ttl_hours"`
}

func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".keepsake")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// Init writes a starter config file if none exists yet.
func Init() error {
	dir := ConfigDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	cfgPath := ConfigPath()
	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Printf("Config already exists at %s\n", cfgPath)
		return nil
	}

	cfg := &Config{}
	applyDefaults(cfg)

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(cfgPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Created config at %s\n", cfgPath)
	fmt.Println("Please edit the config file and add your telegram token.")
	return nil
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadFromFile(cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load config file: %w", err)
	}

	overrideWithEnv(cfg)
	applyDefaults(cfg)

	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("telegram token is required (set TELEGRAM_BOT_TOKEN env or telegram.token in %s)", ConfigPath())
	}

	return cfg, nil
}

func loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	return nil
}

func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_PROXY"); v != "" {
		cfg.Telegram.Proxy = v
	}
	if v := os.Getenv("KEEPSAKE_EVENTS_URL"); v != "" {
		cfg.Events.BaseURL = v
	}
	if v := os.Getenv("KEEPSAKE_EVENTS_LOCATION"); v != "" {
		cfg.Events.Location = v
	}
	if v := os.Getenv("KEEPSAKE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("KEEPSAKE_PHOTO_DIR"); v != "" {
		cfg.PhotoDir = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Events.BaseURL == "" {
		cfg.Events.BaseURL = "https://kudago.com/public-api/v1.4/events/"
	}
	if cfg.Events.Location == "" {
		cfg.Events.Location = "spb"
	}
	if cfg.Events.PageSize == 0 {
		cfg.Events.PageSize = 20
	}
	if cfg.Events.Language == "" {
		cfg.Events.Language = "ru"
	}
	if cfg.Events.Timeout == 0 {
		cfg.Events.Timeout = 10
	}
	if cfg.DataDir == "" {
		cfg.DataDir = ConfigDir()
	}
	if cfg.PhotoDir == "" {
		cfg.PhotoDir = filepath.Join(cfg.DataDir, "photos")
	}
	if cfg.SessionTTLHours == 0 {
		cfg.SessionTTLHours = 24
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Defaults DefaultsConfig `toml:"defaults"`
	Log      LogConfig      `toml:"log"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type DefaultsConfig struct {
	EventDurationMinutes int    `toml:"event_duration_minutes"`
	CategoryColor        string `toml:"category_color"`
	CategoryIcon         string `toml:"category_icon"`
}

type LogConfig struct {
	Level string `toml:"level"` // debug | info | warn | error
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Defaults: DefaultsConfig{
			EventDurationMinutes: 60,
			CategoryColor:        "#6A9FB5",
			CategoryIcon:         "folder",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}
	if c.Defaults.EventDurationMinutes <= 0 {
		return errors.New("defaults.event_duration_minutes must be > 0")
	}
	if strings.TrimSpace(c.Defaults.CategoryColor) == "" {
		return errors.New("defaults.category_color is required")
	}
	level := strings.TrimSpace(strings.ToLower(c.Log.Level))
	if level != "" && !slices.Contains([]string{"debug", "info", "warn", "error"}, level) {
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}
	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

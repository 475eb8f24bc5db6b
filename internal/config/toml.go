// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Typing TypingConfig `toml:"typing"`
	API    APIConfig    `toml:"api"`
	Queue  QueueConfig  `toml:"queue"`
}

// TypingConfig maps typing-test settings.
type TypingConfig struct {
	Capitalization *bool `toml:"capitalization"`
	Punctuation    *bool `toml:"punctuation"`
}

// APIConfig maps lyrics provider settings.
type APIConfig struct {
	BaseURL     *string   `toml:"base-url"`
	Timeout     *Duration `toml:"timeout"`
	SearchLimit *int      `toml:"search-limit"`
}

// QueueConfig maps song queue settings.
type QueueConfig struct {
	Prefetch *int `toml:"prefetch"`
	LowWater *int `toml:"low-water"`
}

// Duration decodes TOML strings such as "10s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

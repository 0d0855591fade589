// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice   PracticeConfig   `toml:"practice"`
	Session    SessionConfig    `toml:"session"`
	Difficulty DifficultyConfig `toml:"difficulty"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Lang       *string  `toml:"lang"`
	Words      *int     `toml:"words"`
	CapsPct    *float64 `toml:"caps"`
	PunctPct   *float64 `toml:"punct"`
	PunctSet   *string  `toml:"punct-set"`
	Lesson     *string  `toml:"lesson"`
	FocusWeak  *bool    `toml:"focus-weak"`
	WeakTop    *int     `toml:"weak-top"`
	WeakFactor *float64 `toml:"weak-factor"`
	WeakWindow *int     `toml:"weak-window"`
}

// SessionConfig maps session rule settings.
type SessionConfig struct {
	CaseSensitive            *bool    `toml:"case-sensitive"`
	AutoAdvance              *bool    `toml:"auto-advance"`
	AllowBackspace           *bool    `toml:"allow-backspace"`
	MaxBackspaces            *int     `toml:"max-backspaces"`
	BackspaceDelayMs         *int     `toml:"backspace-delay-ms"`
	MaxBurst                 *int     `toml:"max-burst"`
	BurstWindowMs            *int     `toml:"burst-window-ms"`
	AllowBackspaceAfterError *bool    `toml:"allow-backspace-after-error"`
	MinAccuracy              *float64 `toml:"min-accuracy"`
	MinWPM                   *float64 `toml:"min-wpm"`
	MaxErrors                *int     `toml:"max-errors"`
	TimedSeconds             *int     `toml:"timed-seconds"`
}

// DifficultyConfig maps difficulty settings.
type DifficultyConfig struct {
	Level    *string `toml:"level"`
	Adaptive *bool   `toml:"adaptive"`
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

// Package config loads the externally-persisted settings consumed read-only
// by the rest of the process. The file lives at
// $XDG_CONFIG_HOME/murmur/config.toml (or ~/.config/murmur/config.toml) and
// is never written by murmur itself.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Mode selects which transcription backend handles a session.
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

// IsValid reports whether m is a recognised backend mode.
func (m Mode) IsValid() bool {
	return m == ModeLocal || m == ModeRemote
}

const (
	DefaultEndpoint    = "https://api.groq.com/openai/v1/audio/transcriptions"
	DefaultRemoteModel = "whisper-large-v3-turbo"
)

type Config struct {
	Mode     Mode
	Language string

	RemoteEndpoint    string
	RemoteModel       string
	RemoteAPIKey      string
	RemoteTemperature float64

	LocalModelPath string

	HybridHotkey bool
	LongPressMs  int
}

type fileConfig struct {
	Mode     string `toml:"mode"`
	Language string `toml:"language"`

	Remote struct {
		Endpoint    string  `toml:"endpoint"`
		Model       string  `toml:"model"`
		APIKey      string  `toml:"api_key"`
		Temperature float64 `toml:"temperature"`
	} `toml:"remote"`

	Local struct {
		ModelPath string `toml:"model_path"`
	} `toml:"local"`

	Hotkey struct {
		Hybrid      bool `toml:"hybrid"`
		LongPressMs int  `toml:"long_press_ms"`
	} `toml:"hotkey"`
}

// Load reads the config file if present and fills in defaults otherwise.
// A missing file is not an error; a malformed one is.
func Load() (*Config, error) {
	return loadFrom(configFilePath())
}

func loadFrom(path string) (*Config, error) {
	cfg := &Config{
		Mode:           ModeRemote,
		Language:       "en",
		RemoteEndpoint: DefaultEndpoint,
		RemoteModel:    DefaultRemoteModel,
		LongPressMs:    350,
	}

	if path != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if fc.Mode != "" {
			cfg.Mode = Mode(fc.Mode)
		}
		if fc.Language != "" {
			cfg.Language = fc.Language
		}
		if fc.Remote.Endpoint != "" {
			cfg.RemoteEndpoint = fc.Remote.Endpoint
		}
		if fc.Remote.Model != "" {
			cfg.RemoteModel = fc.Remote.Model
		}
		cfg.RemoteAPIKey = fc.Remote.APIKey
		cfg.RemoteTemperature = fc.Remote.Temperature
		cfg.LocalModelPath = expandTilde(fc.Local.ModelPath)
		cfg.HybridHotkey = fc.Hotkey.Hybrid
		if fc.Hotkey.LongPressMs > 0 {
			cfg.LongPressMs = fc.Hotkey.LongPressMs
		}
	}

	applyEnvOverrides(cfg)

	if !cfg.Mode.IsValid() {
		return nil, fmt.Errorf("unknown mode %q (use local or remote)", cfg.Mode)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MURMUR_API_KEY"); v != "" {
		cfg.RemoteAPIKey = v
	}
	if v := os.Getenv("GROQ_API_KEY"); v != "" && cfg.RemoteAPIKey == "" {
		cfg.RemoteAPIKey = v
	}
	if v := os.Getenv("MURMUR_MODEL_PATH"); v != "" {
		cfg.LocalModelPath = expandTilde(v)
	}
}

func configFilePath() string {
	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, "murmur")
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".config", "murmur")
	} else {
		return ""
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

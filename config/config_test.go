package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MURMUR_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("MURMUR_MODEL_PATH", "")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := loadFrom("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != ModeRemote {
		t.Errorf("Mode = %q, want remote", cfg.Mode)
	}
	if cfg.Language != "en" {
		t.Errorf("Language = %q, want en", cfg.Language)
	}
	if cfg.RemoteEndpoint != DefaultEndpoint {
		t.Errorf("RemoteEndpoint = %q", cfg.RemoteEndpoint)
	}
	if cfg.LongPressMs != 350 {
		t.Errorf("LongPressMs = %d, want 350", cfg.LongPressMs)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
mode = "local"
language = "de"

[local]
model_path = "/models/ggml-base.bin"

[remote]
endpoint = "https://example.test/v1/audio/transcriptions"
model = "whisper-1"
api_key = "sk-test"
temperature = 0.2

[hotkey]
hybrid = true
long_press_ms = 500
`)

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != ModeLocal {
		t.Errorf("Mode = %q, want local", cfg.Mode)
	}
	if cfg.Language != "de" {
		t.Errorf("Language = %q, want de", cfg.Language)
	}
	if cfg.LocalModelPath != "/models/ggml-base.bin" {
		t.Errorf("LocalModelPath = %q", cfg.LocalModelPath)
	}
	if cfg.RemoteEndpoint != "https://example.test/v1/audio/transcriptions" {
		t.Errorf("RemoteEndpoint = %q", cfg.RemoteEndpoint)
	}
	if cfg.RemoteAPIKey != "sk-test" {
		t.Errorf("RemoteAPIKey = %q", cfg.RemoteAPIKey)
	}
	if cfg.RemoteTemperature != 0.2 {
		t.Errorf("RemoteTemperature = %v", cfg.RemoteTemperature)
	}
	if !cfg.HybridHotkey || cfg.LongPressMs != 500 {
		t.Errorf("Hotkey = hybrid %v / %dms", cfg.HybridHotkey, cfg.LongPressMs)
	}
}

func TestLoadInvalidMode(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `mode = "cloud"`)
	if _, err := loadFrom(path); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestEnvOverridesAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("MURMUR_API_KEY", "sk-env")
	cfg, err := loadFrom("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RemoteAPIKey != "sk-env" {
		t.Errorf("RemoteAPIKey = %q, want sk-env", cfg.RemoteAPIKey)
	}
}

func TestGroqKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk-fallback")
	cfg, err := loadFrom("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RemoteAPIKey != "gsk-fallback" {
		t.Errorf("RemoteAPIKey = %q, want gsk-fallback", cfg.RemoteAPIKey)
	}
}

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func tempConfigPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.json")
}

func writeTestConfig(t *testing.T, path string, cfg *Config) {
	t.Helper()
	if err := Save(path, cfg); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
}

func TestLoadWritesDefaults(t *testing.T) {
	path := tempConfigPath(t)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written on first load: %v", err)
	}
	if cfg.HistoryLimit != 10 {
		t.Errorf("expected default history limit 10, got %d", cfg.HistoryLimit)
	}
	if cfg.Vehicle.OilIntervalKM != 10000 {
		t.Errorf("expected default oil interval 10000, got %d", cfg.Vehicle.OilIntervalKM)
	}
	if cfg.Retrieval.ManualResults != 3 || cfg.Retrieval.EventResults != 2 {
		t.Errorf("unexpected default retrieval counts: %d/%d",
			cfg.Retrieval.ManualResults, cfg.Retrieval.EventResults)
	}
	if len(cfg.Weather.Endpoints) != 2 {
		t.Errorf("expected 2 default weather endpoints, got %v", cfg.Weather.Endpoints)
	}
}

func TestSaveReloadRoundTrip(t *testing.T) {
	path := tempConfigPath(t)

	original := &Config{
		DataDir:       "/tmp/test-data",
		LogLevel:      "debug",
		MaxConcurrent: 4,
		HistoryLimit:  20,
	}
	original.LLM.Provider = "openai"
	original.LLM.BaseURL = "https://api.deepseek.com/v1"
	original.LLM.APIKey = "sk-test-round-trip"
	original.LLM.Model = "deepseek-chat"
	original.LLM.MaxTokens = 2048
	original.LLM.Temperature = 0.5
	original.Vehicle.Name = "Audi A3"
	original.Vehicle.FallbackMileage = 150000
	original.Telegram.Token = "bot-token-456"

	if err := Save(path, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.DataDir != original.DataDir {
		t.Errorf("DataDir mismatch: %v != %v", loaded.DataDir, original.DataDir)
	}
	if loaded.LogLevel != original.LogLevel {
		t.Errorf("LogLevel mismatch: %v != %v", loaded.LogLevel, original.LogLevel)
	}
	if loaded.LLM.APIKey != original.LLM.APIKey {
		t.Errorf("LLM.APIKey mismatch: %v != %v", loaded.LLM.APIKey, original.LLM.APIKey)
	}
	if loaded.LLM.Temperature != original.LLM.Temperature {
		t.Errorf("LLM.Temperature mismatch: %v != %v", loaded.LLM.Temperature, original.LLM.Temperature)
	}
	if loaded.Vehicle.FallbackMileage != original.Vehicle.FallbackMileage {
		t.Errorf("Vehicle.FallbackMileage mismatch: %v != %v",
			loaded.Vehicle.FallbackMileage, original.Vehicle.FallbackMileage)
	}
	if loaded.Telegram.Token != original.Telegram.Token {
		t.Errorf("Telegram.Token mismatch: %v != %v", loaded.Telegram.Token, original.Telegram.Token)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := tempConfigPath(t)
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tg-from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.APIKey != "sk-from-env" {
		t.Errorf("expected env API key, got %q", cfg.LLM.APIKey)
	}
	if cfg.Telegram.Token != "tg-from-env" {
		t.Errorf("expected env telegram token, got %q", cfg.Telegram.Token)
	}
}

func TestSaveAtomicWrite(t *testing.T) {
	path := tempConfigPath(t)

	cfg := &Config{LogLevel: "info"}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file should not exist after successful save")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved config: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Errorf("saved file is not valid JSON: %v", err)
	}
}

func TestGetValue(t *testing.T) {
	path := tempConfigPath(t)

	cfg := &Config{LogLevel: "debug", MaxConcurrent: 8}
	cfg.LLM.Model = "deepseek-chat"
	writeTestConfig(t, path, cfg)

	v, err := GetValue(path, "log_level")
	if err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}
	if v != "debug" {
		t.Errorf("expected log_level=debug, got %v", v)
	}

	v, err = GetValue(path, "llm.model")
	if err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}
	if v != "deepseek-chat" {
		t.Errorf("expected llm.model=deepseek-chat, got %v", v)
	}

	// JSON numbers are float64
	v, err = GetValue(path, "max_concurrent")
	if err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}
	if v != float64(8) {
		t.Errorf("expected max_concurrent=8, got %v (%T)", v, v)
	}
}

func TestGetValueUnknownKey(t *testing.T) {
	path := tempConfigPath(t)
	writeTestConfig(t, path, &Config{LogLevel: "info"})

	if _, err := GetValue(path, "nonexistent.key"); err == nil {
		t.Fatal("expected error for unknown key, got nil")
	}
}

func TestSetValue(t *testing.T) {
	path := tempConfigPath(t)

	cfg := &Config{LogLevel: "info", MaxConcurrent: 2}
	cfg.LLM.Provider = "openai"
	cfg.LLM.Temperature = 0.7
	writeTestConfig(t, path, cfg)

	if err := SetValue(path, "log_level", "debug"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if v, _ := GetValue(path, "log_level"); v != "debug" {
		t.Errorf("expected log_level=debug after set, got %v", v)
	}

	// Other values are preserved.
	if v, _ := GetValue(path, "llm.provider"); v != "openai" {
		t.Errorf("expected llm.provider preserved, got %v", v)
	}

	// Numeric and float coercion.
	if err := SetValue(path, "max_concurrent", "16"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if v, _ := GetValue(path, "max_concurrent"); v != float64(16) {
		t.Errorf("expected max_concurrent=16, got %v", v)
	}
	if err := SetValue(path, "llm.temperature", "0.3"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if v, _ := GetValue(path, "llm.temperature"); v != 0.3 {
		t.Errorf("expected llm.temperature=0.3, got %v", v)
	}
}

func TestSetValueUnknownKey(t *testing.T) {
	path := tempConfigPath(t)
	writeTestConfig(t, path, &Config{LogLevel: "info"})

	if err := SetValue(path, "custom.setting", "value"); err == nil {
		t.Fatal("expected error for unknown key, got nil")
	}
}

func TestListValuesMasksSecrets(t *testing.T) {
	cfg := &Config{LogLevel: "info"}
	cfg.LLM.APIKey = "sk-secret-key-1234"
	cfg.Telegram.Token = "bot-token-abcd"

	flat, err := ListValues(cfg, true)
	if err != nil {
		t.Fatalf("ListValues failed: %v", err)
	}
	if flat["llm.api_key"] != "***1234" {
		t.Errorf("expected masked llm.api_key=***1234, got %v", flat["llm.api_key"])
	}
	if flat["telegram.token"] != "***abcd" {
		t.Errorf("expected masked telegram.token=***abcd, got %v", flat["telegram.token"])
	}
	if flat["log_level"] != "info" {
		t.Errorf("expected log_level unmasked, got %v", flat["log_level"])
	}

	flat, err = ListValues(cfg, false)
	if err != nil {
		t.Fatalf("ListValues failed: %v", err)
	}
	if flat["llm.api_key"] != "sk-secret-key-1234" {
		t.Errorf("expected unmasked llm.api_key, got %v", flat["llm.api_key"])
	}
}

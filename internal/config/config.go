package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	DataDir       string `json:"data_dir"`
	LogLevel      string `json:"log_level"`
	MaxConcurrent int    `json:"max_concurrent"`
	HistoryLimit  int    `json:"history_limit"`
	LLM           struct {
		Provider    string  `json:"provider"`
		BaseURL     string  `json:"base_url"`
		APIKey      string  `json:"api_key"`
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float32 `json:"temperature"`
	} `json:"llm"`
	Embedding struct {
		BaseURL string `json:"base_url"`
		Model   string `json:"model"`
	} `json:"embedding"`
	Retrieval struct {
		ManualResults int `json:"manual_results"`
		EventResults  int `json:"event_results"`
		ExcerptTokens int `json:"excerpt_tokens"`
		ChunkSize     int `json:"chunk_size"`
		ChunkOverlap  int `json:"chunk_overlap"`
	} `json:"retrieval"`
	Vehicle struct {
		Name            string `json:"name"`
		SeedMileage     int    `json:"seed_mileage"`
		SeedDate        string `json:"seed_date"`
		FallbackMileage int    `json:"fallback_mileage"`
		OilIntervalKM   int    `json:"oil_interval_km"`
	} `json:"vehicle"`
	Weather struct {
		City      string   `json:"city"`
		Endpoints []string `json:"endpoints"`
	} `json:"weather"`
	Briefing struct {
		Schedule string `json:"schedule"`
		City     string `json:"city"`
	} `json:"briefing"`
	Telegram struct {
		Token string `json:"token"`
	} `json:"telegram"`
	HTTP struct {
		Enabled bool   `json:"enabled"`
		Listen  string `json:"listen"`
	} `json:"http"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		DataDir:       filepath.Join(os.Getenv("HOME"), ".copilot"),
		MaxConcurrent: 2,
	}
	cfg.LogLevel = "info"
	cfg.HistoryLimit = 10
	cfg.LLM.Provider = "openai"
	cfg.LLM.BaseURL = "https://api.deepseek.com/v1"
	cfg.LLM.Model = "deepseek-chat"
	cfg.LLM.MaxTokens = 1024
	cfg.LLM.Temperature = 0.6
	cfg.Embedding.BaseURL = "https://api.openai.com/v1"
	cfg.Embedding.Model = "text-embedding-3-small"
	cfg.Retrieval.ManualResults = 3
	cfg.Retrieval.EventResults = 2
	cfg.Retrieval.ExcerptTokens = 1500
	cfg.Retrieval.ChunkSize = 1000
	cfg.Retrieval.ChunkOverlap = 100
	cfg.Vehicle.Name = "Audi A3 2006 1.6 BSE"
	cfg.Vehicle.SeedMileage = 145000
	cfg.Vehicle.SeedDate = "2024-01-01"
	cfg.Vehicle.FallbackMileage = 150000
	cfg.Vehicle.OilIntervalKM = 10000
	cfg.Weather.City = "Kaluga"
	cfg.Weather.Endpoints = []string{"https://wttr.in", "https://v2.wttr.in"}
	cfg.Briefing.Schedule = "0 8 * * *"
	cfg.Briefing.City = "Kaluga"
	cfg.HTTP.Listen = "127.0.0.1:8484"

	// Load from file if exists, otherwise write defaults
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := writeDefaults(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		cfg.LLM.BaseURL = baseURL
	}
	if tgToken := os.Getenv("TELEGRAM_BOT_TOKEN"); tgToken != "" {
		cfg.Telegram.Token = tgToken
	}

	return cfg, nil
}

func writeDefaults(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename default config: %w", err)
	}
	return nil
}

// Save writes the config to disk atomically.
func Save(path string, cfg *Config) error {
	return writeDefaults(path, cfg)
}

// GetValue reads the config file and returns the value at the dot-separated key.
func GetValue(path, key string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	flat := Flatten(raw)
	val, ok := flat[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
	return val, nil
}

// SetValue updates a single dot-separated key in the config file.
func SetValue(path, key, value string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	flat := Flatten(raw)
	if _, ok := flat[key]; !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}
	flat[key] = coerce(value)
	nested := Unflatten(flat)

	out, err := json.MarshalIndent(nested, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	out = append(out, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, out, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// coerce turns CLI string input into the JSON type it looks like.
func coerce(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		switch v.(type) {
		case bool, float64, []any:
			return v
		}
	}
	return s
}

// ListValues returns the flattened config map, masking secrets when mask is true.
func ListValues(cfg *Config, mask bool) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("round-trip config: %w", err)
	}
	flat := Flatten(raw)
	if mask {
		flat = MaskSecrets(flat)
	}
	return flat, nil
}

// Package config loads the Curamyn configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the merged curamyn configuration.
type Config struct {
	Logging LoggingConfig `json:"logging"`
	Server  ServerConfig  `json:"server"`
	LLM     LLMConfig     `json:"llm"`
	STT     STTConfig     `json:"stt"`
	OCR     OCRConfig     `json:"ocr"`
	Vision  VisionConfig  `json:"vision"`
	TTS     TTSConfig     `json:"tts"`
	Session SessionConfig `json:"session"`
	Store   StoreConfig   `json:"store"`
}

type LoggingConfig struct {
	Level string `json:"level"` // "debug", "info", "warn", "error"
}

type ServerConfig struct {
	Listen    string `json:"listen"`    // e.g. ":8085"
	AuthToken string `json:"authToken"` // bearer token for API callers
}

type LLMConfig struct {
	APIKey    string `json:"apiKey"`
	BaseURL   string `json:"baseUrl"` // optional, for OpenAI-compatible servers
	Model     string `json:"model"`
	MaxTokens int    `json:"maxTokens"`
}

type STTConfig struct {
	Provider string          `json:"provider"` // "openai" or "groq"
	OpenAI   STTVendorConfig `json:"openai"`
	Groq     STTVendorConfig `json:"groq"`
}

type STTVendorConfig struct {
	APIKey string `json:"apiKey"`
	Model  string `json:"model"`
}

type OCRConfig struct {
	Model string `json:"model"` // vision-capable chat model
}

type VisionConfig struct {
	Endpoint string `json:"endpoint"` // risk classifier inference URL
	APIKey   string `json:"apiKey"`
}

type TTSConfig struct {
	Model string `json:"model"`
	Voice string `json:"voice"`
}

type SessionConfig struct {
	MemoryTTLMinutes int `json:"memoryTtlMinutes"` // in-memory inactivity TTL
	DurableTTLHours  int `json:"durableTtlHours"`  // durable snapshot TTL
	SweepMinutes     int `json:"sweepMinutes"`     // periodic in-memory sweep interval
}

type StoreConfig struct {
	Path string `json:"path"` // sqlite database path
}

// Load reads configuration from ~/.curamyn/curamyn.json, applying coded
// defaults and environment overrides for secrets.
func Load() (*Config, error) {
	cfg := defaults()

	path := configPath()
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	// Secrets can come from the environment instead of the config file.
	if key := os.Getenv("CURAMYN_OPENAI_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
	if key := os.Getenv("CURAMYN_GROQ_API_KEY"); key != "" {
		cfg.STT.Groq.APIKey = key
	}
	if token := os.Getenv("CURAMYN_SERVER_TOKEN"); token != "" {
		cfg.Server.AuthToken = token
	}

	// The STT OpenAI key falls back to the main LLM key.
	if cfg.STT.OpenAI.APIKey == "" {
		cfg.STT.OpenAI.APIKey = cfg.LLM.APIKey
	}

	return cfg, nil
}

func defaults() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Server:  ServerConfig{Listen: ":8085"},
		LLM: LLMConfig{
			Model:     "gpt-4o-mini",
			MaxTokens: 1200,
		},
		STT: STTConfig{
			Provider: "openai",
			OpenAI:   STTVendorConfig{Model: "whisper-1"},
			Groq:     STTVendorConfig{Model: "whisper-large-v3-turbo"},
		},
		OCR: OCRConfig{Model: "gpt-4o-mini"},
		TTS: TTSConfig{Model: "tts-1", Voice: "alloy"},
		Session: SessionConfig{
			MemoryTTLMinutes: 30,
			DurableTTLHours:  24,
			SweepMinutes:     5,
		},
		Store: StoreConfig{
			Path: filepath.Join(home, ".curamyn", "curamyn.db"),
		},
	}
}

func configPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".curamyn", "curamyn.json")
}

// Validate checks process-wide requirements. A missing LLM credential is a
// startup-time fatal condition, not a per-request error.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.apiKey is not set (or CURAMYN_OPENAI_API_KEY)")
	}
	if c.Server.AuthToken == "" {
		return fmt.Errorf("server.authToken is not set (or CURAMYN_SERVER_TOKEN)")
	}
	if c.Session.MemoryTTLMinutes <= 0 {
		return fmt.Errorf("session.memoryTtlMinutes must be positive")
	}
	if c.Session.DurableTTLHours <= 0 {
		return fmt.Errorf("session.durableTtlHours must be positive")
	}
	return nil
}

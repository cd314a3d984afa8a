// Package stt provides speech-to-text transcription for audio turns.
package stt

import (
	"context"
	"fmt"

	"github.com/curamyn/curamyn/internal/config"
)

// Provider is the interface for STT implementations.
type Provider interface {
	// Transcribe converts raw audio bytes to text. An empty transcript is
	// a valid, non-error outcome.
	Transcribe(ctx context.Context, audio []byte) (string, error)

	// Name returns the provider name (e.g., "openai", "groq")
	Name() string
}

// New creates the configured STT provider.
func New(cfg config.STTConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIProvider(cfg.OpenAI)
	case "groq":
		return NewGroqProvider(cfg.Groq)
	default:
		return nil, fmt.Errorf("unknown stt provider: %s", cfg.Provider)
	}
}

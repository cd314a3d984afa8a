// Package tts synthesizes speech for voice-mode responses.
package tts

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/curamyn/curamyn/internal/config"
	. "github.com/curamyn/curamyn/internal/logging"
)

// Synthesizer is the interface for text-to-speech backends.
type Synthesizer interface {
	// Synthesize returns audio bytes for the given text.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// OpenAISynthesizer implements Synthesizer using the OpenAI speech API.
type OpenAISynthesizer struct {
	client *openai.Client
	model  string
	voice  string
}

// NewOpenAISynthesizer creates a synthesizer from TTS config. The API key
// is shared with the main LLM provider.
func NewOpenAISynthesizer(apiKey string, cfg config.TTSConfig) (*OpenAISynthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key not configured")
	}

	model := cfg.Model
	if model == "" {
		model = "tts-1"
	}
	voice := cfg.Voice
	if voice == "" {
		voice = "alloy"
	}

	L_info("tts: openai synthesizer initialized", "model", model, "voice", voice)

	return &OpenAISynthesizer{
		client: openai.NewClient(apiKey),
		model:  model,
		voice:  voice,
	}, nil
}

// Synthesize converts text to speech audio (MP3).
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.SpeechModel(s.model),
		Voice: openai.SpeechVoice(s.voice),
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("create speech: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read speech audio: %w", err)
	}

	L_debug("tts: synthesis complete", "bytes", len(audio))

	return audio, nil
}

package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/curamyn/curamyn/internal/config"
	. "github.com/curamyn/curamyn/internal/logging"
	"github.com/curamyn/curamyn/internal/media"
)

const (
	openaiTranscribeURL = "https://api.openai.com/v1/audio/transcriptions"
	groqTranscribeURL   = "https://api.groq.com/openai/v1/audio/transcriptions"
)

// OpenAIProvider implements STT using OpenAI's Whisper API.
type OpenAIProvider struct {
	config config.STTVendorConfig
	client *http.Client
}

// NewOpenAIProvider creates a new OpenAI Whisper STT provider.
func NewOpenAIProvider(cfg config.STTVendorConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key not configured")
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}

	L_info("stt: openai provider initialized", "model", cfg.Model)

	return &OpenAIProvider{config: cfg, client: &http.Client{}}, nil
}

func (o *OpenAIProvider) Transcribe(ctx context.Context, audio []byte) (string, error) {
	return transcribeWhisper(ctx, o.client, openaiTranscribeURL, o.config, audio)
}

func (o *OpenAIProvider) Name() string { return "openai" }

// GroqProvider implements STT using Groq's Whisper API.
// Groq exposes the same multipart endpoint shape as OpenAI.
type GroqProvider struct {
	config config.STTVendorConfig
	client *http.Client
}

// NewGroqProvider creates a new Groq Whisper STT provider.
func NewGroqProvider(cfg config.STTVendorConfig) (*GroqProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq API key not configured")
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-large-v3"
	}

	L_info("stt: groq provider initialized", "model", cfg.Model)

	return &GroqProvider{config: cfg, client: &http.Client{}}, nil
}

func (g *GroqProvider) Transcribe(ctx context.Context, audio []byte) (string, error) {
	return transcribeWhisper(ctx, g.client, groqTranscribeURL, g.config, audio)
}

func (g *GroqProvider) Name() string { return "groq" }

// transcribeWhisper sends audio bytes to an OpenAI-compatible Whisper
// endpoint. Both vendors accept OGG/Opus and WebM directly.
func transcribeWhisper(ctx context.Context, client *http.Client, url string, cfg config.STTVendorConfig, audio []byte) (string, error) {
	L_debug("stt: transcribing", "bytes", len(audio), "model", cfg.Model)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "audio"+extensionFor(audio))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("write audio to form: %w", err)
	}

	if err := writer.WriteField("model", cfg.Model); err != nil {
		return "", fmt.Errorf("write model field: %w", err)
	}
	if err := writer.WriteField("response_format", "text"); err != nil {
		return "", fmt.Errorf("write response_format field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		L_error("stt: whisper request failed", "status", resp.StatusCode, "body", string(body))

		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
			return "", fmt.Errorf("whisper API error: %s", errResp.Error.Message)
		}
		return "", fmt.Errorf("whisper API error: status %d", resp.StatusCode)
	}

	// Response is plain text when response_format=text
	transcript := strings.TrimSpace(string(body))
	L_debug("stt: transcription complete", "length", len(transcript))

	return transcript, nil
}

// extensionFor picks a filename extension from magic bytes so the endpoint
// can identify the container format.
func extensionFor(audio []byte) string {
	switch media.DetectMIME(audio) {
	case "audio/mpeg":
		return ".mp3"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/flac":
		return ".flac"
	case "video/webm", "audio/webm":
		return ".webm"
	case "application/ogg", "audio/ogg":
		return ".ogg"
	default:
		return ".ogg"
	}
}

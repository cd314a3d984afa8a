// Package types holds the shared value types passed between the
// orchestration pipeline components.
package types

import (
	"fmt"
	"time"
)

// Input modalities accepted by the pipeline.
const (
	InputText  = "text"
	InputAudio = "audio"
	InputImage = "image"
)

// Response modes.
const (
	ModeText  = "text"
	ModeVoice = "voice"
)

// Intent tags produced by the analyzers.
const (
	IntentGeneralChat   = "general_chat"
	IntentHealthSupport = "health_support"
	IntentSelfCare      = "self_care"
	IntentDocument      = "document_understanding"
	IntentImageAnalysis = "image_analysis"
)

// Severity tags.
const (
	SeverityInformational = "informational"
	SeverityLow           = "low"
	SeverityModerate      = "moderate"
	SeverityHigh          = "high"
)

// Image risk labels from the vision classifier.
const (
	RiskNormal         = "normal"
	RiskNeedsAttention = "needs_attention"
)

// InteractionRequest is a single user turn as received from the caller layer.
type InteractionRequest struct {
	InputType    string `json:"input_type"`
	SessionID    string `json:"session_id"`
	UserID       string `json:"user_id,omitempty"`
	Text         string `json:"text,omitempty"`
	Audio        []byte `json:"audio,omitempty"`
	Image        []byte `json:"image,omitempty"`
	ImageType    string `json:"image_type,omitempty"` // category hint: "xray", "skin", "document"
	ResponseMode string `json:"response_mode,omitempty"`
}

// InteractionResponse is the payload returned to the caller.
type InteractionResponse struct {
	Message       string         `json:"message"`
	SessionID     string         `json:"session_id"`
	Intent        string         `json:"intent,omitempty"`
	Severity      string         `json:"severity,omitempty"`
	ImageAnalysis *ImageAnalysis `json:"image_analysis,omitempty"`
	AudioPending  bool           `json:"audio_pending,omitempty"` // downstream TTS should run
	Audio         []byte         `json:"audio,omitempty"`
	TTSFailed     bool           `json:"tts_failed,omitempty"`
}

// ImageAnalysis is the vision classifier verdict for a clinical image.
type ImageAnalysis struct {
	Risk       string  `json:"risk"` // "normal" or "needs_attention"
	Confidence float64 `json:"confidence"`
}

// Summary renders the verdict as a short user-facing clause.
func (a *ImageAnalysis) Summary() string {
	if a == nil {
		return ""
	}
	return fmt.Sprintf("Image review: %s (confidence %.0f%%).", a.Risk, a.Confidence*100)
}

// InteractionResult is the structured output of a single analyzer call.
// Exactly one of ResponseText or Message carries the user-facing text;
// both are treated as synonyms by the response builder.
type InteractionResult struct {
	Intent       string `json:"intent"`
	Severity     string `json:"severity"`
	Emotion      string `json:"emotion,omitempty"`
	Sentiment    string `json:"sentiment,omitempty"`
	ResponseText string `json:"response_text,omitempty"`
	Message      string `json:"message,omitempty"`
}

// Text returns the user-facing text, preferring ResponseText over Message.
func (r *InteractionResult) Text() string {
	if r == nil {
		return ""
	}
	if r.ResponseText != "" {
		return r.ResponseText
	}
	return r.Message
}

// Validate rejects malformed analyzer records at the orchestrator boundary.
func (r *InteractionResult) Validate() error {
	if r == nil {
		return fmt.Errorf("result is nil")
	}
	if r.Intent == "" {
		return fmt.Errorf("result has no intent tag")
	}
	return nil
}

// Consent carries a user's per-modality consent flags.
// All flags default to false: privacy by default.
type Consent struct {
	Memory   bool `json:"memory"`
	Voice    bool `json:"voice"`
	Image    bool `json:"image"`
	Document bool `json:"document"`
}

// DenyAll is the consent record applied to anonymous callers.
func DenyAll() Consent {
	return Consent{}
}

// SessionSummary is the privacy-safe, durable record written when a
// session terminates. Signal fields hold categorical tags only, never
// verbatim user text.
type SessionSummary struct {
	SummaryText       string    `json:"summary_text"`
	IntentObserved    []string  `json:"intent_observed"`
	EmotionObserved   []string  `json:"emotion_observed"`
	SentimentObserved []string  `json:"sentiment_observed"`
	HealthTopics      []string  `json:"health_topics,omitempty"`
	SeverityPeak      string    `json:"severity_peak,omitempty"`
	PrimaryEmotion    string    `json:"primary_emotion,omitempty"`
	OverallSentiment  string    `json:"overall_sentiment,omitempty"`
	EndedAt           time.Time `json:"ended_at"`
}

// TranscriptEntry is one line of the chat-history log. The transcript is
// display-only; the orchestration logic never reads it back.
type TranscriptEntry struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

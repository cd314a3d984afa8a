package summary

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/curamyn/curamyn/internal/media"
	"github.com/curamyn/curamyn/internal/session"
	"github.com/curamyn/curamyn/internal/types"
)

type fakeProvider struct {
	reply string
	err   error
	calls int
}

func (f *fakeProvider) Name() string  { return "fake" }
func (f *fakeProvider) Model() string { return "fake-model" }

func (f *fakeProvider) SimpleMessage(ctx context.Context, userMessage, systemPrompt string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func (f *fakeProvider) VisionMessage(ctx context.Context, prompt string, img *media.ImageData) (string, error) {
	return f.reply, f.err
}

func TestGeneratePlaceholderForEmptySession(t *testing.T) {
	p := &fakeProvider{}
	s := New(p)

	sum := s.Generate(context.Background(), &session.Snapshot{SessionID: "s1"})
	if sum.SummaryText != PlaceholderText {
		t.Errorf("summary = %q, want placeholder", sum.SummaryText)
	}
	if len(sum.IntentObserved) != 0 || len(sum.EmotionObserved) != 0 {
		t.Errorf("empty session carries signals: %+v", sum)
	}
	if p.calls != 0 {
		t.Error("no LLM call expected for a signal-free session")
	}
	if sum.EndedAt.IsZero() {
		t.Error("EndedAt not set")
	}
}

func TestGenerateDeduplicatesAndSortsSignals(t *testing.T) {
	p := &fakeProvider{reply: `{"summary_text":"A calm general session.","primary_emotion":"calm","overall_sentiment":"neutral","severity_peak":"low","health_topics":["sleep"]}`}
	s := New(p)

	snap := &session.Snapshot{
		SessionID:  "s1",
		Intents:    []string{"health_support", "general_chat", "health_support"},
		Emotions:   []string{"tired", "anxious", "tired"},
		Sentiments: []string{"negative", "negative"},
		Severities: []string{"low", "moderate", "low"},
	}
	sum := s.Generate(context.Background(), snap)

	wantIntents := []string{"general_chat", "health_support"}
	if !reflect.DeepEqual(sum.IntentObserved, wantIntents) {
		t.Errorf("intents = %v, want %v", sum.IntentObserved, wantIntents)
	}
	wantEmotions := []string{"anxious", "tired"}
	if !reflect.DeepEqual(sum.EmotionObserved, wantEmotions) {
		t.Errorf("emotions = %v, want %v", sum.EmotionObserved, wantEmotions)
	}
	if !reflect.DeepEqual(sum.SentimentObserved, []string{"negative"}) {
		t.Errorf("sentiments = %v", sum.SentimentObserved)
	}
	if sum.SummaryText != "A calm general session." {
		t.Errorf("summary text = %q", sum.SummaryText)
	}
	if sum.SeverityPeak != "low" {
		t.Errorf("severity peak = %q, want low", sum.SeverityPeak)
	}
}

func TestGenerateLLMFailureKeepsSignals(t *testing.T) {
	p := &fakeProvider{err: errors.New("llm down")}
	s := New(p)

	snap := &session.Snapshot{
		SessionID:  "s1",
		Intents:    []string{"self_care"},
		Severities: []string{"moderate", "low"},
	}
	sum := s.Generate(context.Background(), snap)

	if sum.SummaryText != PlaceholderText {
		t.Errorf("summary = %q, want placeholder on failure", sum.SummaryText)
	}
	if !reflect.DeepEqual(sum.IntentObserved, []string{"self_care"}) {
		t.Errorf("observed intents lost on failure: %v", sum.IntentObserved)
	}
	// Peak is computed locally, not by the model.
	if sum.SeverityPeak != types.SeverityModerate {
		t.Errorf("severity peak = %q, want moderate", sum.SeverityPeak)
	}
}

func TestGenerateToleratesCodeFence(t *testing.T) {
	p := &fakeProvider{reply: "```json\n{\"summary_text\":\"Fenced.\",\"primary_emotion\":\"calm\",\"overall_sentiment\":\"positive\",\"severity_peak\":\"low\",\"health_topics\":[]}\n```"}
	s := New(p)

	sum := s.Generate(context.Background(), &session.Snapshot{
		SessionID: "s1",
		Intents:   []string{"general_chat"},
	})
	if sum.SummaryText != "Fenced." {
		t.Errorf("summary = %q", sum.SummaryText)
	}
}

func TestGenerateClampsEnums(t *testing.T) {
	p := &fakeProvider{reply: `{"summary_text":"ok","primary_emotion":"ecstatic","overall_sentiment":"very good","severity_peak":"catastrophic","health_topics":null}`}
	s := New(p)

	snap := &session.Snapshot{
		SessionID:  "s1",
		Intents:    []string{"general_chat"},
		Severities: []string{"high"},
	}
	sum := s.Generate(context.Background(), snap)

	if sum.PrimaryEmotion != "" {
		t.Errorf("primary emotion = %q, want clamped empty", sum.PrimaryEmotion)
	}
	if sum.OverallSentiment != "" {
		t.Errorf("overall sentiment = %q, want clamped empty", sum.OverallSentiment)
	}
	// An out-of-range peak from the model keeps the locally computed one.
	if sum.SeverityPeak != types.SeverityHigh {
		t.Errorf("severity peak = %q, want high", sum.SeverityPeak)
	}
}

func TestPeakSeverity(t *testing.T) {
	tests := []struct {
		severities []string
		want       string
	}{
		{nil, ""},
		{[]string{"informational"}, "informational"},
		{[]string{"low", "high", "moderate"}, "high"},
		{[]string{"low", "bogus"}, "low"},
	}
	for _, tt := range tests {
		if got := peakSeverity(tt.severities); got != tt.want {
			t.Errorf("peakSeverity(%v) = %q, want %q", tt.severities, got, tt.want)
		}
	}
}

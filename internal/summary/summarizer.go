// Package summary generates the privacy-safe end-of-session summary.
package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/curamyn/curamyn/internal/llm"
	. "github.com/curamyn/curamyn/internal/logging"
	"github.com/curamyn/curamyn/internal/session"
	"github.com/curamyn/curamyn/internal/types"
)

// PlaceholderText is the fixed summary used when a session carries no
// signals, or when summary generation fails.
const PlaceholderText = "The session involved limited or low-signal health-related interaction without sustained discussion."

// Summarizer builds session summaries from categorical signals only. No
// verbatim user text ever reaches the summary or the LLM prompt.
type Summarizer struct {
	provider llm.Provider
}

// New creates a summarizer on top of an LLM provider.
func New(p llm.Provider) *Summarizer {
	return &Summarizer{provider: p}
}

// Generate produces a summary for a session snapshot. It never fails:
// any LLM or parse error falls back to the fixed placeholder narrative.
func (s *Summarizer) Generate(ctx context.Context, snap *session.Snapshot) *types.SessionSummary {
	intents := uniqueSorted(snap.Intents)
	emotions := uniqueSorted(snap.Emotions)
	sentiments := uniqueSorted(snap.Sentiments)

	// No observed signals at all: placeholder, with empty signal fields.
	if len(intents) == 0 && len(emotions) == 0 && len(sentiments) == 0 {
		return &types.SessionSummary{
			SummaryText: PlaceholderText,
			EndedAt:     time.Now().UTC(),
		}
	}

	result := &types.SessionSummary{
		SummaryText:       PlaceholderText,
		IntentObserved:    intents,
		EmotionObserved:   emotions,
		SentimentObserved: sentiments,
		SeverityPeak:      peakSeverity(snap.Severities),
		EndedAt:           time.Now().UTC(),
	}

	narrative, err := s.generateNarrative(ctx, intents, emotions, sentiments, snap.Severities)
	if err != nil {
		L_warn("summary: narrative generation failed, using placeholder", "sessionId", snap.SessionID, "error", err)
		return result
	}

	result.SummaryText = narrative.SummaryText
	result.HealthTopics = narrative.HealthTopics
	result.PrimaryEmotion = clampEnum(narrative.PrimaryEmotion,
		"anxious", "stressed", "tired", "worried", "calm", "sad", "frustrated", "neutral")
	result.OverallSentiment = clampEnum(narrative.OverallSentiment,
		"negative", "neutral", "positive")
	if peak := clampEnum(narrative.SeverityPeak,
		types.SeverityLow, types.SeverityModerate, types.SeverityHigh); peak != "" {
		result.SeverityPeak = peak
	}

	return result
}

// narrative is the strict JSON shape requested from the model.
type narrative struct {
	SummaryText      string   `json:"summary_text"`
	PrimaryEmotion   string   `json:"primary_emotion"`
	OverallSentiment string   `json:"overall_sentiment"`
	SeverityPeak     string   `json:"severity_peak"`
	HealthTopics     []string `json:"health_topics"`
}

func (s *Summarizer) generateNarrative(ctx context.Context, intents, emotions, sentiments, severities []string) (*narrative, error) {
	prompt := fmt.Sprintf(`You are a session summary engine for a health assistant.
You receive only categorical signal tags observed during a session; you
never see user text. Write a short, neutral, clinical summary of what kind
of session this was.

Observed intents: %s
Observed emotions: %s
Observed sentiments: %s
Observed severities: %s

Return ONLY valid JSON, no prose, no markdown:
{
  "summary_text": "2-3 sentence neutral summary of the session",
  "primary_emotion": "anxious | stressed | tired | worried | calm | sad | frustrated | neutral",
  "overall_sentiment": "negative | neutral | positive",
  "severity_peak": "low | moderate | high",
  "health_topics": ["topic1", "topic2"]
}`,
		joinOrNone(intents), joinOrNone(emotions), joinOrNone(sentiments), joinOrNone(severities))

	raw, err := s.provider.SimpleMessage(ctx, prompt, "")
	if err != nil {
		return nil, fmt.Errorf("summary llm: %w", err)
	}

	return parseNarrative(raw)
}

// parseNarrative parses the model output as strict JSON, tolerating a
// markdown code-fence wrapper.
func parseNarrative(raw string) (*narrative, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in summary output")
	}

	var n narrative
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &n); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	if strings.TrimSpace(n.SummaryText) == "" {
		return nil, fmt.Errorf("summary output has no summary_text")
	}

	return &n, nil
}

// uniqueSorted deduplicates and sorts a signal list into a set.
func uniqueSorted(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// severityRank orders severity tags for peak detection.
var severityRank = map[string]int{
	types.SeverityInformational: 0,
	types.SeverityLow:           1,
	types.SeverityModerate:      2,
	types.SeverityHigh:          3,
}

func peakSeverity(severities []string) string {
	peak := ""
	rank := -1
	for _, sev := range severities {
		if r, ok := severityRank[sev]; ok && r > rank {
			rank = r
			peak = sev
		}
	}
	return peak
}

func clampEnum(value string, allowed ...string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	return ""
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}

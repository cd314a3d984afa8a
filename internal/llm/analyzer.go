package llm

import (
	"context"
	"fmt"
	"strings"

	. "github.com/curamyn/curamyn/internal/logging"
	"github.com/curamyn/curamyn/internal/tokens"
	"github.com/curamyn/curamyn/internal/types"
)

// maxInputTokens caps user text woven into analyzer prompts.
const maxInputTokens = 2000

// Analyzer wraps an LLM provider with the analysis prompt variants.
// Every method returns a structured InteractionResult; malformed model
// output degrades to a plain-text result rather than an error.
type Analyzer struct {
	provider Provider
}

// NewAnalyzer creates an analyzer on top of a provider.
func NewAnalyzer(p Provider) *Analyzer {
	return &Analyzer{provider: p}
}

const resultFormat = `Respond with ONLY a JSON object, no prose around it:
{
  "intent": "%s",
  "severity": "informational | low | moderate | high",
  "emotion": "single word, or omit",
  "sentiment": "negative | neutral | positive",
  "response_text": "your reply to the user"
}`

const generalSystem = `You are Curamyn, a friendly health and wellness companion.
You chat naturally, keep replies short, and never diagnose conditions or
recommend medication dosages. ` // result format appended per call

const supportSystem = `You are Curamyn, a supportive health companion.
The user is describing symptoms or discomfort. Acknowledge how they feel,
offer general wellness guidance, and suggest seeing a clinician when
appropriate. Never diagnose, never give medication dosages. `

const selfCareSystem = `You are Curamyn, a self-care coach.
The user wants practical self-care guidance. Give a short list of concrete,
low-risk habits or tips. Never diagnose, never give medication dosages. `

const documentSystem = `You are Curamyn, a health document assistant.
The user uploaded a document; its extracted text follows. Explain what the
document says in plain language. Do not add conclusions the document does
not contain, and never diagnose. `

// AnalyzeGeneral handles general chat turns.
func (a *Analyzer) AnalyzeGeneral(ctx context.Context, text, userID string) (*types.InteractionResult, error) {
	system := generalSystem + fmt.Sprintf(resultFormat, types.IntentGeneralChat)
	return a.analyze(ctx, text, system, types.IntentGeneralChat)
}

// AnalyzeHealth handles symptom-support and self-care turns. mode is
// "support" or "self_care". imageContext, when set, is the most recent
// clinical-image verdict and is woven into the prompt.
func (a *Analyzer) AnalyzeHealth(ctx context.Context, text, userID, mode string, imageContext *types.ImageAnalysis) (*types.InteractionResult, error) {
	var system, intent string
	if mode == "self_care" {
		system = selfCareSystem
		intent = types.IntentSelfCare
	} else {
		system = supportSystem
		intent = types.IntentHealthSupport
	}
	system += fmt.Sprintf(resultFormat, intent)

	if imageContext != nil {
		text = fmt.Sprintf(
			"Earlier in this session an uploaded clinical image was classified as %q (confidence %.2f). The user now says:\n%s",
			imageContext.Risk, imageContext.Confidence, text,
		)
	}

	return a.analyze(ctx, text, system, intent)
}

// AnalyzeDocument handles OCR-extracted document text.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, text, userID string) (*types.InteractionResult, error) {
	system := documentSystem + fmt.Sprintf(resultFormat, types.IntentDocument)
	return a.analyze(ctx, text, system, types.IntentDocument)
}

// validIntents are the labels the intent classifier may return.
var validIntents = map[string]bool{
	types.IntentSelfCare:      true,
	types.IntentHealthSupport: true,
	types.IntentGeneralChat:   true,
}

// ClassifyIntent asks the model for an intent label when the deterministic
// heuristics are inconclusive. Any failure degrades to general_chat.
func (a *Analyzer) ClassifyIntent(ctx context.Context, text string) string {
	prompt := fmt.Sprintf(`Classify the user's intent.

Return ONLY one label:
- self_care
- health_support
- general_chat

User message:
%s`, tokens.Get().Truncate(text, maxInputTokens))

	raw, err := a.provider.SimpleMessage(ctx, prompt, "")
	if err != nil {
		L_warn("llm: intent classification failed", "error", err)
		return types.IntentGeneralChat
	}

	label := strings.ToLower(strings.TrimSpace(raw))
	if validIntents[label] {
		return label
	}

	L_warn("llm: invalid intent label from model", "label", label)
	return types.IntentGeneralChat
}

func (a *Analyzer) analyze(ctx context.Context, text, system, defaultIntent string) (*types.InteractionResult, error) {
	text = tokens.Get().Truncate(text, maxInputTokens)

	raw, err := a.provider.SimpleMessage(ctx, text, system)
	if err != nil {
		return nil, fmt.Errorf("analyze (%s): %w", defaultIntent, err)
	}

	result, err := ParseResult(raw)
	if err != nil {
		// The model answered but not in the agreed shape. Use the raw
		// text as the reply rather than failing the turn.
		L_warn("llm: unparseable analyzer output", "intent", defaultIntent, "error", err)
		return &types.InteractionResult{
			Intent:       defaultIntent,
			Severity:     types.SeverityLow,
			ResponseText: strings.TrimSpace(raw),
		}, nil
	}

	if result.Intent == "" {
		result.Intent = defaultIntent
	}
	if result.Severity == "" {
		result.Severity = types.SeverityLow
	}

	return result, nil
}

package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/curamyn/curamyn/internal/media"
	"github.com/curamyn/curamyn/internal/types"
)

// fakeProvider returns canned output and records the last call.
type fakeProvider struct {
	reply      string
	err        error
	lastUser   string
	lastSystem string
}

func (f *fakeProvider) Name() string  { return "fake" }
func (f *fakeProvider) Model() string { return "fake-model" }

func (f *fakeProvider) SimpleMessage(ctx context.Context, userMessage, systemPrompt string) (string, error) {
	f.lastUser = userMessage
	f.lastSystem = systemPrompt
	return f.reply, f.err
}

func (f *fakeProvider) VisionMessage(ctx context.Context, prompt string, img *media.ImageData) (string, error) {
	return f.reply, f.err
}

func TestAnalyzeGeneralStructured(t *testing.T) {
	p := &fakeProvider{reply: `{"intent":"general_chat","severity":"informational","sentiment":"positive","response_text":"Hello!"}`}
	a := NewAnalyzer(p)

	result, err := a.AnalyzeGeneral(context.Background(), "hi", "u1")
	if err != nil {
		t.Fatalf("AnalyzeGeneral failed: %v", err)
	}
	if result.Intent != types.IntentGeneralChat {
		t.Errorf("intent = %q, want %q", result.Intent, types.IntentGeneralChat)
	}
	if result.Text() != "Hello!" {
		t.Errorf("text = %q, want Hello!", result.Text())
	}
}

func TestAnalyzeUnparseableOutputDegrades(t *testing.T) {
	// Model answered in prose: the raw text becomes the reply, with
	// default intent and severity, and no error.
	p := &fakeProvider{reply: "Just drink more water."}
	a := NewAnalyzer(p)

	result, err := a.AnalyzeGeneral(context.Background(), "hi", "u1")
	if err != nil {
		t.Fatalf("AnalyzeGeneral failed: %v", err)
	}
	if result.Intent != types.IntentGeneralChat {
		t.Errorf("intent = %q, want default %q", result.Intent, types.IntentGeneralChat)
	}
	if result.Severity != types.SeverityLow {
		t.Errorf("severity = %q, want default %q", result.Severity, types.SeverityLow)
	}
	if result.Text() != "Just drink more water." {
		t.Errorf("text = %q", result.Text())
	}
}

func TestAnalyzeProviderErrorPropagates(t *testing.T) {
	p := &fakeProvider{err: errors.New("boom")}
	a := NewAnalyzer(p)

	if _, err := a.AnalyzeGeneral(context.Background(), "hi", "u1"); err == nil {
		t.Fatal("expected error from provider failure")
	}
}

func TestAnalyzeHealthModes(t *testing.T) {
	p := &fakeProvider{reply: `{"intent":"","severity":"","response_text":"ok"}`}
	a := NewAnalyzer(p)

	result, err := a.AnalyzeHealth(context.Background(), "I feel dizzy", "u1", "support", nil)
	if err != nil {
		t.Fatalf("AnalyzeHealth failed: %v", err)
	}
	if result.Intent != types.IntentHealthSupport {
		t.Errorf("support intent = %q, want %q", result.Intent, types.IntentHealthSupport)
	}

	result, err = a.AnalyzeHealth(context.Background(), "tips please", "u1", "self_care", nil)
	if err != nil {
		t.Fatalf("AnalyzeHealth failed: %v", err)
	}
	if result.Intent != types.IntentSelfCare {
		t.Errorf("self_care intent = %q, want %q", result.Intent, types.IntentSelfCare)
	}
}

func TestAnalyzeHealthWeavesImageContext(t *testing.T) {
	p := &fakeProvider{reply: `{"intent":"health_support","severity":"low","response_text":"ok"}`}
	a := NewAnalyzer(p)

	prior := &types.ImageAnalysis{Risk: types.RiskNeedsAttention, Confidence: 0.82}
	if _, err := a.AnalyzeHealth(context.Background(), "what does it mean?", "u1", "support", prior); err != nil {
		t.Fatalf("AnalyzeHealth failed: %v", err)
	}
	if !strings.Contains(p.lastUser, "needs_attention") {
		t.Errorf("prompt missing image risk context: %q", p.lastUser)
	}
	if !strings.Contains(p.lastUser, "what does it mean?") {
		t.Errorf("prompt missing user text: %q", p.lastUser)
	}
}

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		reply string
		err   error
		want  string
	}{
		{reply: "self_care", want: types.IntentSelfCare},
		{reply: " Health_Support \n", want: types.IntentHealthSupport},
		{reply: "banana", want: types.IntentGeneralChat},
		{reply: "", err: errors.New("down"), want: types.IntentGeneralChat},
	}

	for _, tt := range tests {
		a := NewAnalyzer(&fakeProvider{reply: tt.reply, err: tt.err})
		if got := a.ClassifyIntent(context.Background(), "something"); got != tt.want {
			t.Errorf("ClassifyIntent with reply %q = %q, want %q", tt.reply, got, tt.want)
		}
	}
}

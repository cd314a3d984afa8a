package router

import (
	"context"
	"errors"
	"testing"

	"github.com/curamyn/curamyn/internal/types"
)

type fakeSTT struct {
	transcript string
	err        error
	calls      int
}

func (f *fakeSTT) Name() string { return "fake-stt" }

func (f *fakeSTT) Transcribe(ctx context.Context, audio []byte) (string, error) {
	f.calls++
	return f.transcript, f.err
}

type fakeOCR struct {
	text  string
	err   error
	calls int
}

func (f *fakeOCR) ExtractDocumentText(ctx context.Context, image []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeVision struct {
	analysis *types.ImageAnalysis
	err      error
	calls    int
	category string
}

func (f *fakeVision) Classify(ctx context.Context, category string, image []byte) (*types.ImageAnalysis, error) {
	f.calls++
	f.category = category
	return f.analysis, f.err
}

func newTestRouter() (*Router, *fakeSTT, *fakeOCR, *fakeVision) {
	stt := &fakeSTT{}
	ocr := &fakeOCR{}
	vis := &fakeVision{}
	return New(stt, ocr, vis), stt, ocr, vis
}

func TestRouteTextTrimmed(t *testing.T) {
	r, _, _, _ := newTestRouter()

	text, rctx, err := r.Route(context.Background(), &types.InteractionRequest{
		InputType: types.InputText,
		Text:      "  hello  ",
	})
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}
	if text != "hello" {
		t.Errorf("text = %q, want hello", text)
	}
	if rctx == nil || rctx.ImageAnalysis != nil {
		t.Error("text turn should have an empty context")
	}
}

func TestRouteEmptyTextRejected(t *testing.T) {
	r, _, _, _ := newTestRouter()

	for _, text := range []string{"", "   ", "\n\t"} {
		_, _, err := r.Route(context.Background(), &types.InteractionRequest{
			InputType: types.InputText,
			Text:      text,
		})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("Route(%q) error = %v, want ErrValidation", text, err)
		}
		if !IsRejection(err) {
			t.Errorf("Route(%q) error not treated as rejection", text)
		}
	}
}

func TestRouteAudio(t *testing.T) {
	r, stt, _, _ := newTestRouter()
	stt.transcript = "I have a headache"

	text, _, err := r.Route(context.Background(), &types.InteractionRequest{
		InputType: types.InputAudio,
		Audio:     []byte{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}
	if text != "I have a headache" {
		t.Errorf("text = %q", text)
	}
	if stt.calls != 1 {
		t.Errorf("transcribe calls = %d, want 1", stt.calls)
	}
}

func TestRouteAudioEmptyTranscriptIsValid(t *testing.T) {
	r, _, _, _ := newTestRouter()

	text, rctx, err := r.Route(context.Background(), &types.InteractionRequest{
		InputType: types.InputAudio,
		Audio:     []byte{1},
	})
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}
	if text != "" || rctx == nil {
		t.Errorf("empty transcript should pass through, got %q", text)
	}
}

func TestRouteAudioMissingBytesRejected(t *testing.T) {
	r, stt, _, _ := newTestRouter()

	_, _, err := r.Route(context.Background(), &types.InteractionRequest{
		InputType: types.InputAudio,
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
	if stt.calls != 0 {
		t.Error("transcription must not run on a rejected request")
	}
}

func TestRouteAudioTranscribeFailure(t *testing.T) {
	r, stt, _, _ := newTestRouter()
	stt.err = errors.New("stt down")

	_, _, err := r.Route(context.Background(), &types.InteractionRequest{
		InputType: types.InputAudio,
		Audio:     []byte{1},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if IsRejection(err) {
		t.Error("collaborator failure must not be a rejection")
	}
}

func TestRouteDocumentImage(t *testing.T) {
	r, _, ocr, vis := newTestRouter()
	ocr.text = "Blood test report"

	text, rctx, err := r.Route(context.Background(), &types.InteractionRequest{
		InputType: types.InputImage,
		Image:     []byte{0xFF},
		ImageType: "document",
	})
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}
	if text != "Blood test report" {
		t.Errorf("text = %q", text)
	}
	if vis.calls != 0 {
		t.Error("classifier must not run for a document image")
	}
	if rctx.ImageAnalysis != nil {
		t.Error("document turn should carry no image analysis")
	}
}

func TestRouteImageSentinelOnEmptyOCR(t *testing.T) {
	r, _, ocr, _ := newTestRouter()
	ocr.text = "   "

	text, _, err := r.Route(context.Background(), &types.InteractionRequest{
		InputType: types.InputImage,
		Image:     []byte{0xFF},
		ImageType: "document",
	})
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}
	if text != ImageSentinel {
		t.Errorf("text = %q, want %q", text, ImageSentinel)
	}
}

func TestRouteClinicalImage(t *testing.T) {
	r, _, _, vis := newTestRouter()
	vis.analysis = &types.ImageAnalysis{Risk: types.RiskNormal, Confidence: 0.9}

	_, rctx, err := r.Route(context.Background(), &types.InteractionRequest{
		InputType: types.InputImage,
		Image:     []byte{0xFF},
		ImageType: "xray",
	})
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}
	if vis.category != "xray" {
		t.Errorf("classified category = %q, want xray", vis.category)
	}
	if rctx.ImageAnalysis == nil || rctx.ImageAnalysis.Risk != types.RiskNormal {
		t.Errorf("image analysis not attached: %+v", rctx.ImageAnalysis)
	}
}

func TestRouteImageMissingFieldsRejected(t *testing.T) {
	r, _, _, _ := newTestRouter()

	// Missing bytes.
	_, _, err := r.Route(context.Background(), &types.InteractionRequest{
		InputType: types.InputImage,
		ImageType: "xray",
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("missing bytes: error = %v, want ErrValidation", err)
	}

	// Missing category.
	_, _, err = r.Route(context.Background(), &types.InteractionRequest{
		InputType: types.InputImage,
		Image:     []byte{0xFF},
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("missing image_type: error = %v, want ErrValidation", err)
	}
}

func TestRouteUnsupportedInputType(t *testing.T) {
	r, _, _, _ := newTestRouter()

	_, _, err := r.Route(context.Background(), &types.InteractionRequest{
		InputType: "video",
	})
	if !errors.Is(err, ErrUnsupportedInput) {
		t.Errorf("error = %v, want ErrUnsupportedInput", err)
	}
}

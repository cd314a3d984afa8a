// Package router normalizes raw multimodal input into text plus side
// context for the orchestrator.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	. "github.com/curamyn/curamyn/internal/logging"
	"github.com/curamyn/curamyn/internal/ocr"
	"github.com/curamyn/curamyn/internal/stt"
	"github.com/curamyn/curamyn/internal/types"
	"github.com/curamyn/curamyn/internal/vision"
)

// Sentinel errors surfaced to the caller as rejected requests.
var (
	ErrValidation       = errors.New("missing required input")
	ErrUnsupportedInput = errors.New("unsupported input type")
)

// ImageSentinel stands in for images that yield no OCR text.
const ImageSentinel = "[IMAGE_INPUT]"

// IsRejection reports whether an error should surface to the caller as a
// rejected request rather than a collaborator failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrUnsupportedInput)
}

// Context carries side results produced during normalization.
type Context struct {
	ImageAnalysis *types.ImageAnalysis
}

// Router normalizes one turn of input. Collaborator failures propagate;
// there are no retries at this layer.
type Router struct {
	stt    stt.Provider
	ocr    ocr.Extractor
	vision vision.Classifier
}

// New creates a router over the normalization collaborators.
func New(sttProvider stt.Provider, extractor ocr.Extractor, classifier vision.Classifier) *Router {
	return &Router{stt: sttProvider, ocr: extractor, vision: classifier}
}

// Route produces (normalized text, context) for a request.
func (r *Router) Route(ctx context.Context, req *types.InteractionRequest) (string, *Context, error) {
	L_debug("router: routing input", "inputType", req.InputType)

	rctx := &Context{}

	switch req.InputType {
	case types.InputText:
		text := strings.TrimSpace(req.Text)
		if text == "" {
			return "", nil, fmt.Errorf("%w: text", ErrValidation)
		}
		return text, rctx, nil

	case types.InputAudio:
		if len(req.Audio) == 0 {
			return "", nil, fmt.Errorf("%w: audio bytes", ErrValidation)
		}
		transcript, err := r.stt.Transcribe(ctx, req.Audio)
		if err != nil {
			return "", nil, fmt.Errorf("transcribe: %w", err)
		}
		// An empty transcript is valid here; the orchestrator decides
		// how to answer it.
		return transcript, rctx, nil

	case types.InputImage:
		if len(req.Image) == 0 || req.ImageType == "" {
			return "", nil, fmt.Errorf("%w: image bytes and image_type", ErrValidation)
		}

		text, err := r.ocr.ExtractDocumentText(ctx, req.Image)
		if err != nil {
			return "", nil, fmt.Errorf("extract document text: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			text = ImageSentinel
		}

		if vision.SupportedCategories[req.ImageType] {
			analysis, err := r.vision.Classify(ctx, req.ImageType, req.Image)
			if err != nil {
				return "", nil, fmt.Errorf("classify image: %w", err)
			}
			rctx.ImageAnalysis = analysis
		}

		return text, rctx, nil

	default:
		return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedInput, req.InputType)
	}
}

// Package ocr extracts text from uploaded document images.
package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/curamyn/curamyn/internal/llm"
	. "github.com/curamyn/curamyn/internal/logging"
	"github.com/curamyn/curamyn/internal/media"
)

// Extractor is the interface for document text extraction.
type Extractor interface {
	// ExtractDocumentText returns the text found in an image. An empty
	// string is a valid outcome for images with no legible text.
	ExtractDocumentText(ctx context.Context, image []byte) (string, error)
}

const extractPrompt = `Extract all legible text from this image, preserving
reading order. Output the text only, with no commentary. If the image
contains no legible text, output nothing.`

// VisionExtractor performs OCR through a vision-capable chat model.
type VisionExtractor struct {
	provider llm.Provider
}

// NewVisionExtractor creates an extractor on top of a vision provider.
func NewVisionExtractor(p llm.Provider) *VisionExtractor {
	return &VisionExtractor{provider: p}
}

// ExtractDocumentText uploads the image and returns the extracted text.
func (e *VisionExtractor) ExtractDocumentText(ctx context.Context, image []byte) (string, error) {
	img, err := media.PrepareImage(image)
	if err != nil {
		return "", fmt.Errorf("prepare image for ocr: %w", err)
	}

	text, err := e.provider.VisionMessage(ctx, extractPrompt, img)
	if err != nil {
		return "", fmt.Errorf("ocr extraction: %w", err)
	}

	text = strings.TrimSpace(text)
	L_debug("ocr: extraction complete", "chars", len(text))

	return text, nil
}

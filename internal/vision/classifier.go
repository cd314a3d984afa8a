// Package vision classifies clinical images for risk through an external
// inference service.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/curamyn/curamyn/internal/config"
	. "github.com/curamyn/curamyn/internal/logging"
	"github.com/curamyn/curamyn/internal/media"
	"github.com/curamyn/curamyn/internal/types"
)

// Classifier is the interface for image risk classification.
type Classifier interface {
	// Classify returns a risk verdict for a clinical image. It errors on
	// an unsupported category or an undecodable image.
	Classify(ctx context.Context, category string, image []byte) (*types.ImageAnalysis, error)
}

// SupportedCategories are the clinical-image categories the classifier
// accepts.
var SupportedCategories = map[string]bool{
	"xray": true,
	"skin": true,
}

// HTTPClassifier calls a remote inference endpoint.
type HTTPClassifier struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPClassifier creates a classifier for the configured endpoint.
func NewHTTPClassifier(cfg config.VisionConfig) (*HTTPClassifier, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("vision endpoint not configured")
	}

	L_info("vision: classifier initialized", "endpoint", cfg.Endpoint)

	return &HTTPClassifier{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{},
	}, nil
}

// Classify posts the prepared image to the inference endpoint.
func (c *HTTPClassifier) Classify(ctx context.Context, category string, image []byte) (*types.ImageAnalysis, error) {
	if !SupportedCategories[category] {
		return nil, fmt.Errorf("unsupported image category: %s", category)
	}

	// Decode failure is an error per the collaborator contract.
	img, err := media.PrepareImage(image)
	if err != nil {
		return nil, fmt.Errorf("prepare image: %w", err)
	}

	payload, err := json.Marshal(map[string]string{
		"category": category,
		"image":    img.Base64(),
		"mimeType": img.MimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		L_error("vision: classify failed", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("vision API error: status %d", resp.StatusCode)
	}

	var analysis types.ImageAnalysis
	if err := json.Unmarshal(body, &analysis); err != nil {
		return nil, fmt.Errorf("unmarshal verdict: %w", err)
	}
	if analysis.Risk != types.RiskNormal && analysis.Risk != types.RiskNeedsAttention {
		return nil, fmt.Errorf("vision API returned unknown risk label: %q", analysis.Risk)
	}

	L_debug("vision: classified", "category", category, "risk", analysis.Risk, "confidence", analysis.Confidence)

	return &analysis, nil
}

// Disabled is a Classifier used when no inference endpoint is configured.
type Disabled struct{}

func (Disabled) Classify(ctx context.Context, category string, image []byte) (*types.ImageAnalysis, error) {
	return nil, fmt.Errorf("image analysis is not available")
}

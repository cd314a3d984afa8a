// Package response assembles the final payload returned to the caller.
package response

import (
	"context"

	. "github.com/curamyn/curamyn/internal/logging"
	"github.com/curamyn/curamyn/internal/router"
	"github.com/curamyn/curamyn/internal/tts"
	"github.com/curamyn/curamyn/internal/types"
)

// Builder maps an analyzer result plus routing context into the
// user-facing payload. Text assembly is pure; voice synthesis is the one
// collaborator hook, and its failure is a soft flag, never an error.
type Builder struct {
	synthesizer tts.Synthesizer // may be nil: voice mode then only signals audio_pending
}

// NewBuilder creates a builder. synthesizer may be nil.
func NewBuilder(synthesizer tts.Synthesizer) *Builder {
	return &Builder{synthesizer: synthesizer}
}

// Build assembles the response for one turn.
func (b *Builder) Build(ctx context.Context, result *types.InteractionResult, rctx *router.Context, sessionID, responseMode string, consent types.Consent) *types.InteractionResponse {
	resp := &types.InteractionResponse{
		Message:   result.Text(),
		SessionID: sessionID,
		Intent:    result.Intent,
		Severity:  result.Severity,
	}

	if rctx != nil && rctx.ImageAnalysis != nil {
		resp.ImageAnalysis = rctx.ImageAnalysis
		if clause := rctx.ImageAnalysis.Summary(); clause != "" && resp.Message != "" {
			resp.Message = resp.Message + " " + clause
		} else if resp.Message == "" {
			resp.Message = clause
		}
	}

	if responseMode == types.ModeVoice && consent.Voice {
		resp.AudioPending = true
		if b.synthesizer != nil {
			audio, err := b.synthesizer.Synthesize(ctx, resp.Message)
			if err != nil {
				L_warn("response: tts synthesis failed", "sessionId", sessionID, "error", err)
				resp.TTSFailed = true
			} else {
				resp.Audio = audio
			}
		}
	}

	return resp
}

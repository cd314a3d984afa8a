// Package orchestrator ties input routing, safety gating, intent
// dispatch, session-state updates, and response assembly together for a
// single user turn.
package orchestrator

import (
	"context"
	"time"

	"github.com/curamyn/curamyn/internal/llm"
	. "github.com/curamyn/curamyn/internal/logging"
	"github.com/curamyn/curamyn/internal/response"
	"github.com/curamyn/curamyn/internal/router"
	"github.com/curamyn/curamyn/internal/safety"
	"github.com/curamyn/curamyn/internal/session"
	"github.com/curamyn/curamyn/internal/summary"
	"github.com/curamyn/curamyn/internal/types"
)

// Fixed turn-level messages.
const (
	MsgGenericFailure = "Something went wrong while processing your request."
	MsgEmptyAudio     = "Sorry, I could not understand the audio."
)

// DefaultCallTimeout bounds each collaborator call; a timeout is treated
// as that collaborator's generic failure.
const DefaultCallTimeout = 60 * time.Second

// ConsentSource reads durable consent records.
type ConsentSource interface {
	GetConsent(ctx context.Context, userID string) (types.Consent, error)
}

// SummaryWriter persists session summaries to the durable tier.
type SummaryWriter interface {
	SaveSummary(ctx context.Context, sessionID, userID string, s *types.SessionSummary) error
}

// Orchestrator coordinates one interaction turn at a time per session.
type Orchestrator struct {
	router      *router.Router
	store       *session.Store
	consent     ConsentSource
	analyzer    *llm.Analyzer
	summarizer  *summary.Summarizer
	summaries   SummaryWriter
	builder     *response.Builder
	callTimeout time.Duration
}

// New creates an orchestrator over its collaborators.
func New(rt *router.Router, store *session.Store, consent ConsentSource, analyzer *llm.Analyzer, summarizer *summary.Summarizer, summaries SummaryWriter, builder *response.Builder) *Orchestrator {
	return &Orchestrator{
		router:      rt,
		store:       store,
		consent:     consent,
		analyzer:    analyzer,
		summarizer:  summarizer,
		summaries:   summaries,
		builder:     builder,
		callTimeout: DefaultCallTimeout,
	}
}

// RunInteraction processes one user turn. The returned error is non-nil
// only for rejected requests (missing fields, unknown input type); every
// other outcome, including safety denials and collaborator failures, is a
// normal response.
func (o *Orchestrator) RunInteraction(ctx context.Context, req *types.InteractionRequest) (*types.InteractionResponse, error) {
	L_info("orchestrator: interaction started", "sessionId", req.SessionID, "inputType", req.InputType)

	state := o.store.Load(req.SessionID)
	consent := o.loadConsent(ctx, req.UserID)

	// Consent is checked against the presence of raw bytes, before any
	// transcription or OCR cost is paid.
	if d := safety.CheckInputConsent(len(req.Audio) > 0, len(req.Image) > 0, req.ImageType == "document", consent); !d.Allowed {
		return o.denial(req.SessionID, d.Reason), nil
	}

	normalized, rctx, err := o.routeInput(ctx, req)
	if err != nil {
		return nil, err
	}
	if rctx == nil {
		// Collaborator failure during normalization; the turn is
		// isolated, no state was mutated.
		return o.denial(req.SessionID, MsgGenericFailure), nil
	}

	if req.InputType == types.InputAudio && normalized == "" {
		return o.denial(req.SessionID, MsgEmptyAudio), nil
	}

	// The emergency override runs before every other text gate: phrases
	// like "overdose" also match the dosage vocabulary, and the referral
	// must win that overlap.
	if safety.DetectEmergency(normalized) {
		L_warn("orchestrator: emergency override", "sessionId", req.SessionID)
		return o.denial(req.SessionID, safety.MsgEmergency), nil
	}

	// Gating runs on the normalized text, never on raw bytes.
	if d := safety.CheckScope(normalized); !d.Allowed {
		return o.denial(req.SessionID, d.Reason), nil
	}

	// Serialize the read-modify-write of this session's state across the
	// dispatch. Other sessions proceed concurrently.
	state.Lock()
	defer state.Unlock()

	result, err := o.dispatch(ctx, req, normalized, rctx, state)
	if err != nil {
		// Failure is isolated to the turn: no state mutation, no
		// persistence, a fixed generic message.
		L_error("orchestrator: analyzer call failed", "sessionId", req.SessionID, "error", err)
		return o.denial(req.SessionID, MsgGenericFailure), nil
	}

	state.UpdateFromResult(result)
	o.store.Save(ctx, state)

	if consent.Memory && req.UserID != "" {
		o.writeSummary(ctx, req.SessionID, req.UserID, state)
	}

	resp := o.builder.Build(ctx, result, rctx, req.SessionID, req.ResponseMode, consent)

	L_info("orchestrator: interaction completed", "sessionId", req.SessionID, "intent", result.Intent)
	return resp, nil
}

// loadConsent reads the caller's consent record. Anonymous callers, and
// failed reads, get deny-all defaults.
func (o *Orchestrator) loadConsent(ctx context.Context, userID string) types.Consent {
	if userID == "" {
		return types.DenyAll()
	}

	cctx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	consent, err := o.consent.GetConsent(cctx, userID)
	if err != nil {
		L_warn("orchestrator: consent read failed, denying all", "userId", userID, "error", err)
		return types.DenyAll()
	}
	return consent
}

// routeInput normalizes the request. Validation errors propagate to the
// caller; collaborator failures are mapped to (nil context, nil error)
// and answered with the generic failure message.
func (o *Orchestrator) routeInput(ctx context.Context, req *types.InteractionRequest) (string, *router.Context, error) {
	rctx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	normalized, routeCtx, err := o.router.Route(rctx, req)
	if err == nil {
		return normalized, routeCtx, nil
	}

	if router.IsRejection(err) {
		return "", nil, err
	}

	L_error("orchestrator: input normalization failed", "sessionId", req.SessionID, "error", err)
	return "", nil, nil
}

// writeSummary generates and persists a summary of the current cumulative
// state. Failures are logged and swallowed. Callers hold the session lock.
func (o *Orchestrator) writeSummary(ctx context.Context, sessionID, userID string, state *session.Session) {
	sctx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	sum := o.summarizer.Generate(sctx, state.Snapshot())
	if err := o.summaries.SaveSummary(sctx, sessionID, userID, sum); err != nil {
		L_warn("orchestrator: summary write failed", "sessionId", sessionID, "error", err)
	}
}

func (o *Orchestrator) denial(sessionID, message string) *types.InteractionResponse {
	return &types.InteractionResponse{
		Message:   message,
		SessionID: sessionID,
	}
}

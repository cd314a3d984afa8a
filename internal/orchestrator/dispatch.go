package orchestrator

import (
	"context"

	. "github.com/curamyn/curamyn/internal/logging"
	"github.com/curamyn/curamyn/internal/router"
	"github.com/curamyn/curamyn/internal/session"
	"github.com/curamyn/curamyn/internal/types"
)

// turnContext is everything a dispatch rule may look at. The session is
// locked by the caller for the whole dispatch.
type turnContext struct {
	req        *types.InteractionRequest
	normalized string
	rctx       *router.Context
	state      *session.Session
}

// dispatchRule pairs a predicate with a handler. Rules are evaluated
// top-to-bottom and the first match wins; several predicates deliberately
// overlap, so the order encodes real precedence.
type dispatchRule struct {
	name   string
	match  func(t *turnContext) bool
	handle func(ctx context.Context, o *Orchestrator, t *turnContext) (*types.InteractionResult, error)
}

var dispatchRules = []dispatchRule{
	{
		name:  "audio",
		match: func(t *turnContext) bool { return t.req.InputType == types.InputAudio },
		handle: func(ctx context.Context, o *Orchestrator, t *turnContext) (*types.InteractionResult, error) {
			return o.analyzer.AnalyzeGeneral(ctx, t.normalized, t.req.UserID)
		},
	},
	{
		name: "document image",
		match: func(t *turnContext) bool {
			return t.req.InputType == types.InputImage && t.req.ImageType == "document"
		},
		handle: func(ctx context.Context, o *Orchestrator, t *turnContext) (*types.InteractionResult, error) {
			t.state.LastDocumentText = t.normalized
			return o.analyzer.AnalyzeDocument(ctx, t.normalized, t.req.UserID)
		},
	},
	{
		name:  "clinical image",
		match: func(t *turnContext) bool { return t.req.InputType == types.InputImage },
		handle: func(ctx context.Context, o *Orchestrator, t *turnContext) (*types.InteractionResult, error) {
			if t.rctx.ImageAnalysis != nil {
				t.state.LastImageAnalysis = t.rctx.ImageAnalysis
			}
			// No LLM call for a plain image turn; the risk verdict is
			// attached by the response builder.
			return &types.InteractionResult{
				Intent:       types.IntentImageAnalysis,
				Severity:     types.SeverityInformational,
				ResponseText: "I've reviewed your image.",
			}, nil
		},
	},
	{
		name: "image follow-up",
		match: func(t *turnContext) bool {
			return t.req.InputType == types.InputText && t.state.LastImageAnalysis != nil
		},
		handle: func(ctx context.Context, o *Orchestrator, t *turnContext) (*types.InteractionResult, error) {
			prior := t.state.LastImageAnalysis
			// One follow-up resolves the pending image context.
			t.state.LastImageAnalysis = nil
			return o.analyzer.AnalyzeHealth(ctx, t.normalized, t.req.UserID, "support", prior)
		},
	},
	{
		name:  "non-health chat",
		match: func(t *turnContext) bool { return !isHealthRelated(t.normalized) },
		handle: func(ctx context.Context, o *Orchestrator, t *turnContext) (*types.InteractionResult, error) {
			return o.analyzer.AnalyzeGeneral(ctx, t.normalized, t.req.UserID)
		},
	},
	{
		name:  "self-care",
		match: func(t *turnContext) bool { return asksSelfCare(t.normalized) },
		handle: func(ctx context.Context, o *Orchestrator, t *turnContext) (*types.InteractionResult, error) {
			return o.analyzer.AnalyzeHealth(ctx, t.normalized, t.req.UserID, "self_care", nil)
		},
	},
	{
		name:  "symptom support",
		match: func(t *turnContext) bool { return mentionsSymptom(t.normalized) },
		handle: func(ctx context.Context, o *Orchestrator, t *turnContext) (*types.InteractionResult, error) {
			return o.analyzer.AnalyzeHealth(ctx, t.normalized, t.req.UserID, "support", nil)
		},
	},
	{
		name:  "fallback",
		match: func(t *turnContext) bool { return true },
		handle: func(ctx context.Context, o *Orchestrator, t *turnContext) (*types.InteractionResult, error) {
			// Deterministic rules were inconclusive; ask the model.
			switch o.analyzer.ClassifyIntent(ctx, t.normalized) {
			case types.IntentSelfCare:
				return o.analyzer.AnalyzeHealth(ctx, t.normalized, t.req.UserID, "self_care", nil)
			case types.IntentHealthSupport:
				return o.analyzer.AnalyzeHealth(ctx, t.normalized, t.req.UserID, "support", nil)
			default:
				return o.analyzer.AnalyzeGeneral(ctx, t.normalized, t.req.UserID)
			}
		},
	},
}

// dispatch selects and runs the analyzer for this turn. Callers hold the
// session lock.
func (o *Orchestrator) dispatch(ctx context.Context, req *types.InteractionRequest, normalized string, rctx *router.Context, state *session.Session) (*types.InteractionResult, error) {
	t := &turnContext{req: req, normalized: normalized, rctx: rctx, state: state}

	dctx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	for _, rule := range dispatchRules {
		if rule.match(t) {
			L_debug("orchestrator: dispatch", "rule", rule.name, "sessionId", req.SessionID)
			return rule.handle(dctx, o, t)
		}
	}

	// Unreachable: the fallback rule always matches.
	return o.analyzer.AnalyzeGeneral(dctx, normalized, req.UserID)
}

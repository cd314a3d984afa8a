// Package safety enforces consent, scope, and content gates on user turns.
// All checks are pure functions over text and flags; gating always runs on
// normalized text (post-transcription/OCR), never on raw bytes.
package safety

import (
	"strings"

	. "github.com/curamyn/curamyn/internal/logging"
	"github.com/curamyn/curamyn/internal/types"
)

// Decision is the verdict of a gate check. A denied decision carries the
// user-facing message; it is a normal response, not an error.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the passing verdict.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny produces a denial with a user-facing message.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// User-facing denial messages.
const (
	MsgVoiceDenied    = "Voice processing is disabled by user consent."
	MsgImageDenied    = "Image processing is disabled by user consent."
	MsgDocumentDenied = "Document processing is disabled by user consent."
	MsgOutOfScope     = "I'm here to help with health-related questions only. Please ask about symptoms, wellness, or self-care."
	MsgNoDiagnosis    = "Medical diagnosis requests are not supported."
	MsgNoDosage       = "Medication dosage advice is not allowed."
)

// CheckInputConsent verifies consent for every modality present in the
// request, before any transcription or OCR cost is paid. The first
// violation found wins.
func CheckInputConsent(hasAudio, hasImage, isDocument bool, consent types.Consent) Decision {
	if hasAudio && !consent.Voice {
		L_warn("safety: voice input blocked by consent")
		return Deny(MsgVoiceDenied)
	}
	if hasImage && !consent.Image {
		L_warn("safety: image input blocked by consent")
		return Deny(MsgImageDenied)
	}
	if hasImage && isDocument && !consent.Document {
		L_warn("safety: document input blocked by consent")
		return Deny(MsgDocumentDenied)
	}
	return Allow()
}

// CheckScope runs the output-side content checks on normalized text, in
// fixed order: scope, then diagnosis, then dosage. The first match wins.
func CheckScope(text string) Decision {
	if text == "" {
		return Allow()
	}
	lowered := strings.ToLower(text)

	if !containsAny(lowered, healthVocabulary) && containsAny(lowered, outOfScopePatterns) {
		L_warn("safety: out-of-scope request blocked")
		return Deny(MsgOutOfScope)
	}

	if containsAny(lowered, diagnosisPhrases) {
		L_warn("safety: diagnosis request blocked")
		return Deny(MsgNoDiagnosis)
	}

	if containsAny(lowered, dosagePhrases) {
		L_warn("safety: dosage request blocked")
		return Deny(MsgNoDosage)
	}

	return Allow()
}

// DetectEmergency reports crisis language in normalized text. A positive
// verdict overrides all downstream routing.
func DetectEmergency(text string) bool {
	if text == "" {
		return false
	}
	lowered := strings.ToLower(text)

	if containsAny(lowered, emergencyPhrases) {
		L_warn("safety: emergency language detected")
		return true
	}
	return false
}

func containsAny(lowered string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lowered, p) {
			return true
		}
	}
	return false
}

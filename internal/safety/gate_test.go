package safety

import (
	"testing"

	"github.com/curamyn/curamyn/internal/types"
)

func TestCheckInputConsentOrder(t *testing.T) {
	// All modalities present, no consent: the audio violation wins.
	d := CheckInputConsent(true, true, true, types.DenyAll())
	if d.Allowed {
		t.Fatal("expected denial with all consent flags false")
	}
	if d.Reason != MsgVoiceDenied {
		t.Errorf("got %q, want voice denial first", d.Reason)
	}

	// Voice granted, image still blocked.
	d = CheckInputConsent(true, true, true, types.Consent{Voice: true})
	if d.Reason != MsgImageDenied {
		t.Errorf("got %q, want image denial", d.Reason)
	}

	// Voice and image granted, document still blocked.
	d = CheckInputConsent(true, true, true, types.Consent{Voice: true, Image: true})
	if d.Reason != MsgDocumentDenied {
		t.Errorf("got %q, want document denial", d.Reason)
	}

	d = CheckInputConsent(true, true, true, types.Consent{Voice: true, Image: true, Document: true})
	if !d.Allowed {
		t.Errorf("expected allow with all modality consents granted, got %q", d.Reason)
	}
}

func TestCheckInputConsentAbsentModalities(t *testing.T) {
	// A text-only turn needs no modality consent at all.
	d := CheckInputConsent(false, false, false, types.DenyAll())
	if !d.Allowed {
		t.Errorf("text-only turn denied: %q", d.Reason)
	}

	// A non-document image only needs image consent.
	d = CheckInputConsent(false, true, false, types.Consent{Image: true})
	if !d.Allowed {
		t.Errorf("image turn with image consent denied: %q", d.Reason)
	}
}

func TestCheckScope(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string // "" means allowed
	}{
		{"plain health question", "I have a headache", ""},
		{"general knowledge", "What is the capital of France?", MsgOutOfScope},
		{"code request", "write code to sort a list", MsgOutOfScope},
		{"diagnosis request", "Do I have cancer?", MsgNoDiagnosis},
		{"diagnose verb", "Can you diagnose this rash?", MsgNoDiagnosis},
		{"dosage request", "How many mg of ibuprofen should I take?", MsgNoDosage},
		{"dose word", "What dose of paracetamol is safe?", MsgNoDosage},
		{"health vocab overrides scope", "movie night gave me a headache", ""},
		{"empty text", "", ""},
		{"greeting", "Hello there", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CheckScope(tt.text)
			if tt.want == "" {
				if !d.Allowed {
					t.Errorf("CheckScope(%q) denied: %q", tt.text, d.Reason)
				}
				return
			}
			if d.Allowed {
				t.Fatalf("CheckScope(%q) allowed, want %q", tt.text, tt.want)
			}
			if d.Reason != tt.want {
				t.Errorf("CheckScope(%q) = %q, want %q", tt.text, d.Reason, tt.want)
			}
		})
	}
}

func TestCheckScopeOrdering(t *testing.T) {
	// A text hitting both diagnosis and dosage phrases: diagnosis wins.
	d := CheckScope("diagnose me and tell me the dosage")
	if d.Allowed {
		t.Fatal("expected denial")
	}
	if d.Reason != MsgNoDiagnosis {
		t.Errorf("got %q, want diagnosis check before dosage", d.Reason)
	}
}

func TestDetectEmergency(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"I can't breathe", true},
		{"i think my friend took an overdose", true},
		{"i cannot breathe properly", true},
		{"severe chest pain right now", true},
		{"I want to end my life", true},
		{"my chest feels a bit tight", false},
		{"I have a mild headache", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := DetectEmergency(tt.text); got != tt.want {
			t.Errorf("DetectEmergency(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

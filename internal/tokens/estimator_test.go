package tokens

import (
	"strings"
	"testing"
)

func TestFallbackCount(t *testing.T) {
	// A zero-value estimator uses the chars/4 fallback.
	e := &Estimator{}

	if got := e.Count(""); got != 0 {
		t.Errorf("Count(\"\") = %d, want 0", got)
	}
	if got := e.Count(strings.Repeat("a", 40)); got != 10 {
		t.Errorf("Count = %d, want 10", got)
	}
}

func TestFallbackTruncate(t *testing.T) {
	e := &Estimator{}

	long := strings.Repeat("a", 100)
	got := e.Truncate(long, 10)
	if len(got) != 40 {
		t.Errorf("truncated length = %d, want 40", len(got))
	}

	short := "short"
	if got := e.Truncate(short, 10); got != short {
		t.Errorf("Truncate changed text under the limit: %q", got)
	}
	if got := e.Truncate(long, 0); got != long {
		t.Errorf("Truncate with zero budget should be a no-op")
	}
}

func TestGetNeverNil(t *testing.T) {
	e := Get()
	if e == nil {
		t.Fatal("Get returned nil")
	}
	// Whatever the backing encoding, a count is always produced.
	if got := e.Count("hello world"); got <= 0 {
		t.Errorf("Count = %d, want > 0", got)
	}
}

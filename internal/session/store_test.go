package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/curamyn/curamyn/internal/types"
)

func TestLoadCreatesAndReuses(t *testing.T) {
	st := NewStore(time.Hour, nil)

	s1 := st.Load("s1")
	if s1 == nil {
		t.Fatal("Load returned nil")
	}
	if st.Len() != 1 {
		t.Errorf("Len = %d, want 1", st.Len())
	}

	s1.Intents = append(s1.Intents, types.IntentGeneralChat)

	// Loading the same id again returns the same state untouched except
	// for the activity timestamp.
	again := st.Load("s1")
	if again != s1 {
		t.Error("Load created a new session for an existing id")
	}
	if len(again.Intents) != 1 {
		t.Errorf("intents = %v, want 1 entry preserved", again.Intents)
	}

	// A different id is fully independent.
	s2 := st.Load("s2")
	if s2 == s1 {
		t.Error("distinct ids share state")
	}
	if len(s2.Intents) != 0 {
		t.Errorf("fresh session carries intents: %v", s2.Intents)
	}
}

func TestSweepRemovesExpired(t *testing.T) {
	st := NewStore(10*time.Millisecond, nil)

	st.Load("old")
	fresh := st.Load("fresh")
	time.Sleep(25 * time.Millisecond)
	fresh.Touch()

	removed := st.Sweep()
	if removed != 1 {
		t.Errorf("Sweep removed %d, want 1", removed)
	}
	if st.Peek("old") != nil {
		t.Error("expired session still present")
	}
	if st.Peek("fresh") == nil {
		t.Error("fresh session was swept")
	}
}

func TestLoadRefreshesActivity(t *testing.T) {
	st := NewStore(30*time.Millisecond, nil)

	st.Load("s1")
	time.Sleep(20 * time.Millisecond)
	st.Load("s1") // refresh
	time.Sleep(20 * time.Millisecond)

	// 40ms since creation but only 20ms since the last load.
	if removed := st.Sweep(); removed != 0 {
		t.Errorf("Sweep removed %d, want 0 after refresh", removed)
	}
}

func TestLoadSweepsBeforeLookup(t *testing.T) {
	st := NewStore(10*time.Millisecond, nil)

	old := st.Load("s1")
	old.Intents = append(old.Intents, types.IntentHealthSupport)
	time.Sleep(25 * time.Millisecond)

	// The id expired; loading it again starts from scratch.
	reborn := st.Load("s1")
	if reborn == old {
		t.Error("expired session was resurrected")
	}
	if len(reborn.Intents) != 0 {
		t.Errorf("reborn session carries intents: %v", reborn.Intents)
	}
}

func TestRemove(t *testing.T) {
	st := NewStore(time.Hour, nil)

	st.Load("s1")
	st.Remove("s1")
	if st.Peek("s1") != nil {
		t.Error("session present after Remove")
	}

	// Removing a missing id is a no-op.
	st.Remove("nope")
}

func TestUpdateFromResult(t *testing.T) {
	s := newSession("s1")

	s.UpdateFromResult(&types.InteractionResult{
		Intent:    types.IntentHealthSupport,
		Severity:  types.SeverityModerate,
		Emotion:   "anxious",
		Sentiment: "negative",
	})
	// Sparse result: only present fields append.
	s.UpdateFromResult(&types.InteractionResult{
		Intent: types.IntentGeneralChat,
	})

	if got := len(s.Intents); got != 2 {
		t.Errorf("intents = %v", s.Intents)
	}
	if got := len(s.Severities); got != 1 {
		t.Errorf("severities = %v", s.Severities)
	}
	if got := len(s.Emotions); got != 1 {
		t.Errorf("emotions = %v", s.Emotions)
	}

	// A malformed record mutates nothing.
	s.UpdateFromResult(&types.InteractionResult{Severity: types.SeverityHigh})
	if got := len(s.Intents); got != 2 {
		t.Errorf("malformed record appended: intents = %v", s.Intents)
	}
	if got := len(s.Severities); got != 1 {
		t.Errorf("malformed record appended: severities = %v", s.Severities)
	}
}

func TestSnapshotCopies(t *testing.T) {
	s := newSession("s1")
	s.Intents = []string{types.IntentSelfCare}
	s.LastImageAnalysis = &types.ImageAnalysis{Risk: types.RiskNormal, Confidence: 0.5}

	snap := s.Snapshot()
	snap.Intents[0] = "mutated"
	snap.LastImageAnalysis.Risk = "mutated"

	if s.Intents[0] != types.IntentSelfCare {
		t.Error("snapshot shares the intents slice")
	}
	if s.LastImageAnalysis.Risk != types.RiskNormal {
		t.Error("snapshot shares the image analysis")
	}
}

type failingSaver struct{ calls int }

func (f *failingSaver) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	f.calls++
	return errors.New("disk full")
}

func TestSaveSwallowsFailure(t *testing.T) {
	saver := &failingSaver{}
	st := NewStore(time.Hour, saver)

	s := st.Load("s1")
	st.Save(context.Background(), s)

	if saver.calls != 1 {
		t.Errorf("saver calls = %d, want 1", saver.calls)
	}
	// The session must survive a persistence failure.
	if st.Peek("s1") == nil {
		t.Error("session lost after failed save")
	}
}

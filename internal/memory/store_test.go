package memory

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "test.db"), 3)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.AddExchange(ctx, "hello", "hi there"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.AddExchange(ctx, "how are you", "fine"); err != nil {
		t.Fatalf("add: %v", err)
	}

	exchanges, err := s.Recent(ctx)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(exchanges) != 2 {
		t.Fatalf("expected 2 exchanges, got %d", len(exchanges))
	}
	// Oldest first.
	if exchanges[0].User != "hello" {
		t.Errorf("expected oldest exchange first, got %q", exchanges[0].User)
	}
	if exchanges[1].Assistant != "fine" {
		t.Errorf("expected newest exchange last, got %q", exchanges[1].Assistant)
	}
}

func TestWindowPruning(t *testing.T) {
	s := newTestStore(t) // window of 3
	ctx := context.Background()

	for _, msg := range []string{"one", "two", "three", "four", "five"} {
		if _, err := s.AddExchange(ctx, msg, "ack"); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	exchanges, err := s.Recent(ctx)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(exchanges) != 3 {
		t.Fatalf("expected window of 3 exchanges, got %d", len(exchanges))
	}
	if exchanges[0].User != "three" {
		t.Errorf("expected oldest surviving exchange to be 'three', got %q", exchanges[0].User)
	}
}

func TestClearExchanges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.AddExchange(ctx, "a", "b")
	if err := s.ClearExchanges(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	exchanges, _ := s.Recent(ctx)
	if len(exchanges) != 0 {
		t.Errorf("expected no exchanges after clear, got %d", len(exchanges))
	}
}

func TestPreferences(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetPreference(ctx, "language", "Go"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetPreference(ctx, "style", "concise"); err != nil {
		t.Fatalf("set: %v", err)
	}
	// Overwrite.
	if err := s.SetPreference(ctx, "language", "Go 1.25"); err != nil {
		t.Fatalf("set: %v", err)
	}

	v, err := s.GetPreference(ctx, "language")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v != "Go 1.25" {
		t.Errorf("expected overwritten value, got %q", v)
	}

	prefs, err := s.Preferences(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(prefs) != 2 {
		t.Errorf("expected 2 preferences, got %d", len(prefs))
	}
}

func TestGetPreference_Missing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetPreference(context.Background(), "nope"); err == nil {
		t.Error("expected error for missing preference")
	}
}

func TestFormatPreferences_Sorted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.SetPreference(ctx, "b-key", "2")
	s.SetPreference(ctx, "a-key", "1")

	got, err := s.FormatPreferences(ctx)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	want := "User Context: a-key: 1, b-key: 2"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestGoal_MergesQueryAndPreferences(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	goal, err := s.Goal(ctx, "what is a goroutine?")
	if err != nil {
		t.Fatalf("goal: %v", err)
	}
	if goal != "what is a goroutine?" {
		t.Errorf("goal without preferences should be the bare query, got %q", goal)
	}

	s.SetPreference(ctx, "level", "beginner")
	goal, err = s.Goal(ctx, "what is a goroutine?")
	if err != nil {
		t.Fatalf("goal: %v", err)
	}
	if goal != "what is a goroutine?\n\nUser Context: level: beginner" {
		t.Errorf("unexpected merged goal: %q", goal)
	}
}

func TestGetStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.AddExchange(ctx, "a", "b")
	s.SetPreference(ctx, "k", "v")

	st, err := s.GetStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Exchanges != 1 || st.Preferences != 1 {
		t.Errorf("unexpected stats: %+v", st)
	}
}

package history

import (
	"path/filepath"
	"testing"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	log, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })
	return log
}

func TestRecordAndQuery(t *testing.T) {
	log := openTestLog(t)

	if err := log.Record("foo", EventStarted, 100); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := log.Record("foo", EventStopped, 100); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := log.Record("bar", EventStarted, 200); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	events, err := log.Events("foo", 10)
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events for foo, got %d", len(events))
	}
	// Newest first.
	if events[0].Type != EventStopped || events[1].Type != EventStarted {
		t.Fatalf("unexpected order: %+v", events)
	}
	if events[0].At == "" {
		t.Fatal("expected timestamps on events")
	}
}

func TestEventsAllSessions(t *testing.T) {
	log := openTestLog(t)

	_ = log.Record("a", EventStarted, 1)
	_ = log.Record("b", EventStarted, 2)

	events, err := log.Events("", 10)
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
}

func TestEventsLimit(t *testing.T) {
	log := openTestLog(t)

	for i := 0; i < 5; i++ {
		_ = log.Record("foo", EventStarted, 1)
	}

	events, err := log.Events("foo", 3)
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected limit of 3, got %d", len(events))
	}
}

func TestEventsEmpty(t *testing.T) {
	log := openTestLog(t)

	events, err := log.Events("none", 10)
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}

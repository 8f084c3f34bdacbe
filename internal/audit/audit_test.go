package audit

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLogger_LogAndRead(t *testing.T) {
	dir := t.TempDir()
	logger := NewLogger(dir)

	if err := logger.LogEvent(EventCreate, "alpha", "port 18789"); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}
	if err := logger.LogEvent(EventStart, "alpha", ""); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}
	if err := logger.LogEvent(EventDestroy, "beta", "archived"); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}

	events, err := logger.Events("alpha")
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events for alpha, want 2", len(events))
	}
	if events[0].Type != EventCreate || events[1].Type != EventStart {
		t.Errorf("unexpected event order: %v, %v", events[0].Type, events[1].Type)
	}
	if events[0].Details != "port 18789" {
		t.Errorf("details = %q", events[0].Details)
	}
	if events[0].Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestLogger_NoEvents(t *testing.T) {
	logger := NewLogger(t.TempDir())

	events, err := logger.Events("ghost")
	if err != nil {
		t.Fatalf("Events on missing log: %v", err)
	}
	if events != nil {
		t.Errorf("expected nil events, got %v", events)
	}
}

func TestLogger_SkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	logger := NewLogger(dir)

	_ = logger.LogEvent(EventStop, "alpha", "")

	path := filepath.Join(dir, "alpha.events.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("not json\n")
	_ = f.Close()

	_ = logger.Log(Event{Type: EventHealth, Instance: "alpha", Timestamp: time.Now()})

	events, err := logger.Events("alpha")
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events, want 2 (malformed line skipped)", len(events))
	}
}

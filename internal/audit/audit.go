// Package audit provides structured event logging for instance lifecycle
// events. Events are stored as JSON Lines (JSONL) files, one per instance.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// EventType classifies a lifecycle event.
type EventType string

const (
	EventCreate   EventType = "create"
	EventDeploy   EventType = "deploy"
	EventStart    EventType = "start"
	EventStop     EventType = "stop"
	EventUpdate   EventType = "update"
	EventDestroy  EventType = "destroy"
	EventSnapshot EventType = "snapshot"
	EventHealth   EventType = "health"
	EventError    EventType = "error"
)

// Event represents a single audit log entry.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Instance  string    `json:"instance"`
	Details   string    `json:"details,omitempty"`
}

// Logger writes and reads audit events for instances.
// Events are stored in {stateDir}/{name}.events.jsonl.
type Logger struct {
	stateDir string
}

// NewLogger creates a new audit logger rooted at stateDir.
func NewLogger(stateDir string) *Logger {
	return &Logger{stateDir: stateDir}
}

// eventPath returns the path to the JSONL event log for an instance.
func (l *Logger) eventPath(instance string) string {
	return filepath.Join(l.stateDir, instance+".events.jsonl")
}

// Log appends an event to the instance's audit log.
func (l *Logger) Log(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	path := l.eventPath(event.Instance)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create audit log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// LogEvent is a convenience method that creates and logs an event.
func (l *Logger) LogEvent(eventType EventType, instance, details string) error {
	return l.Log(Event{
		Timestamp: time.Now(),
		Type:      eventType,
		Instance:  instance,
		Details:   details,
	})
}

// Events reads all events for an instance in chronological order.
func (l *Logger) Events(instance string) ([]Event, error) {
	path := l.eventPath(instance)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue // Skip malformed lines
		}
		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("error reading audit log: %w", err)
	}

	return events, nil
}

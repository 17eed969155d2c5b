// Package diag collects severity-tagged diagnostic events.
//
// Traversal problems (unknown output kinds, unmapped categories, malformed
// species folders) are recorded here instead of being logged ambiently, so a
// caller can inspect everything that was skipped after a catalog is built.
package diag

import (
	"fmt"
	"sync"
)

type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "unknown"
}

// Event is one recorded diagnostic. Path is the file the event refers to,
// empty when the event is not about a specific file.
type Event struct {
	Severity Severity
	Path     string
	Message  string
}

func (e Event) String() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Path, e.Message)
}

// Log is an append-only event list, safe for concurrent use.
type Log struct {
	mu     sync.Mutex
	events []Event
}

func NewLog() *Log {
	return &Log{}
}

func (l *Log) Infof(path, format string, args ...any) {
	l.append(Event{Severity: Info, Path: path, Message: fmt.Sprintf(format, args...)})
}

func (l *Log) Warnf(path, format string, args ...any) {
	l.append(Event{Severity: Warning, Path: path, Message: fmt.Sprintf(format, args...)})
}

func (l *Log) Errorf(path, format string, args ...any) {
	l.append(Event{Severity: Error, Path: path, Message: fmt.Sprintf(format, args...)})
}

func (l *Log) append(e Event) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

// Events returns a copy of all recorded events in insertion order.
func (l *Log) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Warnings returns events at Warning severity or above.
func (l *Log) Warnings() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Event
	for _, e := range l.events {
		if e.Severity >= Warning {
			out = append(out, e)
		}
	}
	return out
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

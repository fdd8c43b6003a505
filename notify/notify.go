// Package notify is a process-wide, fire-and-forget broadcast channel used to
// inform the presentation layer of session events. There is no delivery
// guarantee and no queuing beyond what a listener itself buffers.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity classifies a notification for presentation purposes.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Notification is a single broadcast message. Duration is a hint for how long
// a visual representation should remain before auto-dismissal; zero means
// "persist until manually dismissed".
type Notification struct {
	ID       string
	Message  string
	Severity Severity
	Duration time.Duration
}

// Notifier is the emitting side of the broadcast channel.
type Notifier interface {
	Emit(message string, severity Severity, duration time.Duration)
}

var _ Notifier = (*Emitter)(nil)

// Emitter broadcasts notifications to zero or more subscribed listeners.
type Emitter struct {
	mu        sync.RWMutex
	listeners map[string]func(Notification)
}

func NewEmitter() *Emitter {
	return &Emitter{
		listeners: map[string]func(Notification){},
	}
}

// Subscribe registers a listener and returns its unsubscribe function.
// Unsubscribing twice is a no-op.
func (e *Emitter) Subscribe(listener func(Notification)) func() {
	id := uuid.New().String()

	e.mu.Lock()
	e.listeners[id] = listener
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

// Emit broadcasts a notification to all current listeners.
func (e *Emitter) Emit(message string, severity Severity, duration time.Duration) {
	e.mu.RLock()
	listeners := make([]func(Notification), 0, len(e.listeners))
	for _, listener := range e.listeners {
		listeners = append(listeners, listener)
	}
	e.mu.RUnlock()

	n := Notification{
		ID:       uuid.New().String(),
		Message:  message,
		Severity: severity,
		Duration: duration,
	}
	for _, listener := range listeners {
		listener(n)
	}
}

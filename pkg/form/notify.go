package form

import "sync"

// Severity classifies a transient notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is a transient message shown to the user, the terminal
// equivalent of a toast.
type Notification struct {
	Severity Severity
	Message  string
}

// Notifier receives notifications emitted by sessions.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify implements Notifier.
func (fn NotifierFunc) Notify(n Notification) {
	fn(n)
}

type discardNotifier struct{}

func (discardNotifier) Notify(Notification) {}

// Log is a concurrency-safe Notifier that keeps every notification.
type Log struct {
	mu    sync.Mutex
	items []Notification
}

// Notify implements Notifier.
func (l *Log) Notify(n Notification) {
	l.mu.Lock()
	l.items = append(l.items, n)
	l.mu.Unlock()
}

// All returns a copy of the recorded notifications.
func (l *Log) All() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Notification, len(l.items))
	copy(out, l.items)
	return out
}

// Drain returns and forgets the recorded notifications.
func (l *Log) Drain() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.items
	l.items = nil
	return out
}

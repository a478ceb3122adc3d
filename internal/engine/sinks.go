package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/watchtower/internal/model"
)

// SnapshotStore persists whole collections as JSON arrays.
// Read reports false when the collection has never been written.
type SnapshotStore interface {
	Read(ctx context.Context, c model.Collection) ([]byte, bool, error)
	Replace(ctx context.Context, c model.Collection, data []byte) error
}

// ActorSource yields the actor notifications are derived for.
// It is consulted once per pass.
type ActorSource interface {
	CurrentActor() (model.Actor, bool)
}

// NavigationSink receives the target of a notification the actor acted on.
type NavigationSink interface {
	Navigate(target string)
}

// Severity grades a toast.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ToastSink shows short transient messages, such as storage failures and
// violation summaries.
type ToastSink interface {
	Toast(text string, severity Severity)
}

// StaticActor is an ActorSource whose actor is set explicitly, as on login
// and logout.
type StaticActor struct {
	mu      sync.RWMutex
	actor   model.Actor
	present bool
}

// NewStaticActor creates a source that yields a.
func NewStaticActor(a model.Actor) *StaticActor {
	return &StaticActor{actor: a, present: true}
}

// CurrentActor implements ActorSource.
func (s *StaticActor) CurrentActor() (model.Actor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.actor, s.present
}

// Set makes a the current actor.
func (s *StaticActor) Set(a model.Actor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actor, s.present = a, true
}

// Clear removes the current actor.
func (s *StaticActor) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actor, s.present = model.Actor{}, false
}

// LogToasts writes toasts to the default slog logger.
type LogToasts struct{}

// Toast implements ToastSink.
func (LogToasts) Toast(text string, severity Severity) {
	switch severity {
	case SeverityError:
		slog.Error("toast", "text", text)
	case SeverityWarning:
		slog.Warn("toast", "text", text)
	default:
		slog.Info("toast", "text", text)
	}
}

// LogNavigation writes navigation requests to the default slog logger.
type LogNavigation struct{}

// Navigate implements NavigationSink.
func (LogNavigation) Navigate(target string) {
	slog.Info("navigate", "target", target)
}

// Toast is one recorded toast.
type Toast struct {
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
}

// ToastLog records toasts in order. Safe for concurrent use.
type ToastLog struct {
	mu     sync.Mutex
	toasts []Toast
}

// Toast implements ToastSink.
func (l *ToastLog) Toast(text string, severity Severity) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.toasts = append(l.toasts, Toast{Text: text, Severity: severity})
}

// Toasts returns a copy of the recorded toasts.
func (l *ToastLog) Toasts() []Toast {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Toast, len(l.toasts))
	copy(out, l.toasts)
	return out
}

// NavigationLog records navigation targets in order. Safe for concurrent use.
type NavigationLog struct {
	mu      sync.Mutex
	targets []string
}

// Navigate implements NavigationSink.
func (l *NavigationLog) Navigate(target string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.targets = append(l.targets, target)
}

// Targets returns a copy of the recorded targets.
func (l *NavigationLog) Targets() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.targets))
	copy(out, l.targets)
	return out
}

package rules

import "github.com/roach88/watchtower/internal/model"

// Transition is one detected change to an element.
// For additions Added is true and Old is the zero value.
type Transition[T any] struct {
	Old   T
	New   T
	Added bool
}

// Added builds the transition for a newly observed element.
func Added[T any](item T) Transition[T] {
	return Transition[T]{New: item, Added: true}
}

// Changed builds the transition for a modified element.
func Changed[T any](old, cur T) Transition[T] {
	return Transition[T]{Old: old, New: cur}
}

// Rule evaluates one transition for one actor.
// It returns at most one notification; false means the actor is not told.
type Rule[T any] func(a model.Actor, caps CapabilitySet, tr Transition[T], lk Lookup) (model.Notification, bool)

func notify(source string, category model.NotificationCategory, nav, title, message string) (model.Notification, bool) {
	return model.Notification{
		SourceID:   source,
		Category:   category,
		Title:      title,
		Message:    message,
		NavigateTo: nav,
	}, true
}

func none() (model.Notification, bool) {
	return model.Notification{}, false
}

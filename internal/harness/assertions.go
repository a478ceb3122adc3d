package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/watchtower/internal/model"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type      string               // Assertion type for categorization
	Expected  string               // Human-readable expected outcome
	Actual    string               // Human-readable actual outcome
	Delivered []model.Notification // Every notification, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Delivered) > 0 {
		fmt.Fprintf(&buf, "\nDelivered:\n")
		for i, n := range e.Delivered {
			fmt.Fprintf(&buf, "  [%d] %s (%s %s)\n", i+1, n.Title, n.Category, n.SourceID)
		}
	}

	return buf.String()
}

// evaluateAssertion dispatches on the assertion type.
func evaluateAssertion(r *Result, a Assertion) error {
	switch a.Type {
	case AssertNotificationCount:
		return assertCount(r, a, len(r.Delivered), "notifications")
	case AssertNotificationContains:
		return assertNotificationContains(r, a)
	case AssertNotificationOrder:
		return assertNotificationOrder(r, a)
	case AssertPendingCount:
		return assertCount(r, a, len(r.Pending), "queued notifications")
	case AssertViolationCount:
		return assertCount(r, a, len(r.Violations), "violations")
	case AssertViolationContains:
		return assertViolationContains(r, a)
	case AssertToastContains:
		return assertToastContains(r, a)
	case AssertNavigatedTo:
		return assertNavigatedTo(r, a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func assertCount(r *Result, a Assertion, got int, what string) error {
	want := 0
	if a.Count != nil {
		want = *a.Count
	}
	if got == want {
		return nil
	}
	return &AssertionError{
		Type:      a.Type,
		Expected:  fmt.Sprintf("%d %s", want, what),
		Actual:    fmt.Sprintf("%d %s", got, what),
		Delivered: r.Delivered,
	}
}

// matchNotification applies subset semantics: empty fields match anything.
func matchNotification(n model.Notification, a Assertion) bool {
	if a.Title != "" && n.Title != a.Title {
		return false
	}
	if a.SourceID != "" && n.SourceID != a.SourceID {
		return false
	}
	if a.Category != "" && string(n.Category) != a.Category {
		return false
	}
	if a.Message != "" && !strings.Contains(n.Message, a.Message) {
		return false
	}
	return true
}

func assertNotificationContains(r *Result, a Assertion) error {
	for _, n := range r.Delivered {
		if matchNotification(n, a) {
			return nil
		}
	}
	return &AssertionError{
		Type: a.Type,
		Expected: fmt.Sprintf("notification with title=%q source_id=%q category=%q message~%q",
			a.Title, a.SourceID, a.Category, a.Message),
		Actual:    "not delivered",
		Delivered: r.Delivered,
	}
}

// assertNotificationOrder checks titles appear in the given order.
// Other notifications may come in between.
func assertNotificationOrder(r *Result, a Assertion) error {
	next := 0
	for _, n := range r.Delivered {
		if next < len(a.Titles) && n.Title == a.Titles[next] {
			next++
		}
	}
	if next == len(a.Titles) {
		return nil
	}
	return &AssertionError{
		Type:      a.Type,
		Expected:  fmt.Sprintf("titles in order: %v", a.Titles),
		Actual:    fmt.Sprintf("missing or out of order: %q", a.Titles[next]),
		Delivered: r.Delivered,
	}
}

func assertViolationContains(r *Result, a Assertion) error {
	descriptions := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		if strings.Contains(v.Description, a.Text) {
			return nil
		}
		descriptions[i] = v.Description
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("violation describing %q", a.Text),
		Actual:   fmt.Sprintf("%q", descriptions),
	}
}

func assertToastContains(r *Result, a Assertion) error {
	texts := make([]string, len(r.Toasts))
	for i, t := range r.Toasts {
		if strings.Contains(t.Text, a.Text) {
			return nil
		}
		texts[i] = t.Text
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("toast containing %q", a.Text),
		Actual:   fmt.Sprintf("%q", texts),
	}
}

func assertNavigatedTo(r *Result, a Assertion) error {
	if slices.Contains(r.Navigations, a.Target) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("navigation to %q", a.Target),
		Actual:   fmt.Sprintf("%q", r.Navigations),
	}
}

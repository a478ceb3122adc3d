package harness

import (
	"github.com/roach88/watchtower/internal/engine"
	"github.com/roach88/watchtower/internal/model"
)

// TraceEvent records what one scenario step did.
type TraceEvent struct {
	Step       int    `json:"step"`
	Action     string `json:"action"`
	Collection string `json:"collection,omitempty"`

	// Notifications enqueued by a replace.
	Notifications []model.Notification `json:"notifications,omitempty"`

	// Delivered is the notification removed by dismiss or act.
	Delivered *model.Notification `json:"delivered,omitempty"`

	// Target is where act navigated.
	Target string `json:"target,omitempty"`

	// Recorded is the number of violations a sweep recorded.
	Recorded int `json:"recorded,omitempty"`
}

// RecordedViolation is a stored violation without its wall-clock timestamp,
// so traces stay byte-identical across runs.
type RecordedViolation struct {
	ID             string                `json:"id"`
	DriverID       string                `json:"driver_id"`
	VehicleID      string                `json:"vehicle_id"`
	Description    string                `json:"description"`
	Fine           float64               `json:"fine"`
	Status         model.ViolationStatus `json:"status"`
	TriggerEventID string                `json:"trigger_event_id,omitempty"`
}

func recordViolation(v model.Violation) RecordedViolation {
	return RecordedViolation{
		ID:             v.ID,
		DriverID:       v.DriverID,
		VehicleID:      v.VehicleID,
		Description:    v.Description,
		Fine:           v.Fine,
		Status:         v.Status,
		TriggerEventID: v.TriggerEventID,
	}
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Trace has one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Delivered lists every notification enqueued during the run.
	Delivered []model.Notification `json:"delivered"`

	// Pending is what was left in the queue when the run ended.
	Pending []model.Notification `json:"pending"`

	Toasts      []engine.Toast      `json:"toasts"`
	Navigations []string            `json:"navigations"`
	Violations  []RecordedViolation `json:"violations"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:        true,
		Trace:       []TraceEvent{},
		Errors:      []string{},
		Delivered:   []model.Notification{},
		Pending:     []model.Notification{},
		Toasts:      []engine.Toast{},
		Navigations: []string{},
		Violations:  []RecordedViolation{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) addEvent(ev TraceEvent) {
	ev.Step = len(r.Trace) + 1
	r.Trace = append(r.Trace, ev)
}

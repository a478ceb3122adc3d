package model

import "time"

// Ticket is a customer support ticket.
type Ticket struct {
	ID                 string       `json:"id"`
	Subject            string       `json:"subject,omitempty"`
	Status             TicketStatus `json:"status"`
	CategoryID         string       `json:"category_id"`
	SubDepartmentID    string       `json:"sub_department_id,omitempty"`
	AssignedEmployeeID string       `json:"assigned_employee_id,omitempty"`
	AnsweredByID       string       `json:"answered_by_id,omitempty"`
	Rating             int64        `json:"rating,omitempty"`
}

// Task is a unit of work routed through supervisor or admin review.
type Task struct {
	ID              string     `json:"id"`
	Title           string     `json:"title,omitempty"`
	Status          TaskStatus `json:"status"`
	CategoryID      string     `json:"category_id"`
	SubDepartmentID string     `json:"sub_department_id,omitempty"`
	AssigneeID      string     `json:"assignee_id,omitempty"`
	PerformedByID   string     `json:"performed_by_id,omitempty"`
	CompletedByID   string     `json:"completed_by_id,omitempty"`
	AdminFeedback   string     `json:"admin_feedback,omitempty"`
}

// StaffRequest asks an approver to create a staff account.
type StaffRequest struct {
	ID                       string             `json:"id"`
	FullName                 string             `json:"full_name,omitempty"`
	Status                   StaffRequestStatus `json:"status"`
	RequesterID              string             `json:"requester_id"`
	AcknowledgedBySupervisor bool               `json:"acknowledged_by_supervisor,omitempty"`
}

// User is a directory entry. Drivers also carry live telemetry.
type User struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Role              Role    `json:"role"`
	SupervisorID      string  `json:"supervisor_id,omitempty"`
	CurrentSpeed      float64 `json:"current_speed,omitempty"`
	AssignedVehicleID string  `json:"assigned_vehicle_id,omitempty"`
}

// Vehicle is a fleet vehicle.
type Vehicle struct {
	ID               string `json:"id"`
	Plate            string `json:"plate,omitempty"`
	AssignedDriverID string `json:"assigned_driver_id,omitempty"`
	// NextMaintenance is a date (2006-01-02) or an RFC 3339 timestamp.
	NextMaintenance string `json:"next_maintenance,omitempty"`
}

// NotificationCategory tags what kind of item a notification is about.
type NotificationCategory string

const (
	CategoryTicket           NotificationCategory = "ticket"
	CategoryTask             NotificationCategory = "task"
	CategoryEmployeeApproval NotificationCategory = "employee_approval"
)

// Navigation targets carried by notifications.
const (
	NavTickets       = "tickets"
	NavTasks         = "tasks"
	NavStaffRequests = "staff-requests"
)

// Notification is a single alert for the current actor.
// Notifications live only in the delivery queue and are never persisted.
type Notification struct {
	ID         string               `json:"id"`
	SourceID   string               `json:"source_id"`
	Category   NotificationCategory `json:"category"`
	Title      string               `json:"title"`
	Message    string               `json:"message"`
	NavigateTo string               `json:"navigate_to"`
}

// ViolationKind selects the evaluator for a violation rule.
type ViolationKind string

const (
	KindSpeeding          ViolationKind = "speeding"
	KindMissedMaintenance ViolationKind = "missed_maintenance"
)

// ViolationRule configures one violation detector.
type ViolationRule struct {
	ID              string        `json:"id"`
	Kind            ViolationKind `json:"kind"`
	Enabled         bool          `json:"enabled"`
	Threshold       float64       `json:"threshold,omitempty"`
	Fine            float64       `json:"fine"`
	MessageTemplate string        `json:"message_template"`
}

// Violation is a recorded driver infraction.
type Violation struct {
	ID             string          `json:"id"`
	DriverID       string          `json:"driver_id"`
	VehicleID      string          `json:"vehicle_id"`
	Timestamp      time.Time       `json:"timestamp"`
	Description    string          `json:"description"`
	Fine           float64         `json:"fine"`
	Status         ViolationStatus `json:"status"`
	TriggerEventID string          `json:"trigger_event_id,omitempty"`
}

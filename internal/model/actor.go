package model

import "slices"

// Role is the coarse access level of an actor or user.
type Role string

const (
	RoleNone       Role = ""
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleEmployee   Role = "employee"
	RoleDriver     Role = "driver"
)

// Valid reports whether r is one of the known roles (including none).
func (r Role) Valid() bool {
	switch r {
	case RoleNone, RoleAdmin, RoleSupervisor, RoleEmployee, RoleDriver:
		return true
	}
	return false
}

// Capability is an elevated permission flag carried by an actor.
type Capability string

const (
	// CapViewAllTickets lets a supervisor see every ticket as an admin would.
	CapViewAllTickets Capability = "view_all_tickets"
	// CapHandleTickets lets an employee work tickets in their sub-departments.
	CapHandleTickets Capability = "handle_tickets"
	// CapApproveStaff lets a supervisor approve staff account requests.
	CapApproveStaff Capability = "approve_staff"
	// CapAdminClass is derived, never granted directly: admins and supervisors
	// holding CapViewAllTickets.
	CapAdminClass Capability = "admin_class"
)

// Actor is the currently authenticated viewer.
// An Actor is immutable for the duration of one evaluation pass.
type Actor struct {
	ID               string       `json:"id" yaml:"id"`
	Name             string       `json:"name,omitempty" yaml:"name,omitempty"`
	Role             Role         `json:"role" yaml:"role"`
	Permissions      []Capability `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	CategoryIDs      []string     `json:"category_ids,omitempty" yaml:"category_ids,omitempty"`
	SubDepartmentIDs []string     `json:"sub_department_ids,omitempty" yaml:"sub_department_ids,omitempty"`
	ReportsTo        string       `json:"reports_to,omitempty" yaml:"reports_to,omitempty"`
}

// HasCategory reports whether id is among the actor's assigned categories.
func (a Actor) HasCategory(id string) bool {
	return id != "" && slices.Contains(a.CategoryIDs, id)
}

// HasSubDepartment reports whether id is among the actor's sub-departments.
func (a Actor) HasSubDepartment(id string) bool {
	return id != "" && slices.Contains(a.SubDepartmentIDs, id)
}

// Is reports whether the actor is the user with the given id.
func (a Actor) Is(id string) bool {
	return id != "" && a.ID == id
}

package rules

import (
	"fmt"

	"github.com/roach88/watchtower/internal/model"
)

func ticketLabel(t model.Ticket) string {
	if t.Subject != "" {
		return fmt.Sprintf("%q", t.Subject)
	}
	return "#" + t.ID
}

func ticketNotice(t model.Ticket, title, message string) (model.Notification, bool) {
	return notify(t.ID, model.CategoryTicket, model.NavTickets, title, message)
}

// NewTicket notifies about a ticket that just appeared.
//
// Admin-class actors are always told. A plain supervisor is told when the
// ticket's category is assigned to them. An employee is told when they may
// handle tickets and the ticket belongs to one of their sub-departments.
func NewTicket(a model.Actor, caps CapabilitySet, tr Transition[model.Ticket], _ Lookup) (model.Notification, bool) {
	if !tr.Added {
		return none()
	}
	t := tr.New
	msg := fmt.Sprintf("Ticket %s was submitted.", ticketLabel(t))

	switch {
	case caps.AdminClass():
		return ticketNotice(t, "New ticket", msg)
	case a.Role == model.RoleSupervisor && a.HasCategory(t.CategoryID):
		return ticketNotice(t, "New ticket in your category", msg)
	case a.Role == model.RoleEmployee && caps.Has(model.CapHandleTickets) && a.HasSubDepartment(t.SubDepartmentID):
		return ticketNotice(t, "New ticket for your team", msg)
	}
	return none()
}

// TicketAssigned notifies when a ticket is handed to a concrete employee.
//
// The new assignee is told first, then that employee's supervisor. When the
// directory does not know the assignee, the assignee's own ReportsTo names the
// supervisor in their message. Admin-class
// actors are told only when they are not that supervisor, so one person never
// receives the same assignment twice under two roles.
func TicketAssigned(a model.Actor, caps CapabilitySet, tr Transition[model.Ticket], lk Lookup) (model.Notification, bool) {
	if tr.Added {
		return none()
	}
	assignee := tr.New.AssignedEmployeeID
	if assignee == "" || assignee == tr.Old.AssignedEmployeeID {
		return none()
	}
	t := tr.New
	sup := supervisorOf(lk, assignee)
	employee := nameOr(lk, assignee, UnknownUser)

	switch {
	case a.Is(assignee):
		if sup == "" {
			sup = a.ReportsTo
		}
		supName := nameOr(lk, sup, UnknownSupervisor)
		return ticketNotice(t, "Ticket assigned to you",
			fmt.Sprintf("Ticket %s was assigned to you by %s.", ticketLabel(t), supName))
	case sup != "" && a.Is(sup):
		return ticketNotice(t, "Ticket assigned to your team",
			fmt.Sprintf("Ticket %s was assigned to %s.", ticketLabel(t), employee))
	case caps.AdminClass():
		return ticketNotice(t, "Ticket assigned",
			fmt.Sprintf("Ticket %s was assigned to %s.", ticketLabel(t), employee))
	}
	return none()
}

// TicketReopened notifies when an answered ticket goes back to seen.
// The employee who answered it is told; otherwise admin-class actors are.
func TicketReopened(a model.Actor, caps CapabilitySet, tr Transition[model.Ticket], lk Lookup) (model.Notification, bool) {
	// Seen is reached from New on first read; any other allowed move into it
	// is a re-open.
	if tr.Added || tr.New.Status != model.TicketSeen || tr.Old.Status == model.TicketNew ||
		!tr.Old.Status.CanMoveTo(tr.New.Status) {
		return none()
	}
	t := tr.New
	answeredBy := t.AnsweredByID
	if answeredBy == "" {
		answeredBy = tr.Old.AnsweredByID
	}

	switch {
	case a.Is(answeredBy):
		return ticketNotice(t, "Ticket reopened",
			fmt.Sprintf("The customer reopened ticket %s that you answered.", ticketLabel(t)))
	case caps.AdminClass():
		return ticketNotice(t, "Ticket reopened",
			fmt.Sprintf("Ticket %s answered by %s was reopened.", ticketLabel(t), nameOr(lk, answeredBy, UnknownUser)))
	}
	return none()
}

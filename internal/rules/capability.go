// Package rules decides which notifications an actor receives.
//
// Every rule is a pure, total function of (actor, capabilities, transition,
// lookup). Given no match a rule reports false; it never returns an error.
// Role and permission checks are resolved once per pass into a CapabilitySet
// so rule bodies read as set-membership tests.
package rules

import (
	"slices"

	"github.com/roach88/watchtower/internal/model"
)

// CapabilitySet is the resolved set of capabilities an actor holds.
type CapabilitySet map[model.Capability]struct{}

// Has reports whether c is in the set.
func (s CapabilitySet) Has(c model.Capability) bool {
	_, ok := s[c]
	return ok
}

// AdminClass reports whether the actor is treated as an administrator.
func (s CapabilitySet) AdminClass() bool {
	return s.Has(model.CapAdminClass)
}

// List returns the capabilities in a stable order.
func (s CapabilitySet) List() []model.Capability {
	out := make([]model.Capability, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// grantable lists, per role, which elevated flags an actor may actually use.
// Flags outside this list are ignored rather than rejected.
var grantable = map[model.Role][]model.Capability{
	model.RoleSupervisor: {model.CapViewAllTickets, model.CapApproveStaff},
	model.RoleEmployee:   {model.CapHandleTickets},
}

// Resolve computes the capability set for an actor.
//
// Admins hold every capability. Supervisors may hold view_all_tickets and
// approve_staff; view_all_tickets makes them admin-class. Employees may hold
// handle_tickets. Drivers and anonymous actors hold nothing.
func Resolve(a model.Actor) CapabilitySet {
	set := CapabilitySet{}

	if a.Role == model.RoleAdmin {
		for _, c := range []model.Capability{
			model.CapViewAllTickets,
			model.CapHandleTickets,
			model.CapApproveStaff,
			model.CapAdminClass,
		} {
			set[c] = struct{}{}
		}
		return set
	}

	allowed := grantable[a.Role]
	for _, c := range a.Permissions {
		if slices.Contains(allowed, c) {
			set[c] = struct{}{}
		}
	}

	if a.Role == model.RoleSupervisor && set.Has(model.CapViewAllTickets) {
		set[model.CapAdminClass] = struct{}{}
	}

	return set
}

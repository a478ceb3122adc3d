package rules

import (
	"fmt"

	"github.com/roach88/watchtower/internal/model"
)

func staffNotice(r model.StaffRequest, title, message string) (model.Notification, bool) {
	return notify(r.ID, model.CategoryEmployeeApproval, model.NavStaffRequests, title, message)
}

func staffLabel(r model.StaffRequest) string {
	if r.FullName != "" {
		return r.FullName
	}
	return "#" + r.ID
}

// StaffRequestCreated notifies actors who can approve staff accounts.
func StaffRequestCreated(_ model.Actor, caps CapabilitySet, tr Transition[model.StaffRequest], lk Lookup) (model.Notification, bool) {
	if !tr.Added || !caps.Has(model.CapApproveStaff) {
		return none()
	}
	r := tr.New
	return staffNotice(r, "New staff request",
		fmt.Sprintf("%s requested an account for %s.", nameOr(lk, r.RequesterID, UnknownUser), staffLabel(r)))
}

// StaffRequestResolved tells the requesting supervisor that their request
// was approved or rejected. Moves out of a terminal state, or to a status
// the request cannot take, are ignored.
func StaffRequestResolved(a model.Actor, _ CapabilitySet, tr Transition[model.StaffRequest], _ Lookup) (model.Notification, bool) {
	if tr.Added || !tr.Old.Status.CanMoveTo(tr.New.Status) {
		return none()
	}
	r := tr.New
	if !a.Is(r.RequesterID) {
		return none()
	}
	switch r.Status {
	case model.StaffApproved:
		return staffNotice(r, "Staff request approved",
			fmt.Sprintf("The account request for %s was approved.", staffLabel(r)))
	case model.StaffRejected:
		return staffNotice(r, "Staff request rejected",
			fmt.Sprintf("The account request for %s was rejected.", staffLabel(r)))
	}
	return none()
}

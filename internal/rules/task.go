package rules

import (
	"fmt"

	"github.com/roach88/watchtower/internal/model"
)

// TaskTransition names a business transition of the task state machine.
type TaskTransition string

const (
	TaskNoTransition     TaskTransition = ""
	TaskSubmitSupervisor TaskTransition = "submit_supervisor"
	TaskSubmitAdmin      TaskTransition = "submit_admin"
	TaskApprove          TaskTransition = "approve"
	TaskReject           TaskTransition = "reject"
)

// ClassifyTask maps a status change onto one of the four notifying
// transitions. Only the status and performer are consulted; every other
// shape, including moves the state machine does not allow, is
// TaskNoTransition.
func ClassifyTask(old, cur model.Task) TaskTransition {
	if !old.Status.CanMoveTo(cur.Status) {
		return TaskNoTransition
	}
	switch cur.Status {
	case model.TaskPendingSupervisorReview:
		if cur.PerformedByID != "" {
			return TaskSubmitSupervisor
		}
	case model.TaskPendingReview:
		if cur.PerformedByID != "" {
			return TaskSubmitAdmin
		}
	case model.TaskCompleted:
		// Completion out of pending_review is the admin's own approval.
		if old.Status == model.TaskPendingSupervisorReview {
			return TaskApprove
		}
	case model.TaskToDo:
		return TaskReject
	}
	return TaskNoTransition
}

func taskLabel(t model.Task) string {
	if t.Title != "" {
		return fmt.Sprintf("%q", t.Title)
	}
	return "#" + t.ID
}

func taskNotice(t model.Task, title, message string) (model.Notification, bool) {
	return notify(t.ID, model.CategoryTask, model.NavTasks, title, message)
}

// assigneeOf returns who owns the task: the assignee, else the performer.
func assigneeOf(t model.Task) string {
	if t.AssigneeID != "" {
		return t.AssigneeID
	}
	return t.PerformedByID
}

// NewTask notifies about a task that just appeared.
//
// Admin-class actors are always told. A supervisor is told about unrouted
// tasks (no assignee, no sub-department) in their categories. An employee is
// told when the task is assigned to them, or routed to one of their
// sub-departments without a specific assignee.
func NewTask(a model.Actor, caps CapabilitySet, tr Transition[model.Task], _ Lookup) (model.Notification, bool) {
	if !tr.Added {
		return none()
	}
	t := tr.New
	msg := fmt.Sprintf("Task %s was created.", taskLabel(t))

	switch {
	case caps.AdminClass():
		return taskNotice(t, "New task", msg)
	case a.Role == model.RoleSupervisor:
		if t.AssigneeID == "" && t.SubDepartmentID == "" && a.HasCategory(t.CategoryID) {
			return taskNotice(t, "New task in your category", msg)
		}
	case a.Role == model.RoleEmployee:
		if a.Is(t.AssigneeID) {
			return taskNotice(t, "New task assigned to you", msg)
		}
		if t.AssigneeID == "" && a.HasSubDepartment(t.SubDepartmentID) {
			return taskNotice(t, "New task for your team", msg)
		}
	}
	return none()
}

// TaskStatusChanged notifies about the four business transitions of a task.
func TaskStatusChanged(a model.Actor, caps CapabilitySet, tr Transition[model.Task], lk Lookup) (model.Notification, bool) {
	if tr.Added {
		return none()
	}
	t := tr.New

	switch ClassifyTask(tr.Old, t) {
	case TaskSubmitSupervisor:
		performer := nameOr(lk, t.PerformedByID, UnknownUser)
		sup := supervisorOf(lk, t.PerformedByID)
		if sup != "" && a.Is(sup) {
			return taskNotice(t, "Task awaiting your review",
				fmt.Sprintf("%s submitted task %s for your review.", performer, taskLabel(t)))
		}
		if caps.AdminClass() {
			return taskNotice(t, "Task submitted for supervisor review",
				fmt.Sprintf("%s submitted task %s for supervisor review.", performer, taskLabel(t)))
		}

	case TaskSubmitAdmin:
		if caps.AdminClass() {
			return taskNotice(t, "Task awaiting review",
				fmt.Sprintf("%s submitted task %s for review.", nameOr(lk, t.PerformedByID, UnknownUser), taskLabel(t)))
		}

	case TaskApprove:
		owner := assigneeOf(t)
		if a.Is(owner) {
			return taskNotice(t, "Task approved",
				fmt.Sprintf("Your task %s was approved.", taskLabel(t)))
		}
		if caps.AdminClass() {
			return taskNotice(t, "Task completed",
				fmt.Sprintf("Task %s by %s was approved by %s.", taskLabel(t),
					nameOr(lk, owner, UnknownUser), nameOr(lk, t.CompletedByID, UnknownUser)))
		}

	case TaskReject:
		owner := assigneeOf(t)
		if a.Is(owner) {
			msg := fmt.Sprintf("Task %s was returned for rework.", taskLabel(t))
			if t.AdminFeedback != "" {
				msg = fmt.Sprintf("Task %s was returned: %s", taskLabel(t), t.AdminFeedback)
			}
			return taskNotice(t, "Task returned", msg)
		}
		if caps.AdminClass() {
			return taskNotice(t, "Task returned",
				fmt.Sprintf("Task %s was returned to %s.", taskLabel(t), nameOr(lk, owner, UnknownUser)))
		}
	}
	return none()
}

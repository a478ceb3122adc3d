package model

// TicketStatus is the lifecycle state of a support ticket.
type TicketStatus string

const (
	TicketNew      TicketStatus = "new"
	TicketSeen     TicketStatus = "seen"
	TicketAnswered TicketStatus = "answered"
	TicketClosed   TicketStatus = "closed"
)

var ticketMoves = map[TicketStatus][]TicketStatus{
	TicketNew:      {TicketSeen},
	TicketSeen:     {TicketAnswered},
	TicketAnswered: {TicketClosed, TicketSeen},
}

// CanMoveTo reports whether a ticket may move from s to next.
// Answered → Seen is the re-open path.
func (s TicketStatus) CanMoveTo(next TicketStatus) bool {
	for _, allowed := range ticketMoves[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TaskStatus is the lifecycle state of a work task.
type TaskStatus string

const (
	TaskToDo                    TaskStatus = "todo"
	TaskSeen                    TaskStatus = "seen"
	TaskPendingSupervisorReview TaskStatus = "pending_supervisor_review"
	TaskPendingReview           TaskStatus = "pending_review"
	TaskCompleted               TaskStatus = "completed"
)

var taskMoves = map[TaskStatus][]TaskStatus{
	TaskToDo:                    {TaskSeen, TaskPendingSupervisorReview, TaskPendingReview},
	TaskSeen:                    {TaskPendingSupervisorReview, TaskPendingReview},
	TaskPendingSupervisorReview: {TaskCompleted, TaskToDo},
	TaskPendingReview:           {TaskCompleted, TaskToDo},
}

// CanMoveTo reports whether a task may move from s to next.
func (s TaskStatus) CanMoveTo(next TaskStatus) bool {
	for _, allowed := range taskMoves[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Open reports whether the task is still waiting to be performed.
// Seen is a read acknowledgement of ToDo, not a separate business state.
func (s TaskStatus) Open() bool {
	return s == TaskToDo || s == TaskSeen
}

// StaffRequestStatus is the lifecycle state of a staff account request.
type StaffRequestStatus string

const (
	StaffPending  StaffRequestStatus = "pending"
	StaffApproved StaffRequestStatus = "approved"
	StaffRejected StaffRequestStatus = "rejected"
)

// CanMoveTo reports whether a request may move from s to next.
// Approved and rejected are terminal.
func (s StaffRequestStatus) CanMoveTo(next StaffRequestStatus) bool {
	return s == StaffPending && (next == StaffApproved || next == StaffRejected)
}

// ViolationStatus is the payment state of a violation.
type ViolationStatus string

const (
	ViolationPending ViolationStatus = "pending"
	ViolationPaid    ViolationStatus = "paid"
)

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketStatus_CanMoveTo(t *testing.T) {
	tests := []struct {
		from, to TicketStatus
		want     bool
	}{
		{TicketNew, TicketSeen, true},
		{TicketSeen, TicketAnswered, true},
		{TicketAnswered, TicketClosed, true},
		{TicketAnswered, TicketSeen, true}, // re-open
		{TicketNew, TicketAnswered, false},
		{TicketClosed, TicketSeen, false},
		{TicketSeen, TicketNew, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanMoveTo(tt.to))
		})
	}
}

func TestTaskStatus_CanMoveTo(t *testing.T) {
	assert.True(t, TaskToDo.CanMoveTo(TaskPendingSupervisorReview))
	assert.True(t, TaskSeen.CanMoveTo(TaskPendingReview))
	assert.True(t, TaskPendingSupervisorReview.CanMoveTo(TaskToDo))
	assert.True(t, TaskPendingReview.CanMoveTo(TaskCompleted))
	assert.False(t, TaskToDo.CanMoveTo(TaskCompleted))
	assert.False(t, TaskCompleted.CanMoveTo(TaskToDo))
	assert.True(t, TaskSeen.Open())
	assert.False(t, TaskPendingReview.Open())
}

func TestStaffRequestStatus_Terminal(t *testing.T) {
	assert.True(t, StaffPending.CanMoveTo(StaffApproved))
	assert.True(t, StaffPending.CanMoveTo(StaffRejected))
	assert.False(t, StaffApproved.CanMoveTo(StaffRejected))
	assert.False(t, StaffRejected.CanMoveTo(StaffPending))
}

func TestParseCollection(t *testing.T) {
	c, err := ParseCollection("staff_requests")
	require.NoError(t, err)
	assert.Equal(t, CollectionStaffRequests, c)
	assert.True(t, c.Tracked())

	_, err = ParseCollection("invoices")
	assert.Error(t, err)

	assert.False(t, CollectionViolations.Tracked())
	assert.Len(t, Collections(), 7)
}

func TestActor_Membership(t *testing.T) {
	a := Actor{ID: "s1", CategoryIDs: []string{"billing"}, SubDepartmentIDs: []string{"sd1"}}
	assert.True(t, a.HasCategory("billing"))
	assert.False(t, a.HasCategory(""))
	assert.True(t, a.HasSubDepartment("sd1"))
	assert.True(t, a.Is("s1"))
	assert.False(t, a.Is(""))
}

package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/watchtower/internal/model"
)

func TestTracker_AbsentVersusEmpty(t *testing.T) {
	tr := NewTracker()

	_, ok, err := Get[model.Ticket](tr, model.CollectionTickets)
	require.NoError(t, err)
	assert.False(t, ok, "no previous snapshot yet")

	Set(tr, model.CollectionTickets, []model.Ticket{}, 1)

	items, ok, err := Get[model.Ticket](tr, model.CollectionTickets)
	require.NoError(t, err)
	assert.True(t, ok, "an empty snapshot is still a concrete previous value")
	assert.Empty(t, items)
	assert.Equal(t, int64(1), tr.Seq(model.CollectionTickets))
}

func TestTracker_SetCopies(t *testing.T) {
	tr := NewTracker()
	items := []model.Task{{ID: "K1", Status: model.TaskToDo}}

	Set(tr, model.CollectionTasks, items, 3)
	items[0].Status = model.TaskCompleted

	got, ok, err := Get[model.Task](tr, model.CollectionTasks)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.TaskToDo, got[0].Status)
}

func TestTracker_TypeMismatch(t *testing.T) {
	tr := NewTracker()
	Set(tr, model.CollectionUsers, []model.User{{ID: "u1"}}, 1)

	_, _, err := Get[model.Vehicle](tr, model.CollectionUsers)
	assert.Error(t, err)
}

func TestTracker_ForgetAndReset(t *testing.T) {
	tr := NewTracker()
	Set(tr, model.CollectionTickets, []model.Ticket{}, 1)
	Set(tr, model.CollectionTasks, []model.Task{}, 2)

	assert.Equal(t, []model.Collection{model.CollectionTickets, model.CollectionTasks}, tr.Collections())

	tr.Forget(model.CollectionTickets)
	assert.False(t, tr.Has(model.CollectionTickets))
	assert.True(t, tr.Has(model.CollectionTasks))

	tr.Reset()
	assert.Empty(t, tr.Collections())
}

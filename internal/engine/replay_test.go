package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/watchtower/internal/model"
	"github.com/roach88/watchtower/internal/testutil"
)

func entry(t *testing.T, seq int64, c model.Collection, items any) model.HistoryEntry {
	t.Helper()
	data, err := model.MarshalCanonical(items)
	require.NoError(t, err)
	return model.HistoryEntry{Seq: seq, Collection: c, Data: data}
}

func TestReplay_RederivesNotifications(t *testing.T) {
	history := []model.HistoryEntry{
		entry(t, 1, model.CollectionUsers, staff),
		entry(t, 2, model.CollectionTickets, []model.Ticket{{ID: "T1", Status: model.TicketNew}}),
		entry(t, 3, model.CollectionTickets, []model.Ticket{{ID: "T1", Status: model.TicketNew, AssignedEmployeeID: "emp1"}}),
		entry(t, 4, model.CollectionViolations, []model.Violation{{ID: "old"}}),
	}

	d := New(testutil.NewMemoryStore(),
		WithActorSource(NewStaticActor(employee)),
		WithIDs(testutil.NewSequenceGenerator("r")),
		WithToasts(&ToastLog{}))

	notes, err := Replay(context.Background(), d, history)
	require.NoError(t, err)

	require.Len(t, notes, 1)
	assert.Equal(t, "Ticket assigned to you", notes[0].Title)
	assert.Equal(t, "r-0001", notes[0].ID)
}

func TestReplay_IsDeterministic(t *testing.T) {
	history := []model.HistoryEntry{
		entry(t, 1, model.CollectionTickets, []model.Ticket{}),
		entry(t, 2, model.CollectionTickets, []model.Ticket{{ID: "T1"}, {ID: "T2"}}),
		entry(t, 5, model.CollectionTasks, []model.Task{{ID: "K1"}}),
	}

	run := func() []model.Notification {
		d := New(testutil.NewMemoryStore(),
			WithActorSource(NewStaticActor(admin)),
			WithIDs(testutil.NewSequenceGenerator("r")))
		notes, err := Replay(context.Background(), d, history)
		require.NoError(t, err)
		return notes
	}

	first := run()
	assert.Len(t, first, 3)
	assert.Equal(t, first, run())
}

func TestReplay_RejectsUnorderedHistory(t *testing.T) {
	d := New(testutil.NewMemoryStore())
	_, err := Replay(context.Background(), d, []model.HistoryEntry{
		entry(t, 2, model.CollectionTickets, []model.Ticket{}),
		entry(t, 2, model.CollectionTickets, []model.Ticket{}),
	})
	assert.ErrorContains(t, err, "out of order")
}

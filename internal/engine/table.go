package engine

import (
	"log/slog"

	"github.com/roach88/watchtower/internal/diff"
	"github.com/roach88/watchtower/internal/model"
	"github.com/roach88/watchtower/internal/rules"
	"github.com/roach88/watchtower/internal/snapshot"
)

// FieldAdded is the field name of rows that fire on newly observed elements.
const FieldAdded = "(added)"

// Row is one entry of the eligibility table: a collection, the field whose
// change is watched, and the rules evaluated for each transition it yields.
type Row struct {
	Collection model.Collection `json:"collection"`
	Field      string           `json:"field"`
	Rules      []string         `json:"rules"`
}

type namedRule[T any] struct {
	name string
	eval rules.Rule[T]
}

type watchRow[T any] struct {
	field string
	// equal selects the watched field; nil means the row fires on additions.
	equal func(a, b T) bool
	rules []namedRule[T]
}

// evaluation is the per-pass context rules run against.
// With no actor present rules are skipped but snapshots still advance.
type evaluation struct {
	present bool
	actor   model.Actor
	caps    rules.CapabilitySet
	lookup  rules.Lookup
}

// watch is the type-erased view of one tracked collection.
type watch interface {
	collection() model.Collection
	rows() []Row
	observe(tr *snapshot.Tracker, data []byte, seq int64, ev evaluation) ([]model.Notification, error)
}

type entityWatch[T any] struct {
	coll  model.Collection
	key   func(T) string
	table []watchRow[T]
}

func (w *entityWatch[T]) collection() model.Collection { return w.coll }

func (w *entityWatch[T]) rows() []Row {
	out := make([]Row, 0, len(w.table))
	for _, r := range w.table {
		names := make([]string, len(r.rules))
		for i, nr := range r.rules {
			names[i] = nr.name
		}
		out = append(out, Row{Collection: w.coll, Field: r.field, Rules: names})
	}
	return out
}

// observe diffs data against the tracked snapshot, evaluates every row, and
// records data as the new previous snapshot.
func (w *entityWatch[T]) observe(tr *snapshot.Tracker, data []byte, seq int64, ev evaluation) ([]model.Notification, error) {
	curr, err := model.Decode[T](data)
	if err != nil {
		return nil, newDecodeError(w.coll, err)
	}
	prev, hasPrev, err := snapshot.Get[T](tr, w.coll)
	if err != nil {
		return nil, err
	}

	var out []model.Notification
	if ev.present {
		for _, row := range w.table {
			for _, t := range w.transitions(row, prev, hasPrev, curr) {
				for _, r := range row.rules {
					n, ok := r.eval(ev.actor, ev.caps, t, ev.lookup)
					if !ok {
						continue
					}
					slog.Debug("rule fired",
						"seq", seq,
						"collection", w.coll,
						"rule", r.name,
						"source", n.SourceID)
					out = append(out, n)
				}
			}
		}
	}

	snapshot.Set(tr, w.coll, curr, seq)
	return out, nil
}

func (w *entityWatch[T]) transitions(row watchRow[T], prev []T, hasPrev bool, curr []T) []rules.Transition[T] {
	var out []rules.Transition[T]
	if row.equal == nil {
		res := diff.Compute(prev, hasPrev, curr, diff.Config[T, string]{
			Key:   w.key,
			Equal: func(_, _ T) bool { return true },
		})
		for _, item := range res.Added {
			out = append(out, rules.Added(item))
		}
		return out
	}

	res := diff.Compute(prev, hasPrev, curr, diff.Config[T, string]{Key: w.key, Equal: row.equal})
	for _, p := range res.Changed {
		out = append(out, rules.Changed(p.Old, p.New))
	}
	return out
}

// defaultWatches builds the eligibility table in evaluation order.
// Users and vehicles carry no notification rows; they are tracked for the
// directory and for speeding edges.
func defaultWatches() []watch {
	return []watch{
		&entityWatch[model.Ticket]{
			coll: model.CollectionTickets,
			key:  func(t model.Ticket) string { return t.ID },
			table: []watchRow[model.Ticket]{
				{field: FieldAdded, rules: []namedRule[model.Ticket]{{"new_ticket", rules.NewTicket}}},
				{
					field: "assigned_employee_id",
					equal: diff.By(func(t model.Ticket) string { return t.AssignedEmployeeID }),
					rules: []namedRule[model.Ticket]{{"ticket_assigned", rules.TicketAssigned}},
				},
				{
					field: "status",
					equal: diff.By(func(t model.Ticket) model.TicketStatus { return t.Status }),
					rules: []namedRule[model.Ticket]{{"ticket_reopened", rules.TicketReopened}},
				},
			},
		},
		&entityWatch[model.Task]{
			coll: model.CollectionTasks,
			key:  func(t model.Task) string { return t.ID },
			table: []watchRow[model.Task]{
				{field: FieldAdded, rules: []namedRule[model.Task]{{"new_task", rules.NewTask}}},
				{
					field: "status",
					equal: diff.By(func(t model.Task) model.TaskStatus { return t.Status }),
					rules: []namedRule[model.Task]{{"task_status_changed", rules.TaskStatusChanged}},
				},
			},
		},
		&entityWatch[model.StaffRequest]{
			coll: model.CollectionStaffRequests,
			key:  func(r model.StaffRequest) string { return r.ID },
			table: []watchRow[model.StaffRequest]{
				{field: FieldAdded, rules: []namedRule[model.StaffRequest]{{"staff_request_created", rules.StaffRequestCreated}}},
				{
					field: "status",
					equal: diff.By(func(r model.StaffRequest) model.StaffRequestStatus { return r.Status }),
					rules: []namedRule[model.StaffRequest]{{"staff_request_resolved", rules.StaffRequestResolved}},
				},
			},
		},
		&entityWatch[model.User]{
			coll: model.CollectionUsers,
			key:  func(u model.User) string { return u.ID },
		},
		&entityWatch[model.Vehicle]{
			coll: model.CollectionVehicles,
			key:  func(v model.Vehicle) string { return v.ID },
		},
	}
}

// canonicalize validates data as a snapshot of c and returns its canonical
// JSON form. Every collection, tracked or not, is stored canonically so
// history fingerprints are stable.
func canonicalize(c model.Collection, data []byte) ([]byte, error) {
	switch c {
	case model.CollectionTickets:
		return canonical[model.Ticket](c, data)
	case model.CollectionTasks:
		return canonical[model.Task](c, data)
	case model.CollectionStaffRequests:
		return canonical[model.StaffRequest](c, data)
	case model.CollectionUsers:
		return canonical[model.User](c, data)
	case model.CollectionVehicles:
		return canonical[model.Vehicle](c, data)
	case model.CollectionViolations:
		return canonical[model.Violation](c, data)
	case model.CollectionViolationRules:
		return canonical[model.ViolationRule](c, data)
	}
	return nil, newUnknownCollectionError(c)
}

func canonical[T any](c model.Collection, data []byte) ([]byte, error) {
	items, err := model.Decode[T](data)
	if err != nil {
		return nil, newDecodeError(c, err)
	}
	out, err := model.MarshalCanonical(items)
	if err != nil {
		return nil, newDecodeError(c, err)
	}
	return out, nil
}

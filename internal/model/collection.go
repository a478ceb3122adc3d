package model

import "fmt"

// Collection names a whole-snapshot collection in the snapshot store.
type Collection string

const (
	CollectionTickets        Collection = "tickets"
	CollectionTasks          Collection = "tasks"
	CollectionStaffRequests  Collection = "staff_requests"
	CollectionUsers          Collection = "users"
	CollectionVehicles       Collection = "vehicles"
	CollectionViolations     Collection = "violations"
	CollectionViolationRules Collection = "violation_rules"
)

var allCollections = []Collection{
	CollectionTickets,
	CollectionTasks,
	CollectionStaffRequests,
	CollectionUsers,
	CollectionVehicles,
	CollectionViolations,
	CollectionViolationRules,
}

// Collections returns every known collection in a stable order.
func Collections() []Collection {
	out := make([]Collection, len(allCollections))
	copy(out, allCollections)
	return out
}

// Tracked reports whether replacing c triggers an evaluation pass.
// Violations and violation rules are written by the engine or by operators
// and never produce transitions of their own.
func (c Collection) Tracked() bool {
	switch c {
	case CollectionTickets, CollectionTasks, CollectionStaffRequests, CollectionUsers, CollectionVehicles:
		return true
	}
	return false
}

// ParseCollection validates a collection name.
func ParseCollection(name string) (Collection, error) {
	for _, c := range allCollections {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", name)
}

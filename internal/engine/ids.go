package engine

import "github.com/google/uuid"

// IDGenerator stamps notifications and violations with identifiers.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator produces time-ordered UUIDv7 identifiers.
//
// Identifiers generated later in a process sort after earlier ones, so a
// notification log ordered by ID reads in delivery order.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a hyphenated UUIDv7. It panics if the random source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

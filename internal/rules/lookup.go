package rules

import "github.com/roach88/watchtower/internal/model"

// Generic labels used when a reference no longer resolves.
const (
	UnknownUser       = "Unknown user"
	UnknownSupervisor = "your supervisor"
)

// Lookup resolves foreign keys to display data during rule evaluation.
type Lookup interface {
	// UserName returns the display name of a user.
	UserName(id string) (string, bool)
	// SupervisorOf returns the supervisor id a user reports to.
	SupervisorOf(userID string) (string, bool)
}

// Directory is a Lookup backed by the users collection.
type Directory struct {
	users map[string]model.User
}

// NewDirectory indexes users by id.
func NewDirectory(users []model.User) *Directory {
	d := &Directory{users: make(map[string]model.User, len(users))}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

// UserName implements Lookup.
func (d *Directory) UserName(id string) (string, bool) {
	u, ok := d.users[id]
	if !ok || u.Name == "" {
		return "", false
	}
	return u.Name, true
}

// SupervisorOf implements Lookup.
func (d *Directory) SupervisorOf(userID string) (string, bool) {
	u, ok := d.users[userID]
	if !ok || u.SupervisorID == "" {
		return "", false
	}
	return u.SupervisorID, true
}

// nameOr resolves id to a display name, falling back to the given label.
func nameOr(lk Lookup, id, fallback string) string {
	if lk == nil || id == "" {
		return fallback
	}
	if name, ok := lk.UserName(id); ok {
		return name
	}
	return fallback
}

// supervisorOf returns the supervisor of userID, or "" when unknown.
func supervisorOf(lk Lookup, userID string) string {
	if lk == nil || userID == "" {
		return ""
	}
	sup, _ := lk.SupervisorOf(userID)
	return sup
}

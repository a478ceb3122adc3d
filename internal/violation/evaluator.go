// Package violation detects driver speeding and missed vehicle maintenance.
//
// Evaluation inspects the current absolute state against rule thresholds.
// The previous users snapshot is consulted only to find the edge where a
// driver's speed crosses a threshold, so continuous speeding fires once.
// Missed maintenance is level-triggered and relies on an idempotence key
// carried by the Violation to avoid recreating the same record every cycle.
package violation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/watchtower/internal/model"
)

// IDGenerator produces violation identifiers.
type IDGenerator interface {
	Generate() string
}

// Input is everything one evaluation cycle looks at.
type Input struct {
	// PrevUsers is the users snapshot from the previous cycle.
	PrevUsers []model.User
	// HasPrev is false on the first cycle; no speeding edges are detectable.
	HasPrev  bool
	Users    []model.User
	Vehicles []model.Vehicle
	Rules    []model.ViolationRule
	// Existing violations, used for idempotence keys.
	Existing []model.Violation
	Now      time.Time
}

// Result is the output of one cycle.
type Result struct {
	Violations  []model.Violation
	Speeding    int
	Maintenance int
}

// Evaluator turns rule crossings into Violation records.
type Evaluator struct {
	ids IDGenerator
}

// NewEvaluator creates an evaluator that stamps new violations with ids.
func NewEvaluator(ids IDGenerator) *Evaluator {
	return &Evaluator{ids: ids}
}

// MaintenanceKey is the idempotence key of a missed-maintenance violation.
func MaintenanceKey(vehicleID, maintenanceDate string) string {
	return fmt.Sprintf("maintenance-%s-%s", vehicleID, maintenanceDate)
}

// Evaluate runs every enabled rule once.
// Disabled rules and rules of unknown kind are skipped without error.
func (e *Evaluator) Evaluate(in Input) Result {
	var res Result

	seen := make(map[string]bool, len(in.Existing))
	for _, v := range in.Existing {
		if v.TriggerEventID != "" {
			seen[v.TriggerEventID] = true
		}
	}

	for _, rule := range in.Rules {
		if !rule.Enabled {
			continue
		}
		switch rule.Kind {
		case model.KindSpeeding:
			found := e.speeding(rule, in)
			res.Speeding += len(found)
			res.Violations = append(res.Violations, found...)
		case model.KindMissedMaintenance:
			found := e.maintenance(rule, in, seen)
			res.Maintenance += len(found)
			res.Violations = append(res.Violations, found...)
		}
	}

	return res
}

func (e *Evaluator) speeding(rule model.ViolationRule, in Input) []model.Violation {
	if !in.HasPrev || rule.Threshold <= 0 {
		return nil
	}

	before := make(map[string]float64, len(in.PrevUsers))
	for _, u := range in.PrevUsers {
		before[u.ID] = u.CurrentSpeed
	}

	var out []model.Violation
	for _, u := range in.Users {
		if u.Role != model.RoleDriver {
			continue
		}
		prevSpeed, ok := before[u.ID]
		if !ok {
			// A driver without a previous record sets the baseline.
			continue
		}
		if prevSpeed > rule.Threshold || u.CurrentSpeed <= rule.Threshold {
			continue
		}
		if u.AssignedVehicleID == "" {
			// The crossing is dropped, not deferred.
			continue
		}
		out = append(out, model.Violation{
			ID:        e.ids.Generate(),
			DriverID:  u.ID,
			VehicleID: u.AssignedVehicleID,
			Timestamp: in.Now,
			Description: render(rule.MessageTemplate, map[string]string{
				"driver":    displayName(u),
				"vehicle":   u.AssignedVehicleID,
				"speed":     formatNumber(u.CurrentSpeed),
				"threshold": formatNumber(rule.Threshold),
			}),
			Fine:   rule.Fine,
			Status: model.ViolationPending,
		})
	}
	return out
}

func (e *Evaluator) maintenance(rule model.ViolationRule, in Input, seen map[string]bool) []model.Violation {
	drivers := make(map[string]model.User, len(in.Users))
	for _, u := range in.Users {
		drivers[u.ID] = u
	}

	var out []model.Violation
	for _, v := range in.Vehicles {
		if v.AssignedDriverID == "" || v.NextMaintenance == "" {
			continue
		}
		due, err := ParseMaintenanceDate(v.NextMaintenance)
		if err != nil || !due.Before(in.Now) {
			continue
		}
		key := MaintenanceKey(v.ID, v.NextMaintenance)
		if seen[key] {
			continue
		}
		seen[key] = true

		driver := drivers[v.AssignedDriverID]
		name := displayName(driver)
		if name == "" {
			name = v.AssignedDriverID
		}
		vehicle := v.Plate
		if vehicle == "" {
			vehicle = v.ID
		}
		out = append(out, model.Violation{
			ID:        e.ids.Generate(),
			DriverID:  v.AssignedDriverID,
			VehicleID: v.ID,
			Timestamp: in.Now,
			Description: render(rule.MessageTemplate, map[string]string{
				"driver":  name,
				"vehicle": vehicle,
				"date":    v.NextMaintenance,
			}),
			Fine:           rule.Fine,
			Status:         model.ViolationPending,
			TriggerEventID: key,
		})
	}
	return out
}

// ParseMaintenanceDate accepts a plain date or an RFC 3339 timestamp.
// A plain date is due at midnight UTC.
func ParseMaintenanceDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid maintenance date %q", s)
	}
	return t, nil
}

// formatNumber prints n without exponent or trailing zeros.
func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func displayName(u model.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.ID
}

// render substitutes {name} placeholders. Unknown placeholders are left as is.
func render(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

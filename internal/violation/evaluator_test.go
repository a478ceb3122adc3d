package violation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/watchtower/internal/model"
	"github.com/roach88/watchtower/internal/testutil"
)

var (
	now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	speedRule = model.ViolationRule{
		ID: "speed", Kind: model.KindSpeeding, Enabled: true, Threshold: 60, Fine: 5000,
		MessageTemplate: "{driver} drove {vehicle} at {speed} km/h (limit {threshold})",
	}
	maintenanceRule = model.ViolationRule{
		ID: "maint", Kind: model.KindMissedMaintenance, Enabled: true, Fine: 10000,
		MessageTemplate: "{vehicle} missed maintenance due {date} ({driver})",
	}
)

func driver(speed float64, vehicle string) model.User {
	return model.User{ID: "d1", Name: "Dana Driver", Role: model.RoleDriver, CurrentSpeed: speed, AssignedVehicleID: vehicle}
}

// =============================================================================
// Speeding
// =============================================================================

func TestSpeeding_EdgeTriggeredSequence(t *testing.T) {
	ev := NewEvaluator(testutil.NewSequenceGenerator("vio"))
	speeds := []float64{0, 80, 80, 40, 80}

	var prev []model.User
	hasPrev := false
	total := 0
	for _, s := range speeds {
		curr := []model.User{driver(s, "V1")}
		res := ev.Evaluate(Input{
			PrevUsers: prev, HasPrev: hasPrev, Users: curr,
			Rules: []model.ViolationRule{speedRule}, Now: now,
		})
		total += len(res.Violations)
		assert.Equal(t, len(res.Violations), res.Speeding)
		prev, hasPrev = curr, true
	}

	assert.Equal(t, 2, total, "only the two upward crossings fire")
}

func TestSpeeding_Violation(t *testing.T) {
	ev := NewEvaluator(testutil.NewSequenceGenerator("vio"))

	res := ev.Evaluate(Input{
		PrevUsers: []model.User{driver(60, "V1")}, HasPrev: true,
		Users: []model.User{driver(61, "V1")},
		Rules: []model.ViolationRule{speedRule}, Now: now,
	})

	require.Len(t, res.Violations, 1)
	v := res.Violations[0]
	assert.Equal(t, "vio-0001", v.ID)
	assert.Equal(t, "d1", v.DriverID)
	assert.Equal(t, "V1", v.VehicleID)
	assert.Equal(t, 5000.0, v.Fine)
	assert.Equal(t, model.ViolationPending, v.Status)
	assert.Equal(t, now, v.Timestamp)
	assert.Equal(t, "Dana Driver drove V1 at 61 km/h (limit 60)", v.Description)
	assert.Empty(t, v.TriggerEventID)
}

func TestSpeeding_FractionalCrossing(t *testing.T) {
	ev := NewEvaluator(testutil.NewSequenceGenerator("vio"))
	rule := speedRule
	rule.Threshold = 60
	rule.Fine = 12.5

	res := ev.Evaluate(Input{
		PrevUsers: []model.User{driver(59.5, "V1")}, HasPrev: true,
		Users: []model.User{driver(60.5, "V1")},
		Rules: []model.ViolationRule{rule}, Now: now,
	})
	require.Len(t, res.Violations, 1)
	assert.Equal(t, 12.5, res.Violations[0].Fine)
	assert.Equal(t, "Dana Driver drove V1 at 60.5 km/h (limit 60)", res.Violations[0].Description)

	// Exactly at the threshold is not over it.
	res = ev.Evaluate(Input{
		PrevUsers: []model.User{driver(59.5, "V1")}, HasPrev: true,
		Users: []model.User{driver(60, "V1")},
		Rules: []model.ViolationRule{rule}, Now: now,
	})
	assert.Empty(t, res.Violations)
}

func TestSpeeding_NoVehicleDropsCrossing(t *testing.T) {
	ev := NewEvaluator(testutil.NewSequenceGenerator("vio"))
	rules := []model.ViolationRule{speedRule}

	res := ev.Evaluate(Input{
		PrevUsers: []model.User{driver(10, "")}, HasPrev: true,
		Users: []model.User{driver(90, "")}, Rules: rules, Now: now,
	})
	assert.Empty(t, res.Violations)

	// Gaining a vehicle while still above the threshold is not a crossing.
	res = ev.Evaluate(Input{
		PrevUsers: []model.User{driver(90, "")}, HasPrev: true,
		Users: []model.User{driver(90, "V1")}, Rules: rules, Now: now,
	})
	assert.Empty(t, res.Violations)
}

func TestSpeeding_NoPreviousSnapshot(t *testing.T) {
	ev := NewEvaluator(testutil.NewSequenceGenerator("vio"))

	res := ev.Evaluate(Input{
		Users: []model.User{driver(120, "V1")},
		Rules: []model.ViolationRule{speedRule}, Now: now,
	})
	assert.Empty(t, res.Violations)
}

func TestSpeeding_NewDriverSetsBaseline(t *testing.T) {
	ev := NewEvaluator(testutil.NewSequenceGenerator("vio"))

	res := ev.Evaluate(Input{
		PrevUsers: []model.User{}, HasPrev: true,
		Users: []model.User{driver(120, "V1")},
		Rules: []model.ViolationRule{speedRule}, Now: now,
	})
	assert.Empty(t, res.Violations)
}

func TestSpeeding_IgnoresNonDrivers(t *testing.T) {
	ev := NewEvaluator(testutil.NewSequenceGenerator("vio"))
	clerk := model.User{ID: "e1", Role: model.RoleEmployee, AssignedVehicleID: "V1"}
	fast := clerk
	fast.CurrentSpeed = 100

	res := ev.Evaluate(Input{
		PrevUsers: []model.User{clerk}, HasPrev: true, Users: []model.User{fast},
		Rules: []model.ViolationRule{speedRule}, Now: now,
	})
	assert.Empty(t, res.Violations)
}

func TestEvaluate_SkipsDisabledAndMalformedRules(t *testing.T) {
	ev := NewEvaluator(testutil.NewSequenceGenerator("vio"))
	disabled := speedRule
	disabled.Enabled = false
	zero := speedRule
	zero.Threshold = 0
	unknown := model.ViolationRule{ID: "x", Kind: "idling", Enabled: true}

	res := ev.Evaluate(Input{
		PrevUsers: []model.User{driver(0, "V1")}, HasPrev: true,
		Users: []model.User{driver(100, "V1")},
		Rules: []model.ViolationRule{disabled, zero, unknown}, Now: now,
	})
	assert.Empty(t, res.Violations)
}

// =============================================================================
// Missed maintenance
// =============================================================================

func fleet(date string) ([]model.User, []model.Vehicle) {
	users := []model.User{{ID: "d1", Name: "Dana Driver", Role: model.RoleDriver, AssignedVehicleID: "V1"}}
	vehicles := []model.Vehicle{{ID: "V1", Plate: "ABC-123", AssignedDriverID: "d1", NextMaintenance: date}}
	return users, vehicles
}

func TestMaintenance_IdempotentAcrossCycles(t *testing.T) {
	ev := NewEvaluator(testutil.NewSequenceGenerator("vio"))
	users, vehicles := fleet("2025-03-01")

	var existing []model.Violation
	for cycle := 0; cycle < 2; cycle++ {
		res := ev.Evaluate(Input{
			Users: users, Vehicles: vehicles, Existing: existing,
			Rules: []model.ViolationRule{maintenanceRule}, Now: now,
		})
		existing = append(existing, res.Violations...)
	}

	require.Len(t, existing, 1)
	assert.Equal(t, "maintenance-V1-2025-03-01", existing[0].TriggerEventID)
	assert.Equal(t, "ABC-123 missed maintenance due 2025-03-01 (Dana Driver)", existing[0].Description)
}

func TestMaintenance_NewDateFiresAgain(t *testing.T) {
	ev := NewEvaluator(testutil.NewSequenceGenerator("vio"))
	users, vehicles := fleet("2025-03-01")
	existing := ev.Evaluate(Input{Users: users, Vehicles: vehicles, Rules: []model.ViolationRule{maintenanceRule}, Now: now}).Violations

	vehicles[0].NextMaintenance = "2025-03-05"
	res := ev.Evaluate(Input{Users: users, Vehicles: vehicles, Existing: existing, Rules: []model.ViolationRule{maintenanceRule}, Now: now})

	require.Len(t, res.Violations, 1)
	assert.Equal(t, MaintenanceKey("V1", "2025-03-05"), res.Violations[0].TriggerEventID)
}

func TestMaintenance_Conditions(t *testing.T) {
	tests := []struct {
		name    string
		vehicle model.Vehicle
		want    int
	}{
		{"overdue date", model.Vehicle{ID: "V1", AssignedDriverID: "d1", NextMaintenance: "2025-03-09"}, 1},
		{"overdue timestamp", model.Vehicle{ID: "V1", AssignedDriverID: "d1", NextMaintenance: "2025-03-10T11:59:00Z"}, 1},
		{"due exactly now", model.Vehicle{ID: "V1", AssignedDriverID: "d1", NextMaintenance: "2025-03-10T12:00:00Z"}, 0},
		{"future", model.Vehicle{ID: "V1", AssignedDriverID: "d1", NextMaintenance: "2025-04-01"}, 0},
		{"no driver", model.Vehicle{ID: "V1", NextMaintenance: "2025-03-01"}, 0},
		{"no date", model.Vehicle{ID: "V1", AssignedDriverID: "d1"}, 0},
		{"garbage date", model.Vehicle{ID: "V1", AssignedDriverID: "d1", NextMaintenance: "soon"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := NewEvaluator(testutil.NewSequenceGenerator("vio"))
			res := ev.Evaluate(Input{
				Vehicles: []model.Vehicle{tt.vehicle},
				Rules:    []model.ViolationRule{maintenanceRule}, Now: now,
			})
			assert.Len(t, res.Violations, tt.want)
			assert.Equal(t, tt.want, res.Maintenance)
		})
	}
}

func TestMaintenance_UnknownDriverUsesID(t *testing.T) {
	ev := NewEvaluator(testutil.NewSequenceGenerator("vio"))
	res := ev.Evaluate(Input{
		Vehicles: []model.Vehicle{{ID: "V9", AssignedDriverID: "ghost", NextMaintenance: "2025-01-01"}},
		Rules:    []model.ViolationRule{maintenanceRule}, Now: now,
	})
	require.Len(t, res.Violations, 1)
	assert.Equal(t, "V9 missed maintenance due 2025-01-01 (ghost)", res.Violations[0].Description)
}

func TestMaintenance_TwoRulesShareKey(t *testing.T) {
	ev := NewEvaluator(testutil.NewSequenceGenerator("vio"))
	users, vehicles := fleet("2025-03-01")
	second := maintenanceRule
	second.ID = "maint-2"

	res := ev.Evaluate(Input{
		Users: users, Vehicles: vehicles,
		Rules: []model.ViolationRule{maintenanceRule, second}, Now: now,
	})
	assert.Len(t, res.Violations, 1, "the key is per vehicle and date, not per rule")
}

func TestParseMaintenanceDate(t *testing.T) {
	d, err := ParseMaintenanceDate("2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseMaintenanceDate("03/01/2025")
	assert.Error(t, err)
}

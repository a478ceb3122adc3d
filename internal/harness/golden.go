package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/watchtower/internal/engine"
	"github.com/roach88/watchtower/internal/model"
)

// TraceSnapshot captures everything observable about a scenario run.
// It is serialized as canonical JSON for byte-exact comparison.
type TraceSnapshot struct {
	ScenarioName string               `json:"scenario_name"`
	Trace        []TraceEvent         `json:"trace"`
	Pending      []model.Notification `json:"pending"`
	Toasts       []engine.Toast       `json:"toasts"`
	Violations   []RecordedViolation  `json:"violations"`
}

// Snapshot returns the canonical JSON trace of a run, the content of its
// golden file.
func Snapshot(name string, result *Result) ([]byte, error) {
	return model.MarshalCanonical(TraceSnapshot{
		ScenarioName: name,
		Trace:        result.Trace,
		Pending:      result.Pending,
		Toasts:       result.Toasts,
		Violations:   result.Violations,
	})
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}

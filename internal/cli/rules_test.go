package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/watchtower/internal/model"
)

func TestRules_LoadAndShow(t *testing.T) {
	dir := t.TempDir()
	rulesDir := filepath.Join(dir, "rules")
	writeFile(t, rulesDir, "speeding.cue", speedingRule)
	db := filepath.Join(dir, "w.db")

	out, err := executeCommand(t, "rules", "load", rulesDir, "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "✓ Loaded 1 rule(s)\n", out)

	out, err = executeCommand(t, "rules", "show", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "speed\tspeeding\tenabled\tthreshold=60 fine=150\t{driver} drove {vehicle} at {speed} km/h\n", out)

	out, err = executeCommand(t, "--format", "json", "rules", "show", "--db", db)
	require.NoError(t, err)
	var rules []model.ViolationRule
	decodeResponse(t, out, &rules)
	assert.Equal(t, []model.ViolationRule{{
		ID:              "speed",
		Kind:            model.KindSpeeding,
		Enabled:         true,
		Threshold:       60,
		Fine:            150,
		MessageTemplate: "{driver} drove {vehicle} at {speed} km/h",
	}}, rules)
}

func TestRules_InvalidRulesAreNotLoaded(t *testing.T) {
	dir := t.TempDir()
	rulesDir := filepath.Join(dir, "rules")
	writeFile(t, rulesDir, "speeding.cue", `package rules

violation_rule: speed: {
	kind:    "speeding"
	fine:    150
	message: "{driver}"
}
`)
	db := filepath.Join(dir, "w.db")

	_, err := executeCommand(t, "rules", "load", rulesDir, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err := executeCommand(t, "rules", "show", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No rules loaded.\n", out)
}

func TestRules_LoadedRulesRecordViolations(t *testing.T) {
	dir := t.TempDir()
	rulesDir := filepath.Join(dir, "rules")
	writeFile(t, rulesDir, "speeding.cue", speedingRule)
	db := filepath.Join(dir, "w.db")

	_, err := executeCommand(t, "rules", "load", rulesDir, "--db", db)
	require.NoError(t, err)

	slow := writeFile(t, dir, "slow.json", `[{"id":"d1","name":"Dana","role":"driver","current_speed":0,"assigned_vehicle_id":"V1"}]`)
	fast := writeFile(t, dir, "fast.json", `[{"id":"d1","name":"Dana","role":"driver","current_speed":80,"assigned_vehicle_id":"V1"}]`)

	for _, f := range []string{slow, fast, fast} {
		_, err := executeCommand(t, "replace", "users", f, "--db", db)
		require.NoError(t, err)
	}

	out, err := executeCommand(t, "--format", "json", "history", "--db", db, "--collection", "violations")
	require.NoError(t, err)
	var rows []HistoryRow
	decodeResponse(t, out, &rows)
	assert.Len(t, rows, 1, "staying above the limit records nothing new")
}

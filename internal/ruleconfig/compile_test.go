package ruleconfig

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/watchtower/internal/model"
)

func compileSource(t *testing.T, src string) cue.Value {
	t.Helper()
	v := cuecontext.New().CompileString(src, cue.Filename("rules.cue"))
	require.NoError(t, v.Err())
	return v
}

func TestCompile_Rules(t *testing.T) {
	v := compileSource(t, `
		violation_rule: speeding_city: {
			kind:      "speeding"
			threshold: 60
			fine:      5000
			message:   "{driver} drove {vehicle} at {speed} km/h"
		}
		violation_rule: service_due: {
			kind:    "missed_maintenance"
			enabled: false
			fine:    10000
			message: "{vehicle} missed maintenance on {date}"
		}
	`)

	rules, errs := Compile(v)
	require.Empty(t, errs)
	require.Len(t, rules, 2)

	assert.Equal(t, model.ViolationRule{
		ID:              "speeding_city",
		Kind:            model.KindSpeeding,
		Enabled:         true,
		Threshold:       60,
		Fine:            5000,
		MessageTemplate: "{driver} drove {vehicle} at {speed} km/h",
	}, rules[0])

	assert.Equal(t, "service_due", rules[1].ID)
	assert.False(t, rules[1].Enabled)
	assert.Zero(t, rules[1].Threshold)
}

func TestCompile_NoRules(t *testing.T) {
	rules, errs := Compile(compileSource(t, `other: 1`))
	assert.Empty(t, rules)
	assert.Empty(t, errs)
}

func TestCompileRule_MissingKind(t *testing.T) {
	v := compileSource(t, `violation_rule: r1: { fine: 1, message: "x" }`)

	_, err := CompileRule(v.LookupPath(cue.ParsePath("violation_rule.r1")))
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "kind", ce.Field)
}

func TestCompileRule_FractionalNumbers(t *testing.T) {
	v := compileSource(t, `violation_rule: r1: {
	kind: "speeding"
	threshold: 60.5
	fine: 12.5
	message: "x"
}`)

	rule, err := CompileRule(v.LookupPath(cue.ParsePath("violation_rule.r1")))
	require.NoError(t, err)
	assert.Equal(t, 60.5, rule.Threshold)
	assert.Equal(t, 12.5, rule.Fine)
}

func TestCompileRule_NonNumericThreshold(t *testing.T) {
	v := compileSource(t, `violation_rule: r1: {
	kind: "speeding"
	threshold: "fast"
	message: "x"
}`)

	_, err := CompileRule(v.LookupPath(cue.ParsePath("violation_rule.r1")))
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "threshold", ce.Field)
	assert.Contains(t, ce.Message, "expected number")
	assert.True(t, ce.Pos.IsValid())
	assert.Equal(t, 3, ce.Pos.Line())
}

func TestCompile_SkipsBrokenRuleKeepsOthers(t *testing.T) {
	v := compileSource(t, `
		violation_rule: good: { kind: "speeding", threshold: 50, message: "m" }
		violation_rule: bad: { kind: "speeding", fine: "lots", message: "m" }
	`)

	rules, errs := Compile(v)
	require.Len(t, rules, 1)
	assert.Equal(t, "good", rules[0].ID)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "fine")
}

func TestCompileError_Format(t *testing.T) {
	err := &CompileError{Field: "kind", Message: "kind is required"}
	assert.Equal(t, "kind: kind is required", err.Error())
}

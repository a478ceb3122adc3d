// Package ruleconfig compiles violation rules authored in CUE.
//
// Rules live under the violation_rule field, keyed by rule id:
//
//	violation_rule: speeding_city: {
//		kind:      "speeding"
//		threshold: 60
//		fine:      5000
//		message:   "{driver} drove {vehicle} at {speed} km/h (limit {threshold})"
//	}
//
// enabled defaults to true. Numbers must be integers.
package ruleconfig

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/watchtower/internal/model"
)

// RulesField is the top-level CUE field holding violation rules.
const RulesField = "violation_rule"

// CompileRule parses one rule struct. The rule id is the struct's label.
func CompileRule(v cue.Value) (*model.ViolationRule, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	rule := &model.ViolationRule{Enabled: true}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		rule.ID = labels[len(labels)-1].String()
	}

	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return nil, &CompileError{Field: "kind", Message: "kind is required", Pos: v.Pos()}
	}
	kind, err := kindVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	rule.Kind = model.ViolationKind(kind)

	if ev := v.LookupPath(cue.ParsePath("enabled")); ev.Exists() {
		enabled, err := ev.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		rule.Enabled = enabled
	}

	if rule.Threshold, err = optionalNumber(v, "threshold"); err != nil {
		return nil, err
	}
	if rule.Fine, err = optionalNumber(v, "fine"); err != nil {
		return nil, err
	}

	if mv := v.LookupPath(cue.ParsePath("message")); mv.Exists() {
		msg, err := mv.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		rule.MessageTemplate = msg
	}

	return rule, nil
}

// Compile extracts every rule under RulesField, in source order.
// A rule that fails to compile is reported and skipped; the rest still load.
func Compile(v cue.Value) ([]model.ViolationRule, []error) {
	rulesVal := v.LookupPath(cue.ParsePath(RulesField))
	if !rulesVal.Exists() {
		return nil, nil
	}

	iter, err := rulesVal.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}

	var (
		out  []model.ViolationRule
		errs []error
	)
	for iter.Next() {
		rule, err := CompileRule(iter.Value())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, *rule)
	}
	return out, errs
}

func optionalNumber(v cue.Value, field string) (float64, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, nil
	}
	switch fv.Kind() {
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
	default:
		return 0, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("expected number, got %v", fv.IncompleteKind()),
			Pos:     fv.Pos(),
		}
	}
	n, err := fv.Float64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return n, nil
}

// CompileError is a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}

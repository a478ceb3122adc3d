package ruleconfig

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/watchtower/internal/model"
)

// Validation error codes (E200-E299)
const (
	ErrUnknownKind        = "E201" // kind is not speeding or missed_maintenance
	ErrThresholdRequired  = "E202" // speeding rule without a positive threshold
	ErrNegativeFine       = "E203" // fine below zero
	ErrMessageEmpty       = "E204" // message template is blank
	ErrDuplicateID        = "E205" // two rules share an id
	ErrUnknownPlaceholder = "E206" // placeholder not available for the kind
)

// ValidationError is one problem with a compiled rule.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var placeholderRe = regexp.MustCompile(`\{([a-z_]+)\}`)

// placeholders lists what each kind substitutes into its message.
var placeholders = map[model.ViolationKind][]string{
	model.KindSpeeding:          {"driver", "vehicle", "speed", "threshold"},
	model.KindMissedMaintenance: {"driver", "vehicle", "date"},
}

// Validate checks compiled rules. It reports every problem found.
//
// The evaluator skips malformed rules silently at runtime; Validate is how an
// operator finds out about them before they are loaded.
func Validate(rules []model.ViolationRule) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(rules))

	for _, r := range rules {
		field := "violation_rule." + r.ID

		if seen[r.ID] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate rule id %q", r.ID),
				Code:    ErrDuplicateID,
			})
		}
		seen[r.ID] = true

		allowed, known := placeholders[r.Kind]
		if !known {
			errs = append(errs, ValidationError{
				Field:   field + ".kind",
				Message: fmt.Sprintf("unknown kind %q", r.Kind),
				Code:    ErrUnknownKind,
			})
		}

		if r.Kind == model.KindSpeeding && r.Threshold <= 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".threshold",
				Message: "speeding rules need a threshold above zero",
				Code:    ErrThresholdRequired,
			})
		}

		if r.Fine < 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".fine",
				Message: fmt.Sprintf("fine must not be negative, got %g", r.Fine),
				Code:    ErrNegativeFine,
			})
		}

		if strings.TrimSpace(r.MessageTemplate) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".message",
				Message: "message is required",
				Code:    ErrMessageEmpty,
			})
			continue
		}

		if !known {
			continue
		}
		for _, m := range placeholderRe.FindAllStringSubmatch(r.MessageTemplate, -1) {
			if !contains(allowed, m[1]) {
				errs = append(errs, ValidationError{
					Field:   field + ".message",
					Message: fmt.Sprintf("placeholder {%s} is not available for %s rules", m[1], r.Kind),
					Code:    ErrUnknownPlaceholder,
				})
			}
		}
	}

	return errs
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}

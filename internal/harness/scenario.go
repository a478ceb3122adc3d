package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/watchtower/internal/model"
)

// DefaultNow is the wall-clock time a scenario starts at when it sets none.
const DefaultNow = "2025-03-10T12:00:00Z"

// Scenario is a scripted run of the dispatcher.
// Scenarios replay collection replaces for one actor and assert on the
// notifications, toasts and violations that result.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Actor is the viewer at the start of the run. Nil means no one is
	// logged in and no rule fires until a login step.
	Actor *model.Actor `yaml:"actor,omitempty"`

	// Now is the RFC 3339 wall-clock start. Default: DefaultNow.
	Now string `yaml:"now,omitempty"`

	// RulesDir is a directory of CUE violation rules, relative to the
	// scenario file. Compiled rules replace any seeded violation_rules.
	RulesDir string `yaml:"rules_dir,omitempty"`

	// Seed holds collection values written to the store before the first
	// step, keyed by collection name. Seeding never fires rules.
	Seed map[string][]any `yaml:"seed,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions are checked after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one scripted action.
type Step struct {
	// Action is one of the Step* constants.
	Action string `yaml:"action"`

	// Collection and Items are used by replace.
	Collection string `yaml:"collection,omitempty"`
	Items      []any  `yaml:"items,omitempty"`

	// Duration is used by advance, in time.ParseDuration form.
	Duration string `yaml:"duration,omitempty"`

	// Actor is used by login.
	Actor *model.Actor `yaml:"actor,omitempty"`
}

// Step actions.
const (
	StepPrime   = "prime"
	StepReplace = "replace"
	StepDismiss = "dismiss"
	StepAct     = "act"
	StepSweep   = "sweep"
	StepAdvance = "advance"
	StepLogin   = "login"
	StepLogout  = "logout"
)

// Assertion validates the result of a run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Count is used by the *_count assertions.
	Count *int `yaml:"count,omitempty"`

	// Notification fields matched by notification_contains. Empty fields
	// match anything; Message matches as a substring.
	Title    string `yaml:"title,omitempty"`
	SourceID string `yaml:"source_id,omitempty"`
	Category string `yaml:"category,omitempty"`
	Message  string `yaml:"message,omitempty"`

	// Titles is the expected delivery order for notification_order.
	Titles []string `yaml:"titles,omitempty"`

	// Text is matched as a substring by toast_contains and
	// violation_contains.
	Text string `yaml:"text,omitempty"`

	// Target is the navigation target for navigated_to.
	Target string `yaml:"target,omitempty"`
}

// Assertion types.
const (
	AssertNotificationCount    = "notification_count"
	AssertNotificationContains = "notification_contains"
	AssertNotificationOrder    = "notification_order"
	AssertPendingCount         = "pending_count"
	AssertViolationCount       = "violation_count"
	AssertViolationContains    = "violation_contains"
	AssertToastContains        = "toast_contains"
	AssertNavigatedTo          = "navigated_to"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly. RulesDir is resolved
// relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	if scenario.RulesDir != "" && !filepath.IsAbs(scenario.RulesDir) {
		scenario.RulesDir = filepath.Join(filepath.Dir(path), scenario.RulesDir)
	}
	return scenario, nil
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Now != "" {
		if _, err := time.Parse(time.RFC3339, s.Now); err != nil {
			return fmt.Errorf("now: %w", err)
		}
	}
	if s.Actor != nil && !s.Actor.Role.Valid() {
		return fmt.Errorf("actor: unknown role %q", s.Actor.Role)
	}

	for name := range s.Seed {
		if _, err := model.ParseCollection(name); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, st *Step) error {
	switch st.Action {
	case "":
		return fmt.Errorf("steps[%d]: action is required", index)
	case StepReplace:
		if st.Collection == "" {
			return fmt.Errorf("steps[%d]: collection is required for replace", index)
		}
		if _, err := model.ParseCollection(st.Collection); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
	case StepAdvance:
		d, err := time.ParseDuration(st.Duration)
		if err != nil {
			return fmt.Errorf("steps[%d]: duration: %w", index, err)
		}
		if d <= 0 {
			return fmt.Errorf("steps[%d]: duration must be positive", index)
		}
	case StepLogin:
		if st.Actor == nil {
			return fmt.Errorf("steps[%d]: actor is required for login", index)
		}
		if !st.Actor.Role.Valid() {
			return fmt.Errorf("steps[%d]: unknown role %q", index, st.Actor.Role)
		}
	case StepPrime, StepDismiss, StepAct, StepSweep, StepLogout:
	default:
		return fmt.Errorf("steps[%d]: unknown action %q", index, st.Action)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertNotificationCount, AssertPendingCount, AssertViolationCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for %s", index, a.Type)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertNotificationContains:
		if a.Title == "" && a.SourceID == "" && a.Category == "" && a.Message == "" {
			return fmt.Errorf("assertions[%d]: at least one of title, source_id, category, message is required", index)
		}
	case AssertNotificationOrder:
		if len(a.Titles) == 0 {
			return fmt.Errorf("assertions[%d]: titles list is required for notification_order", index)
		}
	case AssertToastContains, AssertViolationContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertNavigatedTo:
		if a.Target == "" {
			return fmt.Errorf("assertions[%d]: target is required for navigated_to", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

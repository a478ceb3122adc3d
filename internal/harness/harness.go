package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/roach88/watchtower/internal/engine"
	"github.com/roach88/watchtower/internal/model"
	"github.com/roach88/watchtower/internal/ruleconfig"
	"github.com/roach88/watchtower/internal/store"
	"github.com/roach88/watchtower/internal/testutil"
)

// Harness runs one scenario against a real Dispatcher.
type Harness struct {
	store  *store.Store
	disp   *engine.Dispatcher
	actor  *engine.StaticActor
	toasts *engine.ToastLog
	nav    *engine.NavigationLog
	clock  *anchoredClock
	logger *slog.Logger
}

// anchoredClock is a fake clock whose Now starts at a chosen instant.
// Only Now is anchored; timers keep the fake clock's own epoch.
type anchoredClock struct {
	*clockz.FakeClock
	origin time.Time
	anchor time.Time
}

func newAnchoredClock(anchor time.Time) *anchoredClock {
	fake := clockz.NewFakeClock()
	return &anchoredClock{FakeClock: fake, origin: fake.Now(), anchor: anchor}
}

func (c *anchoredClock) Now() time.Time {
	return c.anchor.Add(c.FakeClock.Now().Sub(c.origin))
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database with sequential ids
// ("n-0001", ...) and a fake wall clock, so the same scenario always
// produces the same trace.
//
// Execution flow:
//  1. Open an in-memory store and write the seed collections
//  2. Compile rules_dir, if set, into violation_rules
//  3. Execute steps in order
//  4. Collect queue, toasts, navigation and stored violations
//  5. Evaluate assertions
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	now := scenario.Now
	if now == "" {
		now = DefaultNow
	}
	start, err := time.Parse(time.RFC3339, now)
	if err != nil {
		return nil, fmt.Errorf("invalid now: %w", err)
	}

	if err := seed(ctx, st, scenario); err != nil {
		return nil, err
	}

	h := &Harness{
		store:  st,
		actor:  &engine.StaticActor{},
		toasts: &engine.ToastLog{},
		nav:    &engine.NavigationLog{},
		clock:  newAnchoredClock(start),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if scenario.Actor != nil {
		h.actor.Set(*scenario.Actor)
	}
	h.disp = engine.New(st,
		engine.WithActorSource(h.actor),
		engine.WithToasts(h.toasts),
		engine.WithNavigation(h.nav),
		engine.WithIDs(testutil.NewSequenceGenerator("n")),
		engine.WithClock(h.clock),
	)

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, step, result); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
		}
	}

	if err := h.collect(ctx, result); err != nil {
		return nil, err
	}

	for i, assertion := range scenario.Assertions {
		if err := evaluateAssertion(result, assertion); err != nil {
			result.AddError(fmt.Sprintf("assertion %d: %v", i+1, err))
		}
	}

	return result, nil
}

// seed writes the scenario's initial collections straight to the store.
func seed(ctx context.Context, st *store.Store, scenario *Scenario) error {
	for name, items := range scenario.Seed {
		c, err := model.ParseCollection(name)
		if err != nil {
			return err
		}
		if err := writeItems(ctx, st, c, items); err != nil {
			return fmt.Errorf("seed %s: %w", c, err)
		}
	}

	if scenario.RulesDir == "" {
		return nil
	}
	loaded, errs := ruleconfig.LoadDir(scenario.RulesDir)
	if len(errs) > 0 {
		return fmt.Errorf("load rules: %w", errors.Join(errs...))
	}
	if verrs := ruleconfig.Validate(loaded.Rules); len(verrs) > 0 {
		joined := make([]error, len(verrs))
		for i, ve := range verrs {
			joined[i] = ve
		}
		return fmt.Errorf("validate rules: %w", errors.Join(joined...))
	}
	data, err := model.MarshalCanonical(loaded.Rules)
	if err != nil {
		return err
	}
	return st.Replace(ctx, model.CollectionViolationRules, data)
}

func writeItems[T any](ctx context.Context, st *store.Store, c model.Collection, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := model.MarshalCanonical(items)
	if err != nil {
		return err
	}
	return st.Replace(ctx, c, data)
}

// executeStep runs one step and appends its trace event.
func (h *Harness) executeStep(ctx context.Context, step Step, result *Result) error {
	ev := TraceEvent{Action: step.Action}
	h.logger.Debug("step", "action", step.Action, "collection", step.Collection)

	switch step.Action {
	case StepPrime:
		if err := h.disp.Prime(ctx); err != nil {
			return err
		}

	case StepReplace:
		c, err := model.ParseCollection(step.Collection)
		if err != nil {
			return err
		}
		data, err := model.Encode(step.Items)
		if err != nil {
			return err
		}
		notes, err := h.disp.Replace(ctx, c, data)
		if err != nil {
			return err
		}
		ev.Collection = string(c)
		ev.Notifications = notes
		result.Delivered = append(result.Delivered, notes...)

	case StepDismiss:
		if n, ok := h.disp.Dismiss(); ok {
			ev.Delivered = &n
		}

	case StepAct:
		if n, ok := h.disp.Act(); ok {
			ev.Delivered = &n
			ev.Target = n.NavigateTo
		}

	case StepSweep:
		n, err := h.disp.Sweep(ctx)
		if err != nil {
			return err
		}
		ev.Recorded = n

	case StepAdvance:
		d, err := time.ParseDuration(step.Duration)
		if err != nil {
			return err
		}
		h.clock.Advance(d)

	case StepLogin:
		if step.Actor == nil {
			return fmt.Errorf("login without actor")
		}
		h.actor.Set(*step.Actor)
		h.disp.Reset()
		if err := h.disp.Prime(ctx); err != nil {
			return err
		}

	case StepLogout:
		h.actor.Clear()
		h.disp.Reset()

	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}

	result.addEvent(ev)
	return nil
}

// collect copies the final observable state into result.
func (h *Harness) collect(ctx context.Context, result *Result) error {
	result.Pending = append(result.Pending, h.disp.Queue().Items()...)
	result.Toasts = append(result.Toasts, h.toasts.Toasts()...)
	result.Navigations = append(result.Navigations, h.nav.Targets()...)

	data, _, err := h.store.Read(ctx, model.CollectionViolations)
	if err != nil {
		return fmt.Errorf("read violations: %w", err)
	}
	stored, err := model.Decode[model.Violation](data)
	if err != nil {
		return fmt.Errorf("decode violations: %w", err)
	}
	for _, v := range stored {
		result.Violations = append(result.Violations, recordViolation(v))
	}
	return nil
}

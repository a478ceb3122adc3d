package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/zoobzio/clockz"

	"github.com/roach88/watchtower/internal/model"
	"github.com/roach88/watchtower/internal/rules"
	"github.com/roach88/watchtower/internal/snapshot"
	"github.com/roach88/watchtower/internal/violation"
)

// Dispatcher turns collection replaces into notifications and violations.
//
// Each Replace writes the collection to the store and runs one pass: the new
// value is diffed against the tracker's previous value, every table row is
// evaluated for the current actor, qualifying notifications are enqueued, and
// the tracker advances. Replaces of users or vehicles also run the violation
// evaluator and append new violations to the store.
//
// Thread-safety: all methods are safe for concurrent use. Passes are mutually
// exclusive; two concurrent replaces run one after the other.
type Dispatcher struct {
	mu sync.Mutex

	store   SnapshotStore
	actors  ActorSource
	toasts  ToastSink
	nav     NavigationSink
	ids     IDGenerator
	wall    clockz.Clock
	seq     *Sequence
	tracker *snapshot.Tracker
	queue   *Queue

	evaluator *violation.Evaluator
	watches   []watch
	byName    map[model.Collection]watch
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithActorSource sets where the current actor comes from.
// Without one the dispatcher runs with no actor: no rules fire.
func WithActorSource(src ActorSource) Option {
	return func(d *Dispatcher) { d.actors = src }
}

// WithToasts sets the toast sink. Default: LogToasts.
func WithToasts(sink ToastSink) Option {
	return func(d *Dispatcher) { d.toasts = sink }
}

// WithNavigation sets the navigation sink. Default: LogNavigation.
func WithNavigation(sink NavigationSink) Option {
	return func(d *Dispatcher) { d.nav = sink }
}

// WithIDs sets the generator for notification and violation ids.
// Default: UUIDv7Generator.
func WithIDs(ids IDGenerator) Option {
	return func(d *Dispatcher) { d.ids = ids }
}

// WithClock sets the wall clock used to stamp violations and decide when
// maintenance is overdue. Default: clockz.RealClock.
func WithClock(c clockz.Clock) Option {
	return func(d *Dispatcher) { d.wall = c }
}

// WithSequence sets the pass sequence, for resuming numbering.
func WithSequence(s *Sequence) Option {
	return func(d *Dispatcher) { d.seq = s }
}

// New creates a Dispatcher over store.
func New(store SnapshotStore, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:   store,
		actors:  &StaticActor{},
		toasts:  LogToasts{},
		nav:     LogNavigation{},
		ids:     UUIDv7Generator{},
		wall:    clockz.RealClock,
		seq:     NewSequence(),
		tracker: snapshot.NewTracker(),
		queue:   NewQueue(),
		watches: defaultWatches(),
		byName:  make(map[model.Collection]watch),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.evaluator = violation.NewEvaluator(d.ids)
	for _, w := range d.watches {
		d.byName[w.collection()] = w
	}
	return d
}

// Table lists the eligibility table rows in evaluation order.
func (d *Dispatcher) Table() []Row {
	var out []Row
	for _, w := range d.watches {
		out = append(out, w.rows()...)
	}
	return out
}

// Queue returns the delivery queue, for waiting on changes.
func (d *Dispatcher) Queue() *Queue {
	return d.queue
}

// Prime seeds the tracker from the store without firing any rule.
// It is the login baseline: items that already exist are never announced.
// A collection that was never written primes as empty.
func (d *Dispatcher) Prime(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	seq := d.seq.Next()
	for _, w := range d.watches {
		data, _, err := d.store.Read(ctx, w.collection())
		if err != nil {
			return newStoreReadError(w.collection(), err)
		}
		if _, err := w.observe(d.tracker, data, seq, evaluation{}); err != nil {
			return err
		}
	}

	slog.Debug("tracker primed", "seq", seq, "collections", len(d.watches))
	return nil
}

// Reset forgets every previous snapshot and drops queued notifications,
// as when the actor logs out.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tracker.Reset()
	d.queue.Clear()
}

// Replace stores data as the whole value of c and runs one pass.
//
// data must be a JSON array of the collection's elements; a malformed value
// is rejected before anything is written. A store write failure is reported
// as a single warning toast and the pass still runs on the new value.
// It returns the notifications enqueued by the pass.
func (d *Dispatcher) Replace(ctx context.Context, c model.Collection, data []byte) ([]model.Notification, error) {
	canon, err := canonicalize(c, data)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.store.Replace(ctx, c, canon); err != nil {
		slog.Warn("snapshot write failed", "collection", c, "error", err)
		d.toasts.Toast(fmt.Sprintf("Could not save %s", c), SeverityWarning)
	}

	w, tracked := d.byName[c]
	if !tracked {
		return nil, nil
	}
	return d.pass(ctx, w, canon, true)
}

// ReplaceItems encodes items and replaces c with them.
func ReplaceItems[T any](ctx context.Context, d *Dispatcher, c model.Collection, items []T) ([]model.Notification, error) {
	data, err := model.Encode(items)
	if err != nil {
		return nil, newDecodeError(c, err)
	}
	return d.Replace(ctx, c, data)
}

// Observe runs one pass for a value that is already in the store, such as a
// replace made by another process. It only derives notifications: the writer
// already evaluated violations for that replace, and speeding has no key to
// de-duplicate a second evaluation. Nothing is written.
func (d *Dispatcher) Observe(ctx context.Context, c model.Collection, data []byte) ([]model.Notification, error) {
	canon, err := canonicalize(c, data)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	w, tracked := d.byName[c]
	if !tracked {
		return nil, nil
	}
	return d.pass(ctx, w, canon, false)
}

// Sweep runs the violation evaluator without a replace, so maintenance that
// became overdue with the passage of time is recorded. Speeding cannot fire
// from a sweep because driver speeds did not change.
// It returns the number of violations recorded.
func (d *Dispatcher) Sweep(ctx context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	users := liveSnapshot[model.User](ctx, d, model.CollectionUsers)
	return d.recordViolations(ctx, users, true)
}

// Current returns the notification being presented.
func (d *Dispatcher) Current() (model.Notification, bool) {
	return d.queue.Current()
}

// Dismiss removes the current notification.
func (d *Dispatcher) Dismiss() (model.Notification, bool) {
	return d.queue.Dismiss()
}

// Act navigates to the current notification's target and dismisses it.
func (d *Dispatcher) Act() (model.Notification, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, ok := d.queue.Current()
	if !ok {
		return model.Notification{}, false
	}
	d.nav.Navigate(n.NavigateTo)
	d.queue.Dismiss()
	return n, true
}

// pass must be called with mu held. record runs the violation evaluator
// for users and vehicles.
func (d *Dispatcher) pass(ctx context.Context, w watch, data []byte, record bool) ([]model.Notification, error) {
	seq := d.seq.Next()
	c := w.collection()

	ev := evaluation{}
	if actor, ok := d.actors.CurrentActor(); ok {
		ev = evaluation{
			present: true,
			actor:   actor,
			caps:    rules.Resolve(actor),
			lookup:  rules.NewDirectory(liveSnapshot[model.User](ctx, d, model.CollectionUsers)),
		}
	}

	prevUsers, hasPrevUsers, err := snapshot.Get[model.User](d.tracker, model.CollectionUsers)
	if err != nil {
		return nil, err
	}

	notes, err := w.observe(d.tracker, data, seq, ev)
	if err != nil {
		return nil, err
	}
	for i := range notes {
		notes[i].ID = d.ids.Generate()
		d.queue.Enqueue(notes[i])
	}

	slog.Debug("pass complete",
		"seq", seq,
		"collection", c,
		"actor", ev.actor.ID,
		"notifications", len(notes))

	if !record {
		return notes, nil
	}
	switch c {
	case model.CollectionUsers:
		d.recordViolations(ctx, prevUsers, hasPrevUsers)
	case model.CollectionVehicles:
		users := liveSnapshot[model.User](ctx, d, model.CollectionUsers)
		d.recordViolations(ctx, users, true)
	}

	return notes, nil
}

// recordViolations evaluates the violation rules against the live users and
// vehicles and appends new violations to the store in a single write.
// prevUsers is the users snapshot speeding edges are measured against.
func (d *Dispatcher) recordViolations(ctx context.Context, prevUsers []model.User, hasPrev bool) (int, error) {
	ruleSet, err := readSnapshot[model.ViolationRule](ctx, d.store, model.CollectionViolationRules)
	if err != nil {
		slog.Warn("violation rules unavailable", "error", err)
		return 0, err
	}
	if len(ruleSet) == 0 {
		return 0, nil
	}
	existing, err := readSnapshot[model.Violation](ctx, d.store, model.CollectionViolations)
	if err != nil {
		slog.Warn("violations unavailable", "error", err)
		return 0, err
	}

	res := d.evaluator.Evaluate(violation.Input{
		PrevUsers: prevUsers,
		HasPrev:   hasPrev,
		Users:     liveSnapshot[model.User](ctx, d, model.CollectionUsers),
		Vehicles:  liveSnapshot[model.Vehicle](ctx, d, model.CollectionVehicles),
		Rules:     ruleSet,
		Existing:  existing,
		Now:       d.wall.Now(),
	})
	n := len(res.Violations)
	if n == 0 {
		return 0, nil
	}

	data, err := model.MarshalCanonical(append(existing, res.Violations...))
	if err != nil {
		return 0, newDecodeError(model.CollectionViolations, err)
	}
	if err := d.store.Replace(ctx, model.CollectionViolations, data); err != nil {
		slog.Warn("violation write failed", "count", n, "error", err)
		d.toasts.Toast(fmt.Sprintf("Could not record %d violation(s)", n), SeverityWarning)
		return 0, newStoreWriteError(model.CollectionViolations, err)
	}

	slog.Info("violations recorded",
		"count", n,
		"speeding", res.Speeding,
		"maintenance", res.Maintenance)
	d.toasts.Toast(fmt.Sprintf("%d new violation(s) recorded", n), SeverityWarning)
	return n, nil
}

// liveSnapshot returns the tracker's value of c, falling back to the store
// when the collection has not been observed yet. Failures yield an empty
// snapshot; rules degrade to generic labels rather than fail.
func liveSnapshot[T any](ctx context.Context, d *Dispatcher, c model.Collection) []T {
	if items, ok, err := snapshot.Get[T](d.tracker, c); err == nil && ok {
		return items
	}
	items, err := readSnapshot[T](ctx, d.store, c)
	if err != nil {
		slog.Warn("snapshot unavailable", "collection", c, "error", err)
		return nil
	}
	return items
}

func readSnapshot[T any](ctx context.Context, s SnapshotStore, c model.Collection) ([]T, error) {
	data, _, err := s.Read(ctx, c)
	if err != nil {
		return nil, newStoreReadError(c, err)
	}
	items, err := model.Decode[T](data)
	if err != nil {
		return nil, newDecodeError(c, err)
	}
	return items, nil
}

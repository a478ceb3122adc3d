// Package engine derives notifications from collection snapshots and
// delivers them one at a time.
//
// A Dispatcher owns the previous-snapshot tracker and the delivery queue.
// Every replace of a collection is one pass:
//
//  1. The new value is written to the SnapshotStore.
//  2. It is diffed against the tracker's previous value of that collection,
//     once per row of the eligibility table.
//  3. Each transition is offered to the row's rules for the current actor.
//  4. Matching notifications get an ID and join the Queue in discovery order.
//  5. The tracker advances, even when no actor is present.
//
// Replaces of users or vehicles, and Sweep, additionally run the violation
// evaluator and append new violations to the store.
//
// Passes are serialized by a mutex, so notifications from two replaces never
// interleave. The Queue is single-flight: Current stays put until Dismiss or
// Act removes it.
//
// Storage is best effort. A failed write is reported through the ToastSink
// and the pass continues on the in-memory value; nothing is retried.
package engine

// Package harness runs scripted scenarios through the real dispatcher.
//
// Each scenario gets a fresh in-memory SQLite store, sequential ids and a
// fake wall clock, so a run is reproducible byte for byte and its trace can
// be compared against a golden file.
//
// # Scenario Format
//
//	name: ticket_category_scope
//	description: "A category supervisor hears about billing tickets only"
//	actor: { id: sup1, role: supervisor, category_ids: [billing] }
//	now: "2025-03-10T12:00:00Z"
//	rules_dir: rules
//	seed:
//	  users:
//	    - { id: sup1, name: Sam, role: supervisor }
//	steps:
//	  - action: prime
//	  - action: replace
//	    collection: tickets
//	    items:
//	      - { id: T1, status: new, category_id: billing }
//	  - action: act
//	assertions:
//	  - type: notification_count
//	    count: 1
//	  - type: navigated_to
//	    target: tickets
//
// # Steps
//
//   - prime: seed the previous-snapshot tracker from the store
//   - replace: replace a collection with items and run a pass
//   - dismiss: remove the current notification
//   - act: navigate to the current notification and dismiss it
//   - sweep: run the violation evaluator without a replace
//   - advance: move the wall clock forward by duration
//   - login: switch to actor, reset and prime
//   - logout: clear the actor and reset
//
// # Assertion Types
//
//   - notification_count: exactly count notifications were enqueued
//   - notification_contains: a notification matches title, source_id, category, message
//   - notification_order: titles were enqueued in this order
//   - pending_count: count notifications remain queued, current included
//   - violation_count: count violations are stored
//   - violation_contains: a stored violation description contains text
//   - toast_contains: a toast contains text
//   - navigated_to: act navigated to target
package harness

// Package harness provides scenario-based conformance testing for the
// survey flow engine.
//
// Scenarios are YAML files describing a full kiosk visit: the schema,
// the campaign settings, a scripted sequence of answers and navigation
// intents, and the terminal-step data. The harness replays the script
// against a flow.Session, records a trace of every transition, and
// captures the final submission payload.
//
// # Scenario Format
//
//	name: likert_branch
//	description: "Low likert answer reveals the follow-up question"
//	config:
//	  token: demo
//	  require_area: false
//	  shifts: []
//	schema:
//	  questions:
//	    - id: q1
//	      type: likert
//	      required: true
//	      text: { es: "¿Qué tal?" }
//	steps:
//	  - answer: 2
//	  - expect_visible: [q1, q2]
//	  - back: true
//	  - answer: 5
//	final:
//	  shift: matutino
//
// Steps execute in order. Expectation fields (expect_visible,
// expect_current, expect_step) assert on the session without mutating
// it; expect_error declares that the step's own action must be rejected
// with the given validation code.
//
// # Deterministic Testing
//
// A scenario run has no clock, randomness, or I/O, so the trace is
// identical across runs and suitable for golden file comparison via
// RunWithGolden. Regenerate golden files with:
//
//	go test ./internal/harness -update
package harness

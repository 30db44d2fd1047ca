// Package flow implements the kiosk survey runtime: condition evaluation,
// step navigation, and answer validation.
//
// ARCHITECTURE:
//
// Pure transition functions over explicit state:
// All session state lives in a Session struct. Rendering layers (the CLI
// front-end, or any other UI) only read state and dispatch intents; they
// never own answers or the step pointer.
//
// The visible step sequence is recomputed from scratch on every transition
// by filtering all questions through the condition evaluator against the
// current answer set. It is never cached - answers can change between
// steps, and with them the visibility of later questions. Advance therefore
// clamps the step pointer against the freshly recomputed sequence.
//
// Missing answers:
// A condition against an unanswered question fails eq and in, and satisfies
// neq. A condition whose source question does not exist in the schema is
// never satisfied, regardless of operator.
package flow

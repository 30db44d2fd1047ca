// Package builder implements the authoring side of the survey system:
// question editing and the branch-rule consistency engine.
//
// Branching is stored in exactly one place: each question's show_if
// condition list (the edge view), which is what the runtime consumes. The
// rule view an author edits - "if the answer to q1 is 5, show q2 and q3" -
// is an ephemeral projection recomputed from the edges with DeriveRules and
// written back with CommitRules. The two views never drift because the rule
// view is never stored.
//
// CommitRules is a full replace for one source question: every condition
// referencing the source is removed, then the surviving rules are re-added.
// Rules with an empty match value or no targets are silently dropped.
package builder

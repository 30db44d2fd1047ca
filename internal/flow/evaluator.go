package flow

import (
	"slices"

	"github.com/bluewave/kiosko/internal/schema"
)

// Visible reports whether a question should be shown under the current
// answers. A question with no conditions is always visible; otherwise every
// condition must hold (logical AND), and evaluation stops at the first
// failing condition.
func Visible(s *schema.Schema, q *schema.Question, answers schema.AnswerSet) bool {
	for _, c := range q.ShowIf {
		if !evalCondition(s, c, answers) {
			return false
		}
	}
	return true
}

// VisibleQuestions returns the currently visible questions in schema order.
func VisibleQuestions(s *schema.Schema, answers schema.AnswerSet) []*schema.Question {
	visible := make([]*schema.Question, 0, len(s.Questions))
	for i := range s.Questions {
		q := &s.Questions[i]
		if Visible(s, q, answers) {
			visible = append(visible, q)
		}
	}
	return visible
}

// evalCondition evaluates one condition against the answer set.
//
// Both sides are compared in string form: a likert answer 5 matches an
// operand authored as "5". A condition referencing a question that is not
// in the schema is never satisfied; the authoring side normally strips such
// conditions, but a stale snapshot must not make the runtime fail.
func evalCondition(s *schema.Schema, c schema.Condition, answers schema.AnswerSet) bool {
	if s.Question(c.Question) == nil {
		return false
	}

	v, answered := answers.Lookup(c.Question)

	switch c.Operator() {
	case schema.OpEq:
		return answered && schema.Stringify(v) == c.Value.String()
	case schema.OpNeq:
		return !answered || schema.Stringify(v) != c.Value.String()
	case schema.OpIn:
		return answered && slices.Contains(c.Value.Members(), schema.Stringify(v))
	default:
		return false
	}
}

package builder

import (
	"strings"

	"github.com/bluewave/kiosko/internal/schema"
)

// Rule is the authoring-time view of one branch decision: when the source
// question's answer matches Value, show the Targets. A Value containing a
// comma matches any of the listed values.
type Rule struct {
	Value   string   `json:"value"`
	Targets []string `json:"targets"`
}

// Inert reports whether the rule would project to no conditions. Inert
// rules are legal while editing (a half-filled form row) but are dropped
// on commit.
func (r Rule) Inert() bool {
	return strings.TrimSpace(r.Value) == "" || len(r.Targets) == 0
}

// DeriveRules projects the edge view back to editable rules for one source
// question: conditions referencing the source on any later question are
// grouped by (operator, operand), and each group's operand is rendered to
// its editable string form (an in-set joins with commas). Group order
// follows first appearance in schema order, so deriving is deterministic.
//
// This is the only path from edges to rules; no rule storage exists at rest.
func DeriveRules(s *schema.Schema, sourceID string) []Rule {
	srcIdx := s.Index(sourceID)
	if srcIdx < 0 {
		return nil
	}

	var rules []Rule
	index := make(map[string]int)
	for i := srcIdx + 1; i < len(s.Questions); i++ {
		q := &s.Questions[i]
		for _, c := range q.ShowIf {
			if c.Question != sourceID {
				continue
			}
			key := string(c.Operator()) + ":" + c.Value.Key()
			at, ok := index[key]
			if !ok {
				at = len(rules)
				index[key] = at
				rules = append(rules, Rule{Value: c.Value.String()})
			}
			rules[at].Targets = append(rules[at].Targets, q.ID)
		}
	}
	return rules
}

// CommitRules writes an edited rule set back to the edge view. All existing
// conditions referencing the source are removed first, then each non-inert
// rule adds one condition per target. The operator is in when the match
// value contains a comma, else eq. Targets that no longer exist are skipped.
func CommitRules(s *schema.Schema, sourceID string, rules []Rule) {
	stripConditions(s, sourceID)

	for _, r := range rules {
		value := strings.TrimSpace(r.Value)
		if value == "" || len(r.Targets) == 0 {
			continue
		}

		var operand schema.Operand
		op := schema.OpEq
		if strings.Contains(value, ",") {
			op = schema.OpIn
			operand = schema.ListOperand(splitTrimmed(value)...)
		} else {
			operand = schema.ScalarOperand(value)
		}

		for _, targetID := range r.Targets {
			target := s.Question(targetID)
			if target == nil {
				continue
			}
			target.ShowIf = append(target.ShowIf, schema.Condition{
				Question: sourceID,
				Op:       op,
				Value:    operand,
			})
		}
	}
}

// ToggleTarget switches a target on or off for the rule at ruleIdx.
// Switching a target on removes it from every other rule of the same
// source first, keeping the invariant that each target belongs to at most
// one rule per source before a commit.
func ToggleTarget(rules []Rule, ruleIdx int, targetID string, on bool) []Rule {
	if ruleIdx < 0 || ruleIdx >= len(rules) {
		return rules
	}
	if !on {
		rules[ruleIdx].Targets = removeString(rules[ruleIdx].Targets, targetID)
		return rules
	}
	for i := range rules {
		rules[i].Targets = removeString(rules[i].Targets, targetID)
	}
	rules[ruleIdx].Targets = append(rules[ruleIdx].Targets, targetID)
	return rules
}

// RemoveQuestion deletes a question and cascades: any condition elsewhere
// that references the removed question as its source is stripped, so no
// target stays wired to a nonexistent source.
func RemoveQuestion(s *schema.Schema, id string) {
	kept := s.Questions[:0]
	for i := range s.Questions {
		if s.Questions[i].ID != id {
			kept = append(kept, s.Questions[i])
		}
	}
	s.Questions = kept
	stripConditions(s, id)
}

// stripConditions removes every condition referencing sourceID from every
// question. Empty show_if lists become nil so they drop from the JSON form.
func stripConditions(s *schema.Schema, sourceID string) {
	for i := range s.Questions {
		q := &s.Questions[i]
		if len(q.ShowIf) == 0 {
			continue
		}
		kept := q.ShowIf[:0]
		for _, c := range q.ShowIf {
			if c.Question != sourceID {
				kept = append(kept, c)
			}
		}
		if len(kept) == 0 {
			q.ShowIf = nil
		} else {
			q.ShowIf = kept
		}
	}
}

func splitTrimmed(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func removeString(list []string, s string) []string {
	kept := list[:0]
	for _, v := range list {
		if v != s {
			kept = append(kept, v)
		}
	}
	return kept
}

package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// QuestionType identifies how a question is presented and answered.
type QuestionType string

const (
	// QuestionLikert is a 1..N rating scale (default N=5).
	QuestionLikert QuestionType = "likert"
	// QuestionSingle is a single-choice question with a fixed option list.
	QuestionSingle QuestionType = "single"
	// QuestionText is a free-text question.
	QuestionText QuestionType = "text"
)

// ValidQuestionTypes defines the allowed question types.
var ValidQuestionTypes = map[QuestionType]bool{
	QuestionLikert: true,
	QuestionSingle: true,
	QuestionText:   true,
}

// Operator compares a recorded answer against a condition operand.
type Operator string

const (
	// OpEq matches when the stringified answer equals the operand.
	OpEq Operator = "eq"
	// OpNeq matches when the stringified answer differs from the operand.
	OpNeq Operator = "neq"
	// OpIn matches when the stringified answer is a member of the operand set.
	OpIn Operator = "in"
)

// ValidOperators defines the allowed condition operators.
var ValidOperators = map[Operator]bool{
	OpEq:  true,
	OpNeq: true,
	OpIn:  true,
}

// DefaultScale is the likert scale used when a question does not set one.
const DefaultScale = 5

// Condition guards a question's visibility on an earlier question's answer.
//
// Wire format: {"question": "q1", "op": "eq", "value": 5}. The op field may
// be absent in legacy templates and defaults to eq.
type Condition struct {
	Question string   `json:"question"`
	Op       Operator `json:"op,omitempty"`
	Value    Operand  `json:"value"`
}

// Operator returns the effective operator, defaulting to eq when unset.
func (c Condition) Operator() Operator {
	if c.Op == "" {
		return OpEq
	}
	return c.Op
}

// Operand is a condition's comparison operand as authored: a single scalar
// or a list of scalars. Scalars that arrive as JSON numbers are stringified
// on decode, because all runtime comparison happens on string forms.
type Operand struct {
	values []string
	list   bool
}

// ScalarOperand creates a single-value operand.
func ScalarOperand(v string) Operand {
	return Operand{values: []string{v}}
}

// ListOperand creates a list operand.
func ListOperand(vs ...string) Operand {
	return Operand{values: vs, list: true}
}

// IsList reports whether the operand was authored as a native list.
func (o Operand) IsList() bool { return o.list }

// Scalar returns the single operand value, or "" for an empty operand.
// For a list operand this is the first member (callers should check IsList).
func (o Operand) Scalar() string {
	if len(o.values) == 0 {
		return ""
	}
	return o.values[0]
}

// Members returns the operand interpreted as a set: the native list, or a
// comma-separated scalar split and trimmed with empty entries dropped.
func (o Operand) Members() []string {
	if o.list {
		return o.values
	}
	parts := strings.Split(o.Scalar(), ",")
	members := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			members = append(members, p)
		}
	}
	return members
}

// String renders the operand back to its editable form: list members are
// comma-joined, a scalar is returned as-is.
func (o Operand) String() string {
	if o.list {
		return strings.Join(o.values, ",")
	}
	return o.Scalar()
}

// Key returns a canonical form used to group equal operands. Distinguishes
// list from scalar so that ["5"] and "5" do not collapse.
func (o Operand) Key() string {
	if o.list {
		return "[" + strings.Join(o.values, "\x00") + "]"
	}
	return o.Scalar()
}

// UnmarshalJSON accepts a scalar (string, number, bool) or an array of
// scalars. Numbers keep their literal text form ("5", not "5.0").
func (o *Operand) UnmarshalJSON(data []byte) error {
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		vs := make([]string, 0, len(list))
		for _, raw := range list {
			s, err := scalarString(raw)
			if err != nil {
				return fmt.Errorf("operand list member: %w", err)
			}
			vs = append(vs, s)
		}
		*o = Operand{values: vs, list: true}
		return nil
	}
	s, err := scalarString(data)
	if err != nil {
		return fmt.Errorf("operand: %w", err)
	}
	*o = Operand{values: []string{s}}
	return nil
}

// MarshalJSON writes a list operand as a string array and a scalar operand
// as a plain string. Numeric scalars are not restored to JSON numbers; the
// runtime compares string forms, so the distinction is immaterial.
func (o Operand) MarshalJSON() ([]byte, error) {
	if o.list {
		return json.Marshal(o.values)
	}
	return json.Marshal(o.Scalar())
}

// Option is one selectable value of a single-choice question.
type Option struct {
	Value string        `json:"value"`
	Label LocalizedText `json:"label,omitempty"`
}

// Question is one step of a survey.
//
// Type-specific fields: likert uses Scale, Labels and LikertPreset; single
// uses Options; text has neither.
type Question struct {
	ID           string        `json:"id"`
	Type         QuestionType  `json:"type"`
	Required     bool          `json:"required"`
	Text         LocalizedText `json:"text,omitempty"`
	Scale        int           `json:"scale,omitempty"`
	Labels       []string      `json:"labels,omitempty"`
	LikertPreset LikertPreset  `json:"likert_preset,omitempty"`
	Options      []Option      `json:"options,omitempty"`
	ShowIf       []Condition   `json:"show_if,omitempty"`
}

// EffectiveScale returns the likert scale, defaulting to DefaultScale.
func (q *Question) EffectiveScale() int {
	if q.Scale <= 0 {
		return DefaultScale
	}
	return q.Scale
}

// HasBranching reports whether the question carries visibility conditions.
func (q *Question) HasBranching() bool {
	return len(q.ShowIf) > 0
}

// DependsOn reports whether any of the question's conditions reference the
// given source question.
func (q *Question) DependsOn(sourceID string) bool {
	for _, c := range q.ShowIf {
		if c.Question == sourceID {
			return true
		}
	}
	return false
}

// Settings are the schema-global switches for the terminal step.
type Settings struct {
	CollectArea     bool `json:"collect_area"`
	CollectShift    bool `json:"collect_shift"`
	CollectFollowup bool `json:"collect_followup_opt_in"`
}

// Schema is the ordered question list plus global settings. It is authored
// by the builder, snapshotted per campaign, and read-only during a kiosk
// session.
type Schema struct {
	Languages []string   `json:"languages,omitempty"`
	Settings  Settings   `json:"settings"`
	Questions []Question `json:"questions"`
}

// Question returns the question with the given id, or nil.
func (s *Schema) Question(id string) *Question {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}

// Index returns the position of the question with the given id, or -1.
func (s *Schema) Index(id string) int {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return i
		}
	}
	return -1
}

// scalarString renders a raw JSON scalar as its comparison string form.
// Numbers keep their literal text (json.Number), matching the coercion the
// condition evaluator applies to answers.
func scalarString(data []byte) (string, error) {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		if t {
			return "true", nil
		}
		return "false", nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unsupported scalar %T", v)
	}
}

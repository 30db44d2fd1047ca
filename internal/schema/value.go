package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Value is a sealed interface for recorded answer values.
// Only StringValue and IntValue implement it. A question that has never
// been answered has no Value at all; absence from the AnswerSet is the
// "missing" state, there is no null value.
type Value interface {
	answerValue() // Sealed - only these types implement it
}

// StringValue holds a single-choice option value or free text.
type StringValue string

func (StringValue) answerValue() {}

// IntValue holds a likert rating (1..scale).
type IntValue int64

func (IntValue) answerValue() {}

// Stringify renders a value in the form used for condition comparison.
func Stringify(v Value) string {
	switch t := v.(type) {
	case StringValue:
		return string(t)
	case IntValue:
		return strconv.FormatInt(int64(t), 10)
	default:
		return ""
	}
}

// IsBlank reports whether the value is absent or an empty string.
// Used for required-question validation: a recorded empty string does not
// count as an answer.
func IsBlank(v Value, ok bool) bool {
	if !ok {
		return true
	}
	s, isString := v.(StringValue)
	return isString && s == ""
}

// AnswerSet maps question ids to recorded values. It is mutated only by the
// session's navigation controller and serialized into the submit payload.
type AnswerSet map[string]Value

// Lookup returns the recorded value for a question, if any.
func (a AnswerSet) Lookup(id string) (Value, bool) {
	v, ok := a[id]
	return v, ok
}

// Clone returns a shallow copy. Values are immutable, so a shallow copy is
// an independent answer set.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// IDs returns the answered question ids in sorted order.
func (a AnswerSet) IDs() []string {
	ids := make([]string, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MarshalJSON writes the wire shape {question_id: value} with raw scalars:
// IntValue as a JSON number, StringValue as a JSON string.
func (a AnswerSet) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a))
	for id, v := range a {
		switch t := v.(type) {
		case IntValue:
			out[id] = int64(t)
		case StringValue:
			out[id] = string(t)
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts both raw scalars and the legacy wrapped
// {"value": ...} shape for each answer.
func (a *AnswerSet) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("answer set: %w", err)
	}
	out := make(AnswerSet, len(raw))
	for id, rv := range raw {
		v, err := decodeValue(rv)
		if err != nil {
			return fmt.Errorf("answer %q: %w", id, err)
		}
		out[id] = v
	}
	*a = out
	return nil
}

// decodeValue decodes one answer value, unwrapping {"value": ...} if present.
func decodeValue(data []byte) (Value, error) {
	var wrapped struct {
		Value *json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Value != nil {
		data = *wrapped.Value
	}

	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case string:
		return StringValue(t), nil
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return IntValue(n), nil
		}
		return StringValue(t.String()), nil
	case bool:
		if t {
			return StringValue("true"), nil
		}
		return StringValue("false"), nil
	case nil:
		// A null answer counts as blank, not as missing.
		return StringValue(""), nil
	default:
		return nil, fmt.Errorf("unsupported answer value %T", v)
	}
}

package builder

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bluewave/kiosko/internal/schema"
)

// IDGenerator produces unique question ids.
// Implemented by UUIDGenerator (production) and fixed generators in tests.
type IDGenerator interface {
	NewID(prefix string) string
}

// UUIDGenerator derives short stable ids from random UUIDs, e.g. "q_3f9a1c".
type UUIDGenerator struct{}

// NewID returns prefix + "_" + six hex characters of a fresh UUID.
func (UUIDGenerator) NewID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + raw[:6]
}

// Builder edits a schema in place. It owns no storage; callers decide when
// to persist the schema (EncodeSchema) or publish it as a snapshot.
type Builder struct {
	Schema *schema.Schema
	ids    IDGenerator
}

// New creates a builder over an existing schema. A nil schema starts an
// empty one with the default settings (collect everything).
func New(s *schema.Schema) *Builder {
	if s == nil {
		s = &schema.Schema{
			Languages: []string{"es", "en"},
			Settings: schema.Settings{
				CollectArea:     true,
				CollectShift:    true,
				CollectFollowup: true,
			},
		}
	}
	return &Builder{Schema: s, ids: UUIDGenerator{}}
}

// WithIDGenerator overrides id generation, used by tests for stable output.
func (b *Builder) WithIDGenerator(g IDGenerator) *Builder {
	b.ids = g
	return b
}

// AddQuestion appends a new question of the given type with the authoring
// defaults and returns it.
func (b *Builder) AddQuestion(t schema.QuestionType) (*schema.Question, error) {
	q := schema.Question{
		ID:   b.ids.NewID("q"),
		Type: t,
	}
	switch t {
	case schema.QuestionLikert:
		q.Required = true
		q.Scale = schema.DefaultScale
		q.Text = schema.LocalizedText{"es": "Nueva pregunta (Likert)", "en": ""}
	case schema.QuestionSingle:
		q.Required = true
		q.Text = schema.LocalizedText{"es": "Nueva pregunta (Opción única)", "en": ""}
		q.Options = []schema.Option{
			{Value: "op1", Label: schema.LocalizedText{"es": "Opción 1", "en": ""}},
			{Value: "op2", Label: schema.LocalizedText{"es": "Opción 2", "en": ""}},
		}
	case schema.QuestionText:
		q.Text = schema.LocalizedText{"es": "Comentario (opcional)", "en": ""}
	default:
		return nil, fmt.Errorf("add question: unknown type %q", t)
	}
	b.Schema.Questions = append(b.Schema.Questions, q)
	return &b.Schema.Questions[len(b.Schema.Questions)-1], nil
}

// DuplicateQuestion inserts a copy right after the original. The copy gets
// a fresh id and re-keyed option values so the two questions never collide
// in answers or reports.
func (b *Builder) DuplicateQuestion(id string) (*schema.Question, error) {
	idx := b.Schema.Index(id)
	if idx < 0 {
		return nil, fmt.Errorf("duplicate question: unknown id %q", id)
	}

	copyQ := cloneQuestion(&b.Schema.Questions[idx])
	copyQ.ID = b.ids.NewID("q")
	for i := range copyQ.Options {
		base := copyQ.Options[i].Value
		if base == "" {
			base = "op"
		}
		copyQ.Options[i].Value = fmt.Sprintf("%s_%d", base, i+1)
	}

	b.Schema.Questions = append(b.Schema.Questions, schema.Question{})
	copy(b.Schema.Questions[idx+2:], b.Schema.Questions[idx+1:])
	b.Schema.Questions[idx+1] = copyQ
	return &b.Schema.Questions[idx+1], nil
}

// MoveQuestion shifts a question one position up (delta -1) or down
// (delta +1). Reports whether the order changed. Conditions are untouched;
// a move that breaks the earlier-question-only invariant is caught by
// schema.Validate before publishing.
func (b *Builder) MoveQuestion(id string, delta int) bool {
	if delta != -1 && delta != 1 {
		return false
	}
	idx := b.Schema.Index(id)
	if idx < 0 {
		return false
	}
	to := idx + delta
	if to < 0 || to >= len(b.Schema.Questions) {
		return false
	}
	qs := b.Schema.Questions
	qs[idx], qs[to] = qs[to], qs[idx]
	return true
}

// RemoveQuestion deletes a question with the cascading condition strip.
func (b *Builder) RemoveQuestion(id string) {
	RemoveQuestion(b.Schema, id)
}

// ChangeType converts a question to another type, adjusting the
// type-specific fields: likert gains the default scale and loses options,
// single gains default options and loses the scale, text loses both.
func (b *Builder) ChangeType(id string, t schema.QuestionType) error {
	q := b.Schema.Question(id)
	if q == nil {
		return fmt.Errorf("change type: unknown id %q", id)
	}
	if q.Type == t {
		return nil
	}
	switch t {
	case schema.QuestionLikert:
		q.Options = nil
		q.Scale = schema.DefaultScale
	case schema.QuestionSingle:
		q.Scale = 0
		q.Labels = nil
		q.LikertPreset = ""
		if len(q.Options) < 2 {
			q.Options = []schema.Option{
				{Value: "op1", Label: schema.LocalizedText{"es": "Opción 1", "en": ""}},
				{Value: "op2", Label: schema.LocalizedText{"es": "Opción 2", "en": ""}},
			}
		}
	case schema.QuestionText:
		q.Scale = 0
		q.Labels = nil
		q.LikertPreset = ""
		q.Options = nil
	default:
		return fmt.Errorf("change type: unknown type %q", t)
	}
	q.Type = t
	return nil
}

// Rules returns the editable rule view for a source question.
func (b *Builder) Rules(sourceID string) []Rule {
	return DeriveRules(b.Schema, sourceID)
}

// CommitRules writes an edited rule view back to the schema.
func (b *Builder) CommitRules(sourceID string, rules []Rule) {
	CommitRules(b.Schema, sourceID, rules)
}

// Validate runs the authoring checks on the current schema.
func (b *Builder) Validate() []schema.ValidationError {
	return schema.Validate(b.Schema)
}

// cloneQuestion deep-copies the slices a question owns.
func cloneQuestion(q *schema.Question) schema.Question {
	out := *q
	if q.Text != nil {
		out.Text = make(schema.LocalizedText, len(q.Text))
		for k, v := range q.Text {
			out.Text[k] = v
		}
	}
	out.Labels = append([]string(nil), q.Labels...)
	if q.Options != nil {
		out.Options = make([]schema.Option, len(q.Options))
		for i, opt := range q.Options {
			out.Options[i] = opt
			if opt.Label != nil {
				label := make(schema.LocalizedText, len(opt.Label))
				for k, v := range opt.Label {
					label[k] = v
				}
				out.Options[i].Label = label
			}
		}
	}
	out.ShowIf = append([]schema.Condition(nil), q.ShowIf...)
	return out
}

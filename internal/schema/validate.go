package schema

import (
	"fmt"
	"strings"
)

// Validation error codes (E100-E199)
const (
	// Schema-level errors (E100-E109)
	ErrNoQuestions   = "E100" // schema has no questions
	ErrDuplicateID   = "E101" // duplicate question id
	ErrEmptyID       = "E102" // question id is empty
	ErrUnknownType   = "E103" // unknown question type
	ErrMissingText   = "E104" // question has no Spanish text
	ErrBadScale      = "E105" // likert scale out of range
	ErrTooFewOptions = "E106" // single-choice needs at least two options
	ErrOptionNoValue = "E107" // option missing value key
	ErrOptionNoLabel = "E108" // option missing Spanish label

	// Condition errors (E110-E119)
	ErrUnknownOperator  = "E110" // operator not eq/neq/in
	ErrUnknownSource    = "E111" // condition references a nonexistent question
	ErrForwardReference = "E112" // condition references the question itself or a later one
	ErrEmptyOperand     = "E113" // condition has no operand value
)

// ValidationError describes one authoring problem found in a schema.
type ValidationError struct {
	Code       string `json:"code"`
	QuestionID string `json:"question_id,omitempty"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.QuestionID != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.QuestionID, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Validate checks a schema against the authoring rules. Returns all problems
// found (does not fail-fast). A nil result means the schema is publishable.
//
// Rules beyond basic shape: a single-choice question needs at least two
// options, every option needs a value key and a Spanish label, and a
// condition may only reference a question earlier in the order, since
// order defines the legal direction for branching.
func Validate(s *Schema) []ValidationError {
	var errs []ValidationError

	if len(s.Questions) == 0 {
		errs = append(errs, ValidationError{
			Code:    ErrNoQuestions,
			Message: "schema has no questions",
		})
	}

	seen := make(map[string]bool, len(s.Questions))
	for i := range s.Questions {
		q := &s.Questions[i]

		if strings.TrimSpace(q.ID) == "" {
			errs = append(errs, ValidationError{
				Code:    ErrEmptyID,
				Message: fmt.Sprintf("question at position %d has an empty id", i),
			})
		} else if seen[q.ID] {
			errs = append(errs, ValidationError{
				Code:       ErrDuplicateID,
				QuestionID: q.ID,
				Message:    "duplicate question id",
			})
		}
		seen[q.ID] = true

		if !ValidQuestionTypes[q.Type] {
			errs = append(errs, ValidationError{
				Code:       ErrUnknownType,
				QuestionID: q.ID,
				Message:    fmt.Sprintf("unknown question type %q", q.Type),
			})
		}

		if strings.TrimSpace(q.Text["es"]) == "" {
			errs = append(errs, ValidationError{
				Code:       ErrMissingText,
				QuestionID: q.ID,
				Message:    "question has no Spanish text",
			})
		}

		switch q.Type {
		case QuestionLikert:
			if q.Scale != 0 && (q.Scale < 2 || q.Scale > 10) {
				errs = append(errs, ValidationError{
					Code:       ErrBadScale,
					QuestionID: q.ID,
					Message:    fmt.Sprintf("likert scale %d out of range 2..10", q.Scale),
				})
			}
		case QuestionSingle:
			if len(q.Options) < 2 {
				errs = append(errs, ValidationError{
					Code:       ErrTooFewOptions,
					QuestionID: q.ID,
					Message:    "single-choice question needs at least two options",
				})
			}
			for j, opt := range q.Options {
				if strings.TrimSpace(opt.Value) == "" {
					errs = append(errs, ValidationError{
						Code:       ErrOptionNoValue,
						QuestionID: q.ID,
						Message:    fmt.Sprintf("option %d has no value key", j),
					})
				}
				if strings.TrimSpace(opt.Label["es"]) == "" {
					errs = append(errs, ValidationError{
						Code:       ErrOptionNoLabel,
						QuestionID: q.ID,
						Message:    fmt.Sprintf("option %d has no Spanish label", j),
					})
				}
			}
		}

		errs = append(errs, validateConditions(s, i)...)
	}

	return errs
}

// validateConditions checks the show_if list of the question at position idx.
func validateConditions(s *Schema, idx int) []ValidationError {
	var errs []ValidationError
	q := &s.Questions[idx]

	for _, c := range q.ShowIf {
		if !ValidOperators[c.Operator()] {
			errs = append(errs, ValidationError{
				Code:       ErrUnknownOperator,
				QuestionID: q.ID,
				Message:    fmt.Sprintf("unknown operator %q", c.Op),
			})
		}

		srcIdx := s.Index(c.Question)
		switch {
		case srcIdx < 0:
			errs = append(errs, ValidationError{
				Code:       ErrUnknownSource,
				QuestionID: q.ID,
				Message:    fmt.Sprintf("condition references unknown question %q", c.Question),
			})
		case srcIdx >= idx:
			errs = append(errs, ValidationError{
				Code:       ErrForwardReference,
				QuestionID: q.ID,
				Message:    fmt.Sprintf("condition references %q which does not precede it", c.Question),
			})
		}

		if c.Value.String() == "" {
			errs = append(errs, ValidationError{
				Code:       ErrEmptyOperand,
				QuestionID: q.ID,
				Message:    "condition has an empty operand",
			})
		}
	}

	return errs
}

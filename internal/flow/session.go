package flow

import (
	"slices"
	"strings"

	"github.com/bluewave/kiosko/internal/api"
	"github.com/bluewave/kiosko/internal/schema"
)

// DefaultLanguage is used when a session is started without one.
const DefaultLanguage = "es"

// Config carries the per-campaign settings a session runs under.
// It is immutable for the lifetime of the session.
type Config struct {
	Token        string
	Shifts       []string
	RequireArea  bool
	RequireShift bool
	Schema       *schema.Schema
	Lang         string
}

// Session is the navigation controller for one kiosk visit.
//
// All state is explicit: the step pointer, the answer set, and the
// terminal-step metadata. There are no module-level variables; a rendering
// layer holds a Session and dispatches intents to it.
//
// Session is not safe for concurrent use. The kiosk runtime is a single
// logical actor; one goroutine owns the session.
type Session struct {
	cfg     Config
	lang    string
	index   int
	answers schema.AnswerSet

	// Terminal-step metadata.
	areaID        int64 // 0 = none chosen
	shift         string
	wantsFollowup bool
	contactName   string
	employeeNo    string
}

// NewSession starts a session at the first step with no answers.
func NewSession(cfg Config) *Session {
	lang := cfg.Lang
	if lang == "" {
		lang = DefaultLanguage
	}
	return &Session{
		cfg:     cfg,
		lang:    lang,
		answers: make(schema.AnswerSet),
	}
}

// Lang returns the session's display language.
func (s *Session) Lang() string { return s.lang }

// SetLang switches the display language. Navigation state is unaffected.
func (s *Session) SetLang(lang string) {
	if lang != "" {
		s.lang = lang
	}
}

// Index returns the current step pointer.
func (s *Session) Index() int { return s.index }

// Answers returns the recorded answers. The returned set is live; callers
// must treat it as read-only.
func (s *Session) Answers() schema.AnswerSet { return s.answers }

// VisibleQuestions returns the visible step sequence under the current
// answers. Recomputed on every call; never cached.
func (s *Session) VisibleQuestions() []*schema.Question {
	return VisibleQuestions(s.cfg.Schema, s.answers)
}

// Progress returns the 1-based step number and the total step count.
// The total is the visible question count plus one terminal step.
func (s *Session) Progress() (step, total int) {
	return s.index + 1, len(s.VisibleQuestions()) + 1
}

// AtFinal reports whether the session is on the terminal step.
func (s *Session) AtFinal() bool {
	return s.index >= len(s.VisibleQuestions())
}

// Current returns the question at the current step, or nil on the terminal
// step.
func (s *Session) Current() *schema.Question {
	visible := s.VisibleQuestions()
	if s.index >= len(visible) {
		return nil
	}
	return visible[s.index]
}

// Record stores an answer without navigating. Used by the choice/text
// intents below and by scripted scenarios.
func (s *Session) Record(questionID string, v schema.Value) {
	s.answers[questionID] = v
}

// Select records an answer for the current question and advances
// immediately. This is the intent for likert and single-choice questions,
// which have no separate confirmation action.
func (s *Session) Select(v schema.Value) error {
	if q := s.Current(); q != nil {
		s.answers[q.ID] = v
	}
	return s.Advance()
}

// SetText records free text for the current question without advancing;
// text questions require an explicit continue intent (Advance).
func (s *Session) SetText(text string) {
	if q := s.Current(); q != nil {
		s.answers[q.ID] = schema.StringValue(text)
	}
}

// Advance validates the current step and moves forward one step. The step
// pointer is then clamped against the freshly recomputed visible sequence:
// the answer just recorded may have hidden or revealed later questions,
// invalidating an index that was in range before.
func (s *Session) Advance() error {
	if err := s.validateCurrent(); err != nil {
		return err
	}
	s.index++
	if n := len(s.VisibleQuestions()); s.index > n {
		s.index = n
	}
	return nil
}

// Back moves one step back without validation. Reports whether the pointer
// moved; it does not move below the first step.
func (s *Session) Back() bool {
	if s.index == 0 {
		return false
	}
	s.index--
	return true
}

// SetArea records the chosen area (0 clears the choice).
func (s *Session) SetArea(id int64) { s.areaID = id }

// SetShift records the chosen shift ("" clears the choice).
func (s *Session) SetShift(shift string) { s.shift = shift }

// SetFollowup toggles the follow-up opt-in.
func (s *Session) SetFollowup(wants bool) { s.wantsFollowup = wants }

// SetContact records the follow-up contact fields.
func (s *Session) SetContact(name, employeeNo string) {
	s.contactName = name
	s.employeeNo = employeeNo
}

// validateCurrent checks the question at the current step. The terminal
// step is validated separately by ValidateFinal.
func (s *Session) validateCurrent() error {
	q := s.Current()
	if q == nil || !q.Required {
		return nil
	}

	v, ok := s.answers.Lookup(q.ID)
	switch q.Type {
	case schema.QuestionText:
		if !ok || strings.TrimSpace(schema.Stringify(v)) == "" {
			return newValidationError(CodeTextRequired, q.ID, "answer text is required")
		}
	default:
		if schema.IsBlank(v, ok) {
			return newValidationError(CodeAnswerRequired, q.ID, "an option must be selected")
		}
	}
	return nil
}

// ValidateFinal checks the terminal-step metadata: mandatory area, shift
// membership in the known shift set (also for an optional shift that was
// chosen), and complete contact fields when follow-up is opted in.
// Validation is idempotent; reaching the terminal step again after Back
// applies exactly the same rules.
func (s *Session) ValidateFinal() error {
	if s.cfg.RequireArea && s.areaID == 0 {
		return newValidationError(CodeAreaRequired, "", "an area must be selected")
	}

	if s.shift != "" && !slices.Contains(s.cfg.Shifts, s.shift) {
		return newValidationError(CodeShiftUnknown, "", "shift is not in the known shift set")
	}
	if s.cfg.RequireShift && s.shift == "" {
		return newValidationError(CodeShiftRequired, "", "a shift must be selected")
	}

	if s.wantsFollowup {
		if strings.TrimSpace(s.contactName) == "" || strings.TrimSpace(s.employeeNo) == "" {
			return newValidationError(CodeContactRequired, "", "contact name and employee number are required")
		}
	}
	return nil
}

// NormalizedAnswers returns the answers restricted to the questions in the
// visible set computed now. An answer recorded for a question that a later
// branch decision hid again is dropped, never submitted.
func (s *Session) NormalizedAnswers() schema.AnswerSet {
	visible := s.VisibleQuestions()
	allowed := make(map[string]bool, len(visible))
	for _, q := range visible {
		allowed[q.ID] = true
	}
	out := make(schema.AnswerSet, len(s.answers))
	for id, v := range s.answers {
		if allowed[id] {
			out[id] = v
		}
	}
	return out
}

// Payload builds the submit body from the current state. Callers run
// ValidateFinal first; Payload itself does not validate.
func (s *Session) Payload() api.SubmitPayload {
	p := api.SubmitPayload{
		Lang:          s.lang,
		Shift:         s.shift,
		WantsFollowup: s.wantsFollowup,
		Answers:       s.NormalizedAnswers(),
		Source:        "kiosko",
	}
	if s.cfg.RequireArea {
		areaID := s.areaID
		p.AreaID = &areaID
	}
	if s.wantsFollowup {
		name, employeeNo := s.contactName, s.employeeNo
		p.ContactName = &name
		p.EmployeeNo = &employeeNo
	}
	return p
}

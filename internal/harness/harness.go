package harness

import (
	"errors"
	"fmt"

	"github.com/bluewave/kiosko/internal/api"
	"github.com/bluewave/kiosko/internal/flow"
	"github.com/bluewave/kiosko/internal/schema"
)

// TraceEvent records one transition (or rejection) during a scripted visit.
type TraceEvent struct {
	Seq      int      `json:"seq"`
	Type     string   `json:"type"` // answer, text, skip, back, lang, rejected, final
	Question string   `json:"question,omitempty"`
	Value    string   `json:"value,omitempty"`
	Code     string   `json:"code,omitempty"` // validation code for rejected events
	Visible  []string `json:"visible"`
	Step     int      `json:"step"`
	Total    int      `json:"total"`
}

// Result is the outcome of replaying one scenario.
type Result struct {
	Scenario string
	Pass     bool
	Errors   []string
	Trace    []TraceEvent

	// Payload is the submission the visit would send. Nil when the
	// scenario expects final validation to fail.
	Payload *api.SubmitPayload
}

// Run replays a scenario against a fresh session and returns the trace.
// Scenario expectation failures land in Result.Errors; a non-nil error
// means the scenario itself is unusable (bad schema, bad script).
func Run(sc *Scenario) (*Result, error) {
	s, err := sc.LoadSchema()
	if err != nil {
		return nil, err
	}
	if verrs := schema.Validate(s); len(verrs) > 0 {
		return nil, fmt.Errorf("scenario schema is invalid: %v", verrs[0])
	}

	sess := flow.NewSession(flow.Config{
		Token:        sc.Config.Token,
		Shifts:       sc.Config.Shifts,
		RequireArea:  sc.Config.RequireArea,
		RequireShift: sc.Config.RequireShift,
		Schema:       s,
		Lang:         sc.Config.Lang,
	})

	r := &Result{Scenario: sc.Name, Pass: true}
	for i, st := range sc.Steps {
		if err := r.runStep(sess, i+1, st); err != nil {
			return nil, err
		}
	}

	if sc.Final != nil {
		r.runFinal(sess, sc.Final)
	}

	return r, nil
}

func (r *Result) runStep(sess *flow.Session, n int, st Step) error {
	fail := func(format string, args ...any) {
		r.Pass = false
		r.Errors = append(r.Errors, fmt.Sprintf("step %d: ", n)+fmt.Sprintf(format, args...))
	}

	switch {
	case st.Answer != nil:
		v, err := st.answerValue()
		if err != nil {
			return fmt.Errorf("step %d: %w", n, err)
		}
		r.applyTransition(sess, st, "answer", schema.Stringify(v), fail, func() error {
			return sess.Select(v)
		})

	case st.Text != nil:
		r.applyTransition(sess, st, "text", *st.Text, fail, func() error {
			sess.SetText(*st.Text)
			return sess.Advance()
		})

	case st.Skip:
		r.applyTransition(sess, st, "skip", "", fail, func() error {
			return sess.Advance()
		})

	case st.Back:
		if !sess.Back() {
			fail("back had no effect at the first question")
		}
		r.record(sess, "back", "", "")

	case st.Lang != "":
		sess.SetLang(st.Lang)
		r.record(sess, "lang", st.Lang, "")
	}

	if st.ExpectVisible != nil {
		got := visibleIDs(sess)
		if !equalStrings(got, st.ExpectVisible) {
			fail("visible questions %v, want %v", got, st.ExpectVisible)
		}
	}
	if st.ExpectCurrent != "" {
		got := ""
		if q := sess.Current(); q != nil {
			got = q.ID
		}
		if got != st.ExpectCurrent {
			fail("current question %q, want %q", got, st.ExpectCurrent)
		}
	}
	if st.ExpectStep != "" {
		step, total := sess.Progress()
		got := fmt.Sprintf("%d/%d", step, total)
		if got != st.ExpectStep {
			fail("progress %s, want %s", got, st.ExpectStep)
		}
	}
	return nil
}

// applyTransition runs one mutating intent, reconciling the outcome with
// the step's expect_error clause, and records the trace event.
func (r *Result) applyTransition(sess *flow.Session, st Step, typ, value string, fail func(string, ...any), do func() error) {
	err := do()
	switch {
	case err == nil && st.ExpectError != "":
		fail("%s succeeded, want validation error %s", typ, st.ExpectError)
		r.record(sess, typ, value, "")
	case err == nil:
		r.record(sess, typ, value, "")
	default:
		var ve *flow.ValidationError
		if !errors.As(err, &ve) {
			fail("%s failed unexpectedly: %v", typ, err)
			return
		}
		if st.ExpectError == "" {
			fail("%s rejected with %s, want success", typ, ve.Code)
		} else if string(ve.Code) != st.ExpectError {
			fail("%s rejected with %s, want %s", typ, ve.Code, st.ExpectError)
		}
		r.record(sess, "rejected", value, string(ve.Code))
	}
}

func (r *Result) runFinal(sess *flow.Session, fin *FinalStep) {
	fail := func(format string, args ...any) {
		r.Pass = false
		r.Errors = append(r.Errors, "final: "+fmt.Sprintf(format, args...))
	}

	if !sess.AtFinal() {
		fail("script ended on question %q, not the final step", currentID(sess))
		return
	}

	if fin.AreaID != 0 {
		sess.SetArea(fin.AreaID)
	}
	if fin.Shift != "" {
		sess.SetShift(fin.Shift)
	}
	if fin.Followup != nil {
		sess.SetFollowup(true)
		sess.SetContact(fin.Followup.Name, fin.Followup.EmployeeNo)
	}

	err := sess.ValidateFinal()
	switch {
	case err == nil && fin.ExpectError != "":
		fail("final validation passed, want %s", fin.ExpectError)
	case err == nil:
		payload := sess.Payload()
		r.Payload = &payload
		r.record(sess, "final", "", "")
	default:
		var ve *flow.ValidationError
		if !errors.As(err, &ve) {
			fail("final validation failed unexpectedly: %v", err)
			return
		}
		if fin.ExpectError == "" {
			fail("final validation rejected with %s, want success", ve.Code)
		} else if string(ve.Code) != fin.ExpectError {
			fail("final validation rejected with %s, want %s", ve.Code, fin.ExpectError)
		}
		r.record(sess, "rejected", "", string(ve.Code))
	}
}

func (r *Result) record(sess *flow.Session, typ, value, code string) {
	step, total := sess.Progress()
	r.Trace = append(r.Trace, TraceEvent{
		Seq:      len(r.Trace) + 1,
		Type:     typ,
		Question: currentID(sess),
		Value:    value,
		Code:     code,
		Visible:  visibleIDs(sess),
		Step:     step,
		Total:    total,
	})
}

func currentID(sess *flow.Session) string {
	if q := sess.Current(); q != nil {
		return q.ID
	}
	return ""
}

func visibleIDs(sess *flow.Session) []string {
	visible := sess.VisibleQuestions()
	ids := make([]string, len(visible))
	for i, q := range visible {
		ids[i] = q.ID
	}
	return ids
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

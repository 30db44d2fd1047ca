package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluewave/kiosko/internal/schema"
)

func sessionSchema() *schema.Schema {
	return &schema.Schema{
		Languages: []string{"es", "en"},
		Questions: []schema.Question{
			{
				ID:       "q_rating",
				Type:     schema.QuestionLikert,
				Required: true,
				Text:     schema.LocalizedText{"es": "Califica"},
			},
			{
				ID:       "q_motivo",
				Type:     schema.QuestionText,
				Required: true,
				Text:     schema.LocalizedText{"es": "Motivo"},
				ShowIf: []schema.Condition{
					{Question: "q_rating", Op: schema.OpIn, Value: schema.ListOperand("1", "2")},
				},
			},
			{
				ID:   "q_comentario",
				Type: schema.QuestionText,
				Text: schema.LocalizedText{"es": "Comentario"},
			},
		},
	}
}

func newTestSession(cfg Config) *Session {
	if cfg.Schema == nil {
		cfg.Schema = sessionSchema()
	}
	if cfg.Token == "" {
		cfg.Token = "demo"
	}
	return NewSession(cfg)
}

func TestSessionStartsAtFirstQuestion(t *testing.T) {
	s := newTestSession(Config{})

	require.NotNil(t, s.Current())
	assert.Equal(t, "q_rating", s.Current().ID)
	assert.Equal(t, DefaultLanguage, s.Lang())

	step, total := s.Progress()
	assert.Equal(t, 1, step)
	assert.Equal(t, 3, total) // two visible questions plus the terminal step
}

func TestSessionRequiredChoiceBlocksAdvance(t *testing.T) {
	s := newTestSession(Config{})

	err := s.Advance()
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, CodeAnswerRequired, ve.Code)
	assert.Equal(t, "q_rating", ve.QuestionID)
	assert.Equal(t, 0, s.Index())
}

func TestSessionSelectAdvances(t *testing.T) {
	s := newTestSession(Config{})

	require.NoError(t, s.Select(schema.IntValue(5)))
	assert.Equal(t, "q_comentario", s.Current().ID)
}

func TestSessionBranchRevealAndClamp(t *testing.T) {
	s := newTestSession(Config{})

	// A low rating reveals q_motivo.
	require.NoError(t, s.Select(schema.IntValue(2)))
	require.NotNil(t, s.Current())
	assert.Equal(t, "q_motivo", s.Current().ID)

	// Going back and correcting the rating hides it again; the step
	// pointer lands on the next visible question, not out of range.
	require.True(t, s.Back())
	require.NoError(t, s.Select(schema.IntValue(5)))
	require.NotNil(t, s.Current())
	assert.Equal(t, "q_comentario", s.Current().ID)
}

func TestSessionRequiredTextBlocksAdvance(t *testing.T) {
	s := newTestSession(Config{})
	require.NoError(t, s.Select(schema.IntValue(1)))
	require.Equal(t, "q_motivo", s.Current().ID)

	s.SetText("   ")
	err := s.Advance()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, CodeTextRequired, ve.Code)

	s.SetText("faltan insumos")
	require.NoError(t, s.Advance())
	assert.Equal(t, "q_comentario", s.Current().ID)
}

func TestSessionOptionalTextSkips(t *testing.T) {
	s := newTestSession(Config{})
	require.NoError(t, s.Select(schema.IntValue(5)))
	require.Equal(t, "q_comentario", s.Current().ID)

	require.NoError(t, s.Advance())
	assert.True(t, s.AtFinal())
	assert.Nil(t, s.Current())
}

func TestSessionBackStopsAtFirst(t *testing.T) {
	s := newTestSession(Config{})
	assert.False(t, s.Back())

	require.NoError(t, s.Select(schema.IntValue(5)))
	assert.True(t, s.Back())
	assert.Equal(t, "q_rating", s.Current().ID)
}

func TestSessionNormalizedAnswersDropHidden(t *testing.T) {
	s := newTestSession(Config{})

	require.NoError(t, s.Select(schema.IntValue(2)))
	s.SetText("algo salió mal")
	require.NoError(t, s.Advance())

	// Correct the rating; q_motivo is hidden but its answer is still
	// recorded under the hood.
	s.Record("q_rating", schema.IntValue(5))

	normalized := s.NormalizedAnswers()
	_, ok := normalized.Lookup("q_motivo")
	assert.False(t, ok)
	assert.Equal(t, schema.IntValue(5), normalized["q_rating"])
}

func finishSession(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.Select(schema.IntValue(5)))
	require.NoError(t, s.Advance())
	require.True(t, s.AtFinal())
}

func TestSessionValidateFinalArea(t *testing.T) {
	s := newTestSession(Config{RequireArea: true})
	finishSession(t, s)

	var ve *ValidationError
	require.ErrorAs(t, s.ValidateFinal(), &ve)
	assert.Equal(t, CodeAreaRequired, ve.Code)

	s.SetArea(3)
	assert.NoError(t, s.ValidateFinal())
}

func TestSessionValidateFinalShift(t *testing.T) {
	s := newTestSession(Config{RequireShift: true, Shifts: []string{"matutino", "vespertino"}})
	finishSession(t, s)

	var ve *ValidationError
	require.ErrorAs(t, s.ValidateFinal(), &ve)
	assert.Equal(t, CodeShiftRequired, ve.Code)

	s.SetShift("nocturno")
	require.ErrorAs(t, s.ValidateFinal(), &ve)
	assert.Equal(t, CodeShiftUnknown, ve.Code)

	s.SetShift("matutino")
	assert.NoError(t, s.ValidateFinal())
}

func TestSessionUnknownShiftRejectedEvenWhenOptional(t *testing.T) {
	s := newTestSession(Config{Shifts: []string{"matutino"}})
	finishSession(t, s)

	s.SetShift("nocturno")
	var ve *ValidationError
	require.ErrorAs(t, s.ValidateFinal(), &ve)
	assert.Equal(t, CodeShiftUnknown, ve.Code)

	s.SetShift("")
	assert.NoError(t, s.ValidateFinal())
}

func TestSessionValidateFinalContact(t *testing.T) {
	s := newTestSession(Config{})
	finishSession(t, s)

	s.SetFollowup(true)
	var ve *ValidationError
	require.ErrorAs(t, s.ValidateFinal(), &ve)
	assert.Equal(t, CodeContactRequired, ve.Code)

	s.SetContact("Ana", " ")
	require.ErrorAs(t, s.ValidateFinal(), &ve)
	assert.Equal(t, CodeContactRequired, ve.Code)

	s.SetContact("Ana", "E-1042")
	assert.NoError(t, s.ValidateFinal())
}

func TestSessionPayload(t *testing.T) {
	s := newTestSession(Config{
		RequireArea: true,
		Shifts:      []string{"matutino"},
	})
	finishSession(t, s)

	s.SetArea(7)
	s.SetShift("matutino")
	s.SetFollowup(true)
	s.SetContact("Ana", "E-1042")
	require.NoError(t, s.ValidateFinal())

	p := s.Payload()
	assert.Equal(t, "es", p.Lang)
	require.NotNil(t, p.AreaID)
	assert.Equal(t, int64(7), *p.AreaID)
	assert.Equal(t, "matutino", p.Shift)
	assert.True(t, p.WantsFollowup)
	require.NotNil(t, p.ContactName)
	assert.Equal(t, "Ana", *p.ContactName)
	require.NotNil(t, p.EmployeeNo)
	assert.Equal(t, "E-1042", *p.EmployeeNo)
	assert.Equal(t, "kiosko", p.Source)
	assert.Equal(t, schema.IntValue(5), p.Answers["q_rating"])
}

func TestSessionPayloadOmitsOptionalPointers(t *testing.T) {
	s := newTestSession(Config{})
	finishSession(t, s)
	require.NoError(t, s.ValidateFinal())

	p := s.Payload()
	assert.Nil(t, p.AreaID)
	assert.Nil(t, p.ContactName)
	assert.Nil(t, p.EmployeeNo)
	assert.False(t, p.WantsFollowup)
}

func TestSessionSetLang(t *testing.T) {
	s := newTestSession(Config{Lang: "en"})
	assert.Equal(t, "en", s.Lang())

	s.SetLang("es")
	assert.Equal(t, "es", s.Lang())

	s.SetLang("")
	assert.Equal(t, "es", s.Lang())
}

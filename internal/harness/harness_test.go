package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioConformance(t *testing.T) {
	scenarios, err := LoadScenarioDir("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, sc := range scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, sc))
		})
	}
}

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalSchema = `
schema:
  questions:
    - id: q1
      type: likert
      required: true
      text: { es: "¿Qué tal?" }
`

func TestRunReportsExpectationMismatch(t *testing.T) {
	path := writeScenario(t, `
name: mismatch
config: { token: demo }
`+minimalSchema+`
steps:
  - expect_current: q_wrong
  - answer: 3
`)
	sc, err := LoadScenario(path)
	require.NoError(t, err)

	result, err := Run(sc)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "q_wrong")
}

func TestRunRejectionMatchesExpectError(t *testing.T) {
	path := writeScenario(t, `
name: rejection
config: { token: demo }
`+minimalSchema+`
steps:
  - skip: true
    expect_error: ANSWER_REQUIRED
  - answer: 3
final: {}
`)
	sc, err := LoadScenario(path)
	require.NoError(t, err)

	result, err := Run(sc)
	require.NoError(t, err)
	assert.True(t, result.Pass, "%v", result.Errors)
	require.NotNil(t, result.Payload)

	require.Len(t, result.Trace, 3)
	assert.Equal(t, "rejected", result.Trace[0].Type)
	assert.Equal(t, "ANSWER_REQUIRED", result.Trace[0].Code)
}

func TestRunUnexpectedRejectionFails(t *testing.T) {
	path := writeScenario(t, `
name: unexpected
config: { token: demo }
`+minimalSchema+`
steps:
  - skip: true
`)
	sc, err := LoadScenario(path)
	require.NoError(t, err)

	result, err := Run(sc)
	require.NoError(t, err)
	assert.False(t, result.Pass)
}

func TestRunFailsWhenScriptEndsEarly(t *testing.T) {
	path := writeScenario(t, `
name: early_end
config: { token: demo }
`+minimalSchema+`
steps:
  - expect_current: q1
final: {}
`)
	sc, err := LoadScenario(path)
	require.NoError(t, err)

	result, err := Run(sc)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Nil(t, result.Payload)
}

func TestRunRejectsInvalidSchema(t *testing.T) {
	path := writeScenario(t, `
name: bad_schema
config: { token: demo }
schema:
  questions:
    - id: q1
      type: likert
      text: { en: "only english" }
steps:
  - answer: 3
`)
	sc, err := LoadScenario(path)
	require.NoError(t, err)

	_, err = Run(sc)
	assert.Error(t, err)
}

func TestRunFinalExpectError(t *testing.T) {
	path := writeScenario(t, `
name: final_shift
config:
  token: demo
  require_shift: true
  shifts: [matutino]
`+minimalSchema+`
steps:
  - answer: 3
final:
  expect_error: SHIFT_REQUIRED
`)
	sc, err := LoadScenario(path)
	require.NoError(t, err)

	result, err := Run(sc)
	require.NoError(t, err)
	assert.True(t, result.Pass, "%v", result.Errors)
	assert.Nil(t, result.Payload)
}

package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluewave/kiosko/internal/schema"
)

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadScenarioBadYAML(t *testing.T) {
	path := writeScenario(t, "name: [broken")
	_, err := LoadScenario(path)
	assert.Error(t, err)
}

func TestLoadScenarioValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{
			name: "missing name",
			yaml: `
config: { token: demo }
` + minimalSchema + `
steps:
  - answer: 3
`,
		},
		{
			name: "no schema",
			yaml: `
name: x
config: { token: demo }
steps:
  - answer: 3
`,
		},
		{
			name: "both schema and schema_file",
			yaml: `
name: x
config: { token: demo }
schema_file: other.yaml
` + minimalSchema + `
steps:
  - answer: 3
`,
		},
		{
			name: "two actions in one step",
			yaml: `
name: x
config: { token: demo }
` + minimalSchema + `
steps:
  - answer: 3
    back: true
`,
		},
		{
			name: "empty step",
			yaml: `
name: x
config: { token: demo }
` + minimalSchema + `
steps:
  - {}
`,
		},
		{
			name: "expect_error without action",
			yaml: `
name: x
config: { token: demo }
` + minimalSchema + `
steps:
  - expect_error: ANSWER_REQUIRED
`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeScenario(t, tc.yaml)
			_, err := LoadScenario(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadScenarioSchemaFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "survey.yaml"), []byte(`
questions:
  - id: q1
    type: likert
    required: true
    text: { es: "¿Qué tal?" }
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scenario.yaml"), []byte(`
name: from_file
config: { token: demo }
schema_file: survey.yaml
steps:
  - answer: 4
final: {}
`), 0o644))

	sc, err := LoadScenario(filepath.Join(dir, "scenario.yaml"))
	require.NoError(t, err)

	result, err := Run(sc)
	require.NoError(t, err)
	assert.True(t, result.Pass, "%v", result.Errors)
}

func TestLoadScenarioDirSortsByName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zeta", "alpha"} {
		content := "name: " + name + "\nconfig: { token: demo }\n" + minimalSchema + "steps:\n  - answer: 1\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(content), 0o644))
	}
	// Non-YAML entries are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0o644))

	scenarios, err := LoadScenarioDir(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "alpha", scenarios[0].Name)
	assert.Equal(t, "zeta", scenarios[1].Name)
}

func TestStepAnswerValue(t *testing.T) {
	path := writeScenario(t, `
name: answers
config: { token: demo }
`+minimalSchema+`
steps:
  - answer: 4
  - answer: "tarde"
`)
	sc, err := LoadScenario(path)
	require.NoError(t, err)

	v, err := sc.Steps[0].answerValue()
	require.NoError(t, err)
	assert.Equal(t, schema.IntValue(4), v)

	v, err = sc.Steps[1].answerValue()
	require.NoError(t, err)
	assert.Equal(t, schema.StringValue("tarde"), v)
}

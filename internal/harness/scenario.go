package harness

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bluewave/kiosko/internal/schema"
)

// Scenario defines one scripted kiosk visit.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config carries the campaign settings the session runs under.
	Config ScenarioConfig `yaml:"config"`

	// Schema is the survey schema, inline. Exactly one of Schema and
	// SchemaFile must be set.
	Schema yaml.Node `yaml:"schema,omitempty"`

	// SchemaFile points at a schema file, relative to the scenario file.
	SchemaFile string `yaml:"schema_file,omitempty"`

	// Steps is the scripted visit: answers, navigation, expectations.
	Steps []Step `yaml:"steps"`

	// Final holds the terminal-step data applied after the last question.
	Final *FinalStep `yaml:"final,omitempty"`

	// baseDir resolves SchemaFile; set by LoadScenario.
	baseDir string
}

// ScenarioConfig mirrors the campaign settings that shape a visit.
type ScenarioConfig struct {
	Token        string   `yaml:"token"`
	Lang         string   `yaml:"lang,omitempty"`
	RequireArea  bool     `yaml:"require_area,omitempty"`
	RequireShift bool     `yaml:"require_shift,omitempty"`
	Shifts       []string `yaml:"shifts,omitempty"`
}

// Step is one scripted intent. Exactly one field group applies:
// Answer/Text/Skip/Back/Lang drive a transition, the Expect* fields
// assert on the session without mutating it.
type Step struct {
	// Answer selects a value on the current choice question. Integers
	// answer likert questions, strings answer single-choice by option
	// value.
	Answer *yaml.Node `yaml:"answer,omitempty"`

	// Text records free text on the current text question and advances.
	Text *string `yaml:"text,omitempty"`

	// Skip advances past an optional question without answering.
	Skip bool `yaml:"skip,omitempty"`

	// Back goes to the previous visible question.
	Back bool `yaml:"back,omitempty"`

	// Lang switches the display language mid-visit.
	Lang string `yaml:"lang,omitempty"`

	// ExpectVisible asserts the visible question ids, in order.
	ExpectVisible []string `yaml:"expect_visible,omitempty"`

	// ExpectCurrent asserts the id of the current question.
	ExpectCurrent string `yaml:"expect_current,omitempty"`

	// ExpectStep asserts progress as "step/total".
	ExpectStep string `yaml:"expect_step,omitempty"`

	// ExpectError asserts the next transition fails with this
	// validation code. It applies to the immediately preceding
	// Answer/Text/Skip field in the same step.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// FinalStep carries the terminal-step data.
type FinalStep struct {
	AreaID   int64           `yaml:"area_id,omitempty"`
	Shift    string          `yaml:"shift,omitempty"`
	Followup *FollowupDetail `yaml:"followup,omitempty"`

	// ExpectError asserts final validation fails with this code.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// FollowupDetail is the contact block of an opted-in visit.
type FollowupDetail struct {
	Name       string `yaml:"name"`
	EmployeeNo string `yaml:"employee_no"`
}

// LoadScenario reads and validates a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	sc.baseDir = filepath.Dir(path)

	if err := sc.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &sc, nil
}

// LoadScenarioDir loads every *.yaml scenario under dir, sorted by name.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenario dir %s: %w", dir, err)
	}

	var scenarios []*Scenario
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		sc, err := LoadScenario(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}
	sort.Slice(scenarios, func(i, j int) bool { return scenarios[i].Name < scenarios[j].Name })
	return scenarios, nil
}

func (sc *Scenario) validate() error {
	if sc.Name == "" {
		return fmt.Errorf("scenario has no name")
	}
	if sc.SchemaFile == "" && sc.Schema.IsZero() {
		return fmt.Errorf("scenario has neither schema nor schema_file")
	}
	if sc.SchemaFile != "" && !sc.Schema.IsZero() {
		return fmt.Errorf("scenario sets both schema and schema_file")
	}
	for i, st := range sc.Steps {
		if err := st.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func (st *Step) validate() error {
	actions := 0
	if st.Answer != nil {
		actions++
	}
	if st.Text != nil {
		actions++
	}
	if st.Skip {
		actions++
	}
	if st.Back {
		actions++
	}
	if st.Lang != "" {
		actions++
	}
	if actions > 1 {
		return fmt.Errorf("more than one action in a single step")
	}
	expects := st.ExpectVisible != nil || st.ExpectCurrent != "" || st.ExpectStep != "" || st.ExpectError != ""
	if actions == 0 && !expects {
		return fmt.Errorf("step does nothing")
	}
	if st.ExpectError != "" && st.Answer == nil && st.Text == nil && !st.Skip {
		return fmt.Errorf("expect_error needs an answer, text, or skip action")
	}
	return nil
}

// LoadSchema materializes the scenario's schema, inline or from file.
func (sc *Scenario) LoadSchema() (*schema.Schema, error) {
	if sc.SchemaFile != "" {
		path := sc.SchemaFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(sc.baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading schema file %s: %w", path, err)
		}
		return schema.DecodeSchemaYAML(data)
	}

	// Inline schema: decode the YAML node to a generic value and round
	// it through JSON so one decoder owns the defaults.
	var raw any
	if err := sc.Schema.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding inline schema: %w", err)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding inline schema: %w", err)
	}
	return schema.DecodeSchema(data)
}

// answerValue converts a scripted answer into a flow value.
func (st *Step) answerValue() (schema.Value, error) {
	var n int
	if err := st.Answer.Decode(&n); err == nil {
		return schema.IntValue(n), nil
	}
	var s string
	if err := st.Answer.Decode(&s); err == nil {
		return schema.StringValue(s), nil
	}
	return nil, fmt.Errorf("answer must be an integer or a string")
}

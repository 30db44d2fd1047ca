package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// defaultLanguages is applied when a schema declares no languages.
var defaultLanguages = []string{"es", "en"}

// DecodeSchema parses a JSON schema document and applies defaults.
// The input is the "schema" object of a campaign snapshot, or an authoring
// file saved by the builder.
func DecodeSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	applyDefaults(&s)
	return &s, nil
}

// DecodeSchemaYAML parses a YAML schema document. YAML is accepted for
// authoring files only; the wire format is always JSON. The document is
// converted to JSON first so both formats share one decode path (Operand
// and answer unwrapping live in the JSON unmarshalers).
func DecodeSchemaYAML(data []byte) (*Schema, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decode schema yaml: %w", err)
	}
	jsonBytes, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("decode schema yaml: %w", err)
	}
	return DecodeSchema(jsonBytes)
}

// EncodeSchema renders a schema as indented JSON, the form the builder
// persists and the backend snapshots.
func EncodeSchema(s *Schema) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	return data, nil
}

func applyDefaults(s *Schema) {
	if len(s.Languages) == 0 {
		s.Languages = append([]string(nil), defaultLanguages...)
	}
	if s.Questions == nil {
		s.Questions = []Question{}
	}
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bluewave/kiosko/internal/schema"
)

// LoadSchemaFile reads and decodes a survey schema from disk. The
// format is picked by extension: .yaml/.yml decode as YAML, anything
// else as JSON.
func LoadSchemaFile(path string) (*schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ExitError{
				Code:    ExitCommandError,
				Message: fmt.Sprintf("schema file not found: %s", path),
				Err:     err,
			}
		}
		return nil, &ExitError{
			Code:    ExitCommandError,
			Message: fmt.Sprintf("reading schema file %s", path),
			Err:     err,
		}
	}

	var s *schema.Schema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		s, err = schema.DecodeSchemaYAML(data)
	default:
		s, err = schema.DecodeSchema(data)
	}
	if err != nil {
		return nil, &ExitError{
			Code:    ExitFailure,
			Message: fmt.Sprintf("parsing schema file %s", path),
			Err:     err,
		}
	}
	return s, nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bluewave/kiosko/internal/schema"
)

// ValidationResult holds schema validation results.
type ValidationResult struct {
	Valid  bool                     `json:"valid"`
	Errors []schema.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schema-file>",
		Short: "Validate a survey schema",
		Long: `Validate a survey schema file without talking to any backend.

Checks structural rules (ids, types, option lists, scales) and branch
condition consistency (known operators, existing sources, no forward
references). Accepts JSON or YAML by file extension.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	s, err := LoadSchemaFile(path)
	if err != nil {
		code := ErrCodeBadSchema
		if GetExitCode(err) == ExitCommandError {
			code = ErrCodeNotFound
		}
		if outErr := formatter.Error(code, err.Error(), nil); outErr != nil {
			return outErr
		}
		return err
	}

	formatter.VerboseLog("Loaded %d question(s) from %s", len(s.Questions), path)

	errs := schema.Validate(s)
	if len(errs) > 0 {
		if opts.Format == "json" {
			if outErr := formatter.Success(ValidationResult{Valid: false, Errors: errs}); outErr != nil {
				return outErr
			}
		} else {
			fmt.Fprintf(formatter.Writer, "Schema is invalid (%d error(s)):\n", len(errs))
			for _, e := range errs {
				fmt.Fprintf(formatter.Writer, "  [%s] %s\n", e.Code, e.Message)
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(errs)))
	}

	if opts.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true})
	}
	return formatter.Success(fmt.Sprintf("Schema is valid (%d question(s))", len(s.Questions)))
}

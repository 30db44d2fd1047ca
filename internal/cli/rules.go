package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bluewave/kiosko/internal/builder"
)

// RulesResult holds the derived branch rules for a source question.
type RulesResult struct {
	Source string         `json:"source"`
	Rules  []builder.Rule `json:"rules"`
}

// NewRulesCommand creates the rules command.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules <schema-file> <question-id>",
		Short: "Show branch rules derived from a question",
		Long: `Show the branch rules a schema implies for one source question.

The rule view groups every downstream show_if condition that references
the source question by answer value, the same projection the authoring
UI edits. Accepts JSON or YAML by file extension.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runRules(opts *RootOptions, path, sourceID string, cmd *cobra.Command) error {
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

	if s.Question(sourceID) == nil {
		msg := fmt.Sprintf("question %q not found in schema", sourceID)
		if outErr := formatter.Error(ErrCodeNotFound, msg, nil); outErr != nil {
			return outErr
		}
		return NewExitError(ExitCommandError, msg)
	}

	rules := builder.DeriveRules(s, sourceID)
	formatter.VerboseLog("Derived %d rule(s) for %s", len(rules), sourceID)

	if opts.Format == "json" {
		return formatter.Success(RulesResult{Source: sourceID, Rules: rules})
	}

	if len(rules) == 0 {
		return formatter.Success(fmt.Sprintf("No branch rules reference %s", sourceID))
	}
	fmt.Fprintf(formatter.Writer, "Branch rules for %s:\n", sourceID)
	for _, r := range rules {
		fmt.Fprintf(formatter.Writer, "  answer %q shows: %s\n", r.Value, strings.Join(r.Targets, ", "))
	}
	return nil
}

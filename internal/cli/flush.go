package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bluewave/kiosko/internal/api"
	"github.com/bluewave/kiosko/internal/pipeline"
	"github.com/bluewave/kiosko/internal/store"
)

// FlushResult holds the outcome of a one-shot queue flush.
type FlushResult struct {
	Attempted int `json:"attempted"`
	Delivered int `json:"delivered"`
	Remaining int `json:"remaining"`
}

// NewFlushCommand creates the flush command.
func NewFlushCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dbPath  string
		apiBase string
	)

	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Resend queued submissions",
		Long: `Resend every queued submission to the backend, oldest first.

Submissions that still fail stay in the queue in their original order.
Useful after a long outage or from a cron job on the kiosk device.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlush(rootOpts, dbPath, apiBase, cmd)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path to the local database (default $KIOSKO_DB or kiosko.db)")
	cmd.Flags().StringVar(&apiBase, "api", "", "backend base URL (default $KIOSKO_API_BASE)")

	return cmd
}

func runFlush(opts *RootOptions, dbPath, apiBase string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	cfg, err := LoadConfig(apiBase, dbPath)
	if err != nil {
		if outErr := formatter.Error(ErrCodeGeneric, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "loading configuration", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		if outErr := formatter.Error(ErrCodeGeneric, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "opening local database", err)
	}
	defer st.Close()

	formatter.VerboseLog("Flushing queue in %s against %s", cfg.DBPath, cfg.APIBase)

	client := api.New(api.Config{BaseURL: cfg.APIBase})
	p := pipeline.New(client, st)
	stats := p.FlushNow(cmd.Context())

	result := FlushResult{
		Attempted: stats.Attempted,
		Delivered: stats.Delivered,
		Remaining: stats.Remaining,
	}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	if result.Attempted == 0 {
		return formatter.Success("Queue is empty")
	}
	msg := fmt.Sprintf("Delivered %d of %d queued submission(s)", result.Delivered, result.Attempted)
	if result.Remaining > 0 {
		msg += fmt.Sprintf(", %d still queued", result.Remaining)
	}
	return formatter.Success(msg)
}

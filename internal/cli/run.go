package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bluewave/kiosko/internal/api"
	"github.com/bluewave/kiosko/internal/flow"
	"github.com/bluewave/kiosko/internal/pipeline"
	"github.com/bluewave/kiosko/internal/schema"
	"github.com/bluewave/kiosko/internal/store"
)

// errAbandoned signals that the idle watchdog discarded the visit.
var errAbandoned = errors.New("session abandoned")

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		token   string
		lang    string
		dbPath  string
		apiBase string
		once    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the kiosk survey loop",
		Long: `Run the interactive kiosk loop for one campaign.

Fetches the campaign and its schema snapshot, then collects responses
until interrupted. Each finished response is delivered to the backend,
or queued locally when the backend is unreachable. An idle visit is
discarded after the configured timeout and the kiosk returns to the
start screen.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(rootOpts, token, lang, dbPath, apiBase, once, cmd)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "campaign token (required)")
	cmd.Flags().StringVar(&lang, "lang", "", "display language (default: last used, then es)")
	cmd.Flags().StringVar(&dbPath, "db", "", "path to the local database (default $KIOSKO_DB or kiosko.db)")
	cmd.Flags().StringVar(&apiBase, "api", "", "backend base URL (default $KIOSKO_API_BASE)")
	cmd.Flags().BoolVar(&once, "once", false, "collect a single response and exit")
	cmd.MarkFlagRequired("token")

	return cmd
}

func runRun(opts *RootOptions, token, lang, dbPath, apiBase string, once bool, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    out,
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := LoadConfig(apiBase, dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading configuration", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening local database", err)
	}
	defer st.Close()

	ctx := cmd.Context()

	if lang == "" {
		stored, err := st.Language(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "reading stored language", err)
		}
		lang = stored
	}

	client := api.New(api.Config{BaseURL: cfg.APIBase})
	campaign, err := client.Campaign(ctx, token)
	if err != nil {
		if errors.Is(err, api.ErrCampaignNotFound) {
			return WrapExitError(ExitCommandError, fmt.Sprintf("campaign %q not found or inactive", token), err)
		}
		return WrapExitError(ExitCommandError, "fetching campaign", err)
	}
	if campaign.Snapshot.Schema == nil || len(campaign.Snapshot.Schema.Questions) == 0 {
		return NewExitError(ExitCommandError, "campaign snapshot has no questions")
	}

	var areas []api.Area
	if campaign.RequireArea {
		areas, err = client.Areas(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "fetching area catalog", err)
		}
	}

	formatter.VerboseLog("Campaign %q: %d question(s), %d area(s)", campaign.Name, len(campaign.Snapshot.Schema.Questions), len(areas))

	p := pipeline.New(client, st)
	go p.Run(ctx)
	defer p.Stop()

	k := &kiosk{
		out:      out,
		lines:    readLines(cmd.InOrStdin()),
		campaign: campaign,
		areas:    areas,
		store:    st,
		pipeline: p,
		idle:     cfg.IdleTimeout,
		lang:     lang,
	}

	for {
		err := k.visit(ctx, token)
		switch {
		case errors.Is(err, errAbandoned):
			fmt.Fprintln(out, "\nSesión descartada por inactividad.")
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}
		if once {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}

// kiosk drives one terminal attached to one campaign.
type kiosk struct {
	out      io.Writer
	lines    <-chan string
	campaign *api.Campaign
	areas    []api.Area
	store    *store.Store
	pipeline *pipeline.Pipeline
	idle     time.Duration
	lang     string
}

// visit collects a single response front to back. It returns errAbandoned
// when the idle watchdog fires and io.EOF when input runs out.
func (k *kiosk) visit(ctx context.Context, token string) error {
	s := k.campaign.Snapshot.Schema

	visitCtx, abandon := context.WithCancel(ctx)
	defer abandon()
	dog := flow.NewWatchdog(k.idle, abandon)
	defer dog.Stop()

	fmt.Fprintf(k.out, "\n== %s ==\n", k.campaign.Name)

	lang, err := k.chooseLanguage(visitCtx, s.Languages)
	if err != nil {
		return err
	}
	if lang != k.lang {
		k.lang = lang
		if err := k.store.SetLanguage(ctx, lang); err != nil {
			slog.Warn("persisting language", "err", err)
		}
	}

	sess := flow.NewSession(flow.Config{
		Token:        token,
		Shifts:       k.campaign.Shifts,
		RequireArea:  k.campaign.RequireArea,
		RequireShift: k.campaign.RequireShift,
		Schema:       s,
		Lang:         lang,
	})

	for !sess.AtFinal() {
		if err := k.askQuestion(visitCtx, dog, sess); err != nil {
			return err
		}
	}

	if err := k.finalStep(visitCtx, dog, sess); err != nil {
		return err
	}

	// The visit is committed now; the watchdog must not discard it while
	// the submission is in flight.
	dog.Stop()

	res := k.pipeline.Submit(ctx, token, sess.Payload())
	if res.Err != nil {
		return WrapExitError(ExitCommandError, "saving submission", res.Err)
	}
	fmt.Fprintln(k.out, "\n¡Gracias por tu respuesta!")
	if res.Status == pipeline.SavedOffline {
		fmt.Fprintln(k.out, "(guardada localmente, se enviará al recuperar conexión)")
	}
	return nil
}

func (k *kiosk) chooseLanguage(ctx context.Context, langs []string) (string, error) {
	if len(langs) < 2 {
		if len(langs) == 1 {
			return langs[0], nil
		}
		return k.lang, nil
	}
	def := k.lang
	if def == "" {
		def = flow.DefaultLanguage
	}
	fmt.Fprintf(k.out, "Idioma / Language [%s]: %s\n", def, strings.Join(langs, " "))
	line, err := k.readLine(ctx)
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(strings.ToLower(line))
	if line == "" {
		return def, nil
	}
	for _, l := range langs {
		if l == line {
			return l, nil
		}
	}
	fmt.Fprintf(k.out, "Idioma desconocido, usando %s.\n", def)
	return def, nil
}

// askQuestion renders the current question and applies one answer. Back
// navigation ("b") and validation retries loop in place.
func (k *kiosk) askQuestion(ctx context.Context, dog *flow.Watchdog, sess *flow.Session) error {
	q := sess.Current()
	if q == nil {
		return nil
	}
	step, total := sess.Progress()
	fmt.Fprintf(k.out, "\n[%d/%d] %s\n", step, total, q.Text.In(sess.Lang()))

	switch q.Type {
	case schema.QuestionLikert:
		scale := q.EffectiveScale()
		labels := schema.LikertScaleLabels(q, sess.Lang())
		for i := 1; i <= scale; i++ {
			label := ""
			if i-1 < len(labels) {
				label = labels[i-1]
			}
			fmt.Fprintf(k.out, "  %d) %s\n", i, label)
		}
		return k.readChoice(ctx, dog, sess, scale, func(n int) schema.Value {
			return schema.IntValue(n)
		})

	case schema.QuestionSingle:
		for i, opt := range q.Options {
			fmt.Fprintf(k.out, "  %d) %s\n", i+1, opt.Label.In(sess.Lang()))
		}
		return k.readChoice(ctx, dog, sess, len(q.Options), func(n int) schema.Value {
			return schema.StringValue(q.Options[n-1].Value)
		})

	case schema.QuestionText:
		if !q.Required {
			fmt.Fprintln(k.out, "  (enter para omitir)")
		}
		for {
			line, err := k.readVisitLine(ctx, dog)
			if err != nil {
				return err
			}
			if strings.TrimSpace(line) == "b" {
				if !sess.Back() {
					fmt.Fprintln(k.out, "Ya estás en la primera pregunta.")
					continue
				}
				return nil
			}
			sess.SetText(line)
			if err := sess.Advance(); err != nil {
				if flow.IsValidation(err) {
					fmt.Fprintln(k.out, "Esta pregunta es obligatoria.")
					continue
				}
				return err
			}
			return nil
		}

	default:
		return fmt.Errorf("unsupported question type %q", q.Type)
	}
}

// readChoice reads a 1-based selection, records it, and advances.
func (k *kiosk) readChoice(ctx context.Context, dog *flow.Watchdog, sess *flow.Session, max int, value func(int) schema.Value) error {
	for {
		line, err := k.readVisitLine(ctx, dog)
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "b" {
			if !sess.Back() {
				fmt.Fprintln(k.out, "Ya estás en la primera pregunta.")
				continue
			}
			return nil
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > max {
			fmt.Fprintf(k.out, "Elige un número entre 1 y %d (o 'b' para volver).\n", max)
			continue
		}
		if err := sess.Select(value(n)); err != nil {
			if flow.IsValidation(err) {
				fmt.Fprintln(k.out, "Respuesta no válida, intenta de nuevo.")
				continue
			}
			return err
		}
		return nil
	}
}

// finalStep collects area, shift and follow-up contact, then validates
// the whole visit. Validation failures restart the step.
func (k *kiosk) finalStep(ctx context.Context, dog *flow.Watchdog, sess *flow.Session) error {
	s := k.campaign.Snapshot.Schema
	for {
		if k.campaign.RequireArea && len(k.areas) > 0 {
			fmt.Fprintln(k.out, "\n¿En qué área trabajas?")
			for i, a := range k.areas {
				fmt.Fprintf(k.out, "  %d) %s\n", i+1, a.Name)
			}
			n, err := k.readNumber(ctx, dog, len(k.areas))
			if err != nil {
				return err
			}
			sess.SetArea(k.areas[n-1].ID)
		}

		if len(k.campaign.Shifts) > 0 {
			fmt.Fprintln(k.out, "\n¿Cuál es tu turno?")
			for i, sh := range k.campaign.Shifts {
				fmt.Fprintf(k.out, "  %d) %s\n", i+1, sh)
			}
			if !k.campaign.RequireShift {
				fmt.Fprintln(k.out, "  (enter para omitir)")
			}
			line, err := k.readVisitLine(ctx, dog)
			if err != nil {
				return err
			}
			line = strings.TrimSpace(line)
			if line != "" {
				n, convErr := strconv.Atoi(line)
				if convErr == nil && n >= 1 && n <= len(k.campaign.Shifts) {
					sess.SetShift(k.campaign.Shifts[n-1])
				}
			}
		}

		if s.Settings.CollectFollowup {
			fmt.Fprintln(k.out, "\n¿Quieres que te contactemos? (s/n)")
			line, err := k.readVisitLine(ctx, dog)
			if err != nil {
				return err
			}
			wants := strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "s")
			sess.SetFollowup(wants)
			if wants {
				fmt.Fprintln(k.out, "Nombre:")
				name, err := k.readVisitLine(ctx, dog)
				if err != nil {
					return err
				}
				fmt.Fprintln(k.out, "Número de empleado:")
				emp, err := k.readVisitLine(ctx, dog)
				if err != nil {
					return err
				}
				sess.SetContact(name, emp)
			}
		}

		if err := sess.ValidateFinal(); err != nil {
			if flow.IsValidation(err) {
				fmt.Fprintf(k.out, "\nFaltan datos: %v\n", err)
				continue
			}
			return err
		}
		return nil
	}
}

func (k *kiosk) readNumber(ctx context.Context, dog *flow.Watchdog, max int) (int, error) {
	for {
		line, err := k.readVisitLine(ctx, dog)
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.Atoi(strings.TrimSpace(line))
		if convErr != nil || n < 1 || n > max {
			fmt.Fprintf(k.out, "Elige un número entre 1 y %d.\n", max)
			continue
		}
		return n, nil
	}
}

// readVisitLine reads a line and re-arms the idle watchdog.
func (k *kiosk) readVisitLine(ctx context.Context, dog *flow.Watchdog) (string, error) {
	line, err := k.readLine(ctx)
	if err != nil {
		return "", err
	}
	dog.Touch()
	return line, nil
}

func (k *kiosk) readLine(ctx context.Context) (string, error) {
	select {
	case line, ok := <-k.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	case <-ctx.Done():
		return "", errAbandoned
	}
}

// readLines pumps input lines onto a channel so reads can race the idle
// watchdog. The goroutine exits when the reader is exhausted.
func readLines(r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			ch <- sc.Text()
		}
	}()
	return ch
}

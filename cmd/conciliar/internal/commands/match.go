package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/conciliar/internal/config"
	"github.com/MrJamesThe3rd/conciliar/internal/importer"
	"github.com/MrJamesThe3rd/conciliar/internal/ledgerfile"
	"github.com/MrJamesThe3rd/conciliar/internal/logging"
	"github.com/MrJamesThe3rd/conciliar/internal/matching"
	"github.com/MrJamesThe3rd/conciliar/internal/reconcile"
	"github.com/MrJamesThe3rd/conciliar/internal/report"
	"github.com/MrJamesThe3rd/conciliar/internal/transaction"
)

const dateLayout = "2006-01-02"

type matchOptions struct {
	ledger    string
	format    string
	threshold int
	accept    bool
}

func newMatchCommand() *cobra.Command {
	var opts matchOptions

	cmd := &cobra.Command{
		Use:   "match <file>",
		Short: "Match a statement against a YAML ledger and print the report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.ledger, "ledger", "", "YAML ledger file (required)")
	_ = cmd.MarkFlagRequired("ledger")
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: text or csv")
	cmd.Flags().IntVar(&opts.threshold, "threshold", -1, "suggestion threshold, overrides MATCH_THRESHOLD")
	cmd.Flags().BoolVar(&opts.accept, "accept", false, "reconcile every movement with its suggestion")

	return cmd
}

func runMatch(cmd *cobra.Command, path string, opts matchOptions) error {
	if opts.format != "text" && opts.format != "csv" {
		return fmt.Errorf("unknown format %q", opts.format)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if opts.threshold >= 0 {
		cfg.Matching.Threshold = opts.threshold
	}

	matchCfg, err := cfg.MatchingConfig()
	if err != nil {
		return err
	}

	engine, err := matching.NewEngine(matchCfg)
	if err != nil {
		return err
	}

	ledger, err := ledgerfile.Load(opts.ledger)
	if err != nil {
		return err
	}

	st, err := readStatement(path)
	if err != nil {
		return err
	}

	var (
		ctx    = cmd.Context()
		logger = logging.NewWithWriter(cmd.ErrOrStderr(), cfg.App.LogLevel)
		txSvc  = transaction.NewService(ledger)
		svc    = reconcile.NewService(importer.NewService(), engine, txSvc, txSvc, nil, logger)
	)

	session, err := svc.Load(ctx, st)
	if err != nil {
		return err
	}

	if opts.accept {
		if err := acceptSuggestions(cmd, svc, session); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()

	if opts.format == "csv" {
		return report.WriteCSV(out, session.Results())
	}

	_, err = fmt.Fprint(out, report.Text(session.Statement(), session.Summary(), session.Results()))

	return err
}

// acceptSuggestions links suggestions one at a time. Every link removes a
// candidate and rematches, so the pending list is read again after each one.
func acceptSuggestions(cmd *cobra.Command, svc *reconcile.Service, session *reconcile.Session) error {
	skip := make(map[string]bool)

	for {
		var next *matching.Result

		for _, r := range session.Pending() {
			if r.Matched() && !skip[r.Movement.ID] {
				next = &r
				break
			}
		}

		if next == nil {
			return nil
		}

		skip[next.Movement.ID] = true

		if _, err := svc.Reconcile(cmd.Context(), next.Movement.ID, next.Suggestion.ID); err != nil {
			return fmt.Errorf("reconciling %s: %w", next.Movement.Description, err)
		}
	}
}

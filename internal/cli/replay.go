package cli

import (
	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/roach88/livestyle/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
	All      bool
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []store.ReplayReport `json:"runs"`
	TotalRuns        int                  `json:"total_runs"`
	AllDeterministic bool                 `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a journaled run and verify determinism",
		Long: `Re-apply the journaled events of a run from the empty state and compare
every step with the journal: the state digest, the changed flag and the
checkpoint bytes.

Without --run the latest run is replayed. --all replays every run.

Exit codes:
  0 - Every replayed run reproduced the journal
  1 - Determinism verification failed (differences detected)
  2 - Command error (journal not found, unknown run, etc.)

Examples:
  livestyle replay --db ./livestyle.db
  livestyle replay --db ./livestyle.db --run 0190c3de-...
  livestyle replay --db ./livestyle.db --all --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite journal")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay a specific run")
	cmd.Flags().BoolVar(&opts.All, "all", false, "replay every run in the journal")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	log := pslog.Ctx(ctx)
	f := opts.formatter(cmd)

	st, err := openJournal(f, opts.journalPath(opts.Database))
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := selectRuns(ctx, f, st, opts.RunID, opts.All)
	if err != nil {
		return err
	}

	result := ReplayResult{
		Runs:             make([]store.ReplayReport, 0, len(runs)),
		TotalRuns:        len(runs),
		AllDeterministic: true,
	}
	for _, run := range runs {
		report, err := st.ReplayRun(ctx, run.ID)
		if err != nil {
			return f.Fail(ExitCommandError, CodeJournal, "failed to replay run "+run.ID, err, nil)
		}
		log.Debug("run replayed", "run", run.ID, "events", report.Events, "mismatches", len(report.Mismatches))
		result.Runs = append(result.Runs, report)
		if !report.OK() {
			result.AllDeterministic = false
		}
	}

	if f.JSON() {
		if !result.AllDeterministic {
			return f.Fail(ExitFailure, CodeDeterminism, "replay diverged from the journal", nil, result)
		}
		return f.Success(result)
	}

	outputReplayText(f, result)
	if !result.AllDeterministic {
		return &ExitError{Code: ExitFailure, Message: "replay diverged from the journal", Reported: true}
	}
	return nil
}

func outputReplayText(f *OutputFormatter, result ReplayResult) {
	for _, report := range result.Runs {
		mark := markOK
		if !report.OK() {
			mark = markFail
		}
		f.Printf("%s %s: %d event(s), %d checkpoint(s)\n", mark, report.RunID, report.Events, report.Checkpoints)
		f.VerboseLog("  final digest %s", report.FinalDigest)
		for _, m := range report.Mismatches {
			f.Printf("    seq %d %s: want %s, got %s\n", m.Seq, m.Field, m.Want, m.Got)
		}
	}
	if result.AllDeterministic {
		f.Printf("\nAll %d run(s) deterministic\n", result.TotalRuns)
		return
	}
	f.Printf("\nDeterminism verification failed\n")
}

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/roach88/livestyle/internal/engine"
	"github.com/roach88/livestyle/internal/event"
	"github.com/roach88/livestyle/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Resume   string // run id to continue

	// RunIDs overrides the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// RunResult is the outcome of applying an event document.
type RunResult struct {
	RunID   string         `json:"run_id"`
	Source  string         `json:"source"`
	Events  int            `json:"events"`
	Changed int            `json:"changed"`
	Digest  string         `json:"digest"`
	Journal string         `json:"journal,omitempty"`
	Resumed int64          `json:"resumed_after_seq,omitempty"`
	State   map[string]any `json:"state"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <events.yaml>",
		Short: "Apply an event document and print the final state",
		Long: `Apply every event of a document through the single-writer engine and
print the final state snapshot.

With --db (or journal.path in the config file) the run is journaled to
SQLite and can later be replayed and traced. --resume continues a journaled
run: its events are re-applied first and the new events are appended to it.

Examples:
  livestyle run ./events.yaml
  livestyle run ./events.yaml --db ./livestyle.db
  livestyle run ./more.yaml --db ./livestyle.db --resume 0190c3de-...
  livestyle run ./events.yaml --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "journal the run to this SQLite database")
	cmd.Flags().StringVar(&opts.Resume, "resume", "", "continue the journaled run with this id")

	return cmd
}

func runEvents(opts *RunOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	log := pslog.Ctx(ctx)
	f := opts.formatter(cmd)

	events, err := event.LoadFile(path)
	if err != nil {
		return failLoad(f, ExitCommandError, err)
	}
	log.Debug("events loaded", "path", path, "count", len(events))

	engineOpts := []engine.Option{engine.WithLogger(log)}
	if opts.RunIDs != nil {
		engineOpts = append(engineOpts, engine.WithRunIDGenerator(opts.RunIDs))
	}

	dbPath := opts.journalPath(opts.Database)
	var resumed int64
	if dbPath != "" {
		var st *store.Store
		if opts.Resume != "" {
			st, err = openJournal(f, dbPath, store.WithCheckpointEvery(opts.Config.Journal.CheckpointEvery))
			if err != nil {
				return err
			}
		} else {
			st, err = store.Open(dbPath, store.WithCheckpointEvery(opts.Config.Journal.CheckpointEvery))
			if err != nil {
				return f.Fail(ExitCommandError, CodeJournal, "failed to open journal", err, nil)
			}
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				log.Error("error closing journal", "err", closeErr)
			}
		}()
		engineOpts = append(engineOpts, engine.WithJournal(st, path))

		if opts.Resume != "" {
			resumeOpts, lastSeq, err := resumeRun(cmd, f, st, opts.Resume)
			if err != nil {
				return err
			}
			engineOpts = append(engineOpts, resumeOpts...)
			resumed = lastSeq
		}
	} else if opts.Resume != "" {
		return f.Fail(ExitCommandError, CodeInput, "--resume needs a journal: pass --db or set journal.path", nil, nil)
	}

	eng := engine.New(engineOpts...)
	changed := 0
	eng.OnChange(func(prev, next *engine.State) { changed++ })

	for _, ev := range events {
		eng.Enqueue(ev)
	}
	eng.Stop()
	if err := eng.Run(ctx); err != nil {
		return WrapExitError(ExitFailure, "run interrupted", err)
	}

	final := eng.State()
	result := RunResult{
		RunID:   eng.RunID(),
		Source:  path,
		Events:  len(events),
		Changed: changed,
		Digest:  engine.Digest(final),
		Journal: dbPath,
		Resumed: resumed,
		State:   engine.Snapshot(final),
	}

	if f.JSON() {
		return f.Success(result)
	}
	return outputRunText(f, result, engine.SnapshotJSON(final))
}

func outputRunText(f *OutputFormatter, result RunResult, snapshot []byte) error {
	f.Printf("Applied %d event(s), %d changed the state\n", result.Events, result.Changed)
	f.Printf("Run: %s\n", result.RunID)
	if result.Resumed > 0 {
		f.Printf("Resumed after seq %d\n", result.Resumed)
	}
	if result.Journal != "" {
		f.Printf("Journal: %s\n", result.Journal)
	}
	f.Printf("Digest: %s\n\n", result.Digest)

	var buf bytes.Buffer
	if err := json.Indent(&buf, snapshot, "", "  "); err != nil {
		return err
	}
	f.Printf("%s\n", buf.String())
	return nil
}

// resumeRun rebuilds the state of a journaled run from its events and
// returns the engine options that continue it: same run id, the rebuilt
// state and a clock continuing after the last journaled seq.
func resumeRun(cmd *cobra.Command, f *OutputFormatter, st *store.Store, runID string) ([]engine.Option, int64, error) {
	ctx := cmd.Context()
	run, err := st.Run(ctx, runID)
	if err != nil {
		return nil, 0, failRun(f, runID, err)
	}
	stored, err := st.ReadEvents(ctx, runID, store.EventFilter{})
	if err != nil {
		return nil, 0, f.Fail(ExitCommandError, CodeJournal, "failed to read run", err, nil)
	}
	events, err := store.Events(stored)
	if err != nil {
		return nil, 0, f.Fail(ExitCommandError, CodeDecode, "journaled event does not decode", err, nil)
	}
	state, _ := engine.Replay(nil, events)
	pslog.Ctx(ctx).Debug("run resumed", "run", runID, "events", len(events), "last_seq", run.LastSeq)

	return []engine.Option{
		engine.WithState(state),
		engine.WithClock(engine.NewClockAt(run.LastSeq)),
		engine.WithRunIDGenerator(engine.NewFixedGenerator(runID)),
	}, run.LastSeq, nil
}

// failLoad reports an event document that could not be loaded. Schema
// violations and decode errors carry their details.
func failLoad(f *OutputFormatter, exitCode int, err error) error {
	var schemaErr *event.SchemaError
	if errors.As(err, &schemaErr) {
		return f.Fail(exitCode, CodeSchema,
			fmt.Sprintf("%s: %d schema violation(s)", schemaErr.Source, len(schemaErr.Violations)),
			nil, schemaErr.Violations)
	}
	var decodeErr *event.DecodeError
	if errors.As(err, &decodeErr) {
		return f.Fail(exitCode, CodeDecode, "invalid event", err, nil)
	}
	return f.Fail(ExitCommandError, CodeInput, "failed to load events", err, nil)
}

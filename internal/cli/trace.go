package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/livestyle/internal/canon"
	"github.com/roach88/livestyle/internal/event"
	"github.com/roach88/livestyle/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	Tab      int
	Type     string // optional - filter to a single event type
}

// TraceEvent is one entry of the trace timeline.
type TraceEvent struct {
	Seq     int64          `json:"seq"`
	Type    event.Kind     `json:"type"`
	Tab     *int           `json:"tab,omitempty"`
	Changed bool           `json:"changed"`
	Digest  string         `json:"digest"`
	Payload map[string]any `json:"payload"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalEvents int                `json:"total_events"`
	Changed     int                `json:"changed"`
	Checkpoints int                `json:"checkpoints"`
	ByType      map[event.Kind]int `json:"by_type"`
	Tabs        []int              `json:"tabs"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	RunID    string       `json:"run_id"`
	Source   string       `json:"source"`
	Timeline []TraceEvent `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the event timeline of a journaled run",
		Long: `Print the journaled events of a run in sequence order with the state
digest after each one. Events that changed the state are marked.

Without --run the latest run is shown.

Examples:
  livestyle trace --db ./livestyle.db
  livestyle trace --db ./livestyle.db --tab 1
  livestyle trace --db ./livestyle.db --type save-resource-patches --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite journal")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "trace a specific run (default: latest)")
	cmd.Flags().IntVar(&opts.Tab, "tab", 0, "only events addressed to this tab")
	cmd.Flags().StringVar(&opts.Type, "type", "", "only events of this type")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	if opts.Type != "" && !slices.Contains(event.Kinds, event.Kind(opts.Type)) {
		return f.Fail(ExitCommandError, CodeInput, fmt.Sprintf("unknown event type %q", opts.Type), nil, nil)
	}

	st, err := openJournal(f, opts.journalPath(opts.Database))
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := selectRuns(ctx, f, st, opts.RunID, false)
	if err != nil {
		return err
	}
	run := runs[0]

	var filter store.EventFilter
	if cmd.Flags().Changed("tab") {
		tab := opts.Tab
		filter.Tab = &tab
	}
	stored, err := st.ReadEvents(ctx, run.ID, filter)
	if err != nil {
		return f.Fail(ExitCommandError, CodeJournal, "failed to read events", err, nil)
	}
	checkpoints, err := st.ReadCheckpoints(ctx, run.ID)
	if err != nil {
		return f.Fail(ExitCommandError, CodeJournal, "failed to read checkpoints", err, nil)
	}

	result := buildTrace(run, stored, opts.Type)
	result.Stats.Checkpoints = len(checkpoints)

	if f.JSON() {
		return f.Success(result)
	}
	outputTraceText(f, result)
	return nil
}

func buildTrace(run store.RunInfo, stored []store.StoredEvent, kind string) TraceResult {
	result := TraceResult{
		RunID:    run.ID,
		Source:   run.Source,
		Timeline: make([]TraceEvent, 0, len(stored)),
		Stats:    TraceStats{ByType: make(map[event.Kind]int)},
	}
	tabs := make(map[int]struct{})
	for _, ev := range stored {
		if kind != "" && string(ev.Type) != kind {
			continue
		}
		result.Timeline = append(result.Timeline, TraceEvent{
			Seq:     ev.Seq,
			Type:    ev.Type,
			Tab:     ev.Tab,
			Changed: ev.Changed,
			Digest:  ev.Digest,
			Payload: ev.Record.Canonical(),
		})
		result.Stats.TotalEvents++
		result.Stats.ByType[ev.Type]++
		if ev.Changed {
			result.Stats.Changed++
		}
		if ev.Tab != nil {
			tabs[*ev.Tab] = struct{}{}
		}
	}
	result.Stats.Tabs = slices.Sorted(maps.Keys(tabs))
	if result.Stats.Tabs == nil {
		result.Stats.Tabs = []int{}
	}
	return result
}

func outputTraceText(f *OutputFormatter, result TraceResult) {
	f.Printf("Run: %s\n", result.RunID)
	if result.Source != "" {
		f.Printf("Source: %s\n", result.Source)
	}
	f.Printf("\n")

	if len(result.Timeline) == 0 {
		f.Printf("No events.\n")
		return
	}

	for _, ev := range result.Timeline {
		mark := " "
		if ev.Changed {
			mark = "*"
		}
		tab := "-"
		if ev.Tab != nil {
			tab = fmt.Sprintf("%d", *ev.Tab)
		}
		f.Printf("%s [%d] tab=%s %s %s\n", mark, ev.Seq, tab, ev.Type, shortDigest(ev.Digest))
		if f.Verbose {
			if data, err := canon.Marshal(ev.Payload); err == nil {
				f.Printf("      %s\n", data)
			}
		}
	}

	f.Printf("\n%d event(s), %d changed the state, %d checkpoint(s)\n",
		result.Stats.TotalEvents, result.Stats.Changed, result.Stats.Checkpoints)
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}

package harness

import (
	"context"
	"fmt"
	"io"

	"pkt.systems/pslog"

	"github.com/roach88/livestyle/internal/engine"
	"github.com/roach88/livestyle/internal/event"
	"github.com/roach88/livestyle/internal/store"
	"github.com/roach88/livestyle/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs scenarios with a deterministic clock and run id.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	clock  *testutil.DeterministicClock
	runIDs *testutil.FixedRunID
	logger pslog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory journal for isolation.
//
// Execution flow:
// 1. Create fresh in-memory journal and engine
// 2. Apply every event, recording one trace entry per step
// 3. Snapshot the final state
// 4. Replay the journal and report any divergence
// 5. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context. The engine logs
// through the context logger when one is set.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	events, err := event.Convert(scenario.Events)
	if err != nil {
		return nil, fmt.Errorf("failed to convert events: %w", err)
	}

	st, err := store.Open(":memory:", store.WithCheckpointEvery(1))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := newHarness(ctx, st, scenario)

	result := NewResult()
	h.apply(ctx, events, result)

	final := h.engine.State()
	result.State = engine.Snapshot(final)
	result.Messages = final.UI.MessageNames()

	if err := h.verifyReplay(ctx, result); err != nil {
		return nil, err
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Debug("scenario finished", "scenario", scenario.Name, "pass", result.Pass, "errors", len(result.Errors))
	return result, nil
}

func newHarness(ctx context.Context, st *store.Store, scenario *Scenario) *Harness {
	logger := pslog.Ctx(ctx)
	if logger == nil {
		logger = pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured, MinLevel: pslog.ErrorLevel})
	}
	clock := testutil.NewDeterministicClock()
	runIDs := testutil.NewFixedRunID(scenario.RunID)
	eng := engine.New(
		engine.WithJournal(st, "scenario:"+scenario.Name),
		engine.WithClock(clock),
		engine.WithRunIDGenerator(runIDs),
		engine.WithLogger(logger),
	)
	return &Harness{
		store:  st,
		engine: eng,
		clock:  clock,
		runIDs: runIDs,
		logger: logger,
	}
}

// apply dispatches the events in order.
func (h *Harness) apply(ctx context.Context, events []event.Event, result *Result) {
	for i, ev := range events {
		step := h.engine.Dispatch(ctx, ev)
		result.AddTrace(TraceEvent{
			Index:   i,
			Seq:     step.Seq,
			Type:    string(step.Kind),
			Changed: step.Changed,
			Digest:  step.Digest,
		})
	}
}

// verifyReplay replays the journaled run and turns every mismatch into a
// result error.
func (h *Harness) verifyReplay(ctx context.Context, result *Result) error {
	report, err := h.store.ReplayRun(ctx, h.engine.RunID())
	if err != nil {
		return fmt.Errorf("failed to replay journal: %w", err)
	}
	if report.Events != len(result.Trace) {
		result.AddError(fmt.Sprintf("journal holds %d events, applied %d", report.Events, len(result.Trace)))
	}
	for _, m := range report.Mismatches {
		result.AddError(fmt.Sprintf("replay diverged at seq %d: %s want %s got %s", m.Seq, m.Field, m.Want, m.Got))
	}

	// The journaled records must decode back into the events that were
	// applied.
	stored, err := h.store.ReadEvents(ctx, h.engine.RunID(), store.EventFilter{})
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}
	events, err := store.Events(stored)
	if err != nil {
		return fmt.Errorf("failed to decode journal: %w", err)
	}
	_, steps := engine.Replay(nil, events)
	for i, step := range steps {
		if i >= len(result.Trace) {
			break
		}
		if got := result.Trace[i]; got.Seq != step.Seq || got.Digest != step.Digest {
			result.AddError(fmt.Sprintf("journal round trip diverged at seq %d", got.Seq))
		}
	}
	return nil
}

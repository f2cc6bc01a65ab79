package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"pkt.systems/pslog"

	"github.com/roach88/livestyle/internal/event"
	"github.com/roach88/livestyle/internal/logx"
)

// Run identifies one dispatcher run in the journal.
type Run struct {
	ID     string
	Source string
}

// Entry is one applied event as handed to the journal.
type Entry struct {
	RunID   string
	Seq     int64
	Record  event.Record
	Changed bool
	Digest  string
	State   *State
}

// Journal records applied events. Implementations must tolerate being
// called from the Run loop only.
type Journal interface {
	BeginRun(ctx context.Context, run Run) error
	Append(ctx context.Context, entry Entry) error
}

// Step is the outcome of applying one event.
type Step struct {
	Seq     int64
	Kind    event.Kind
	Changed bool
	Digest  string
}

// Listener observes state changes. It runs on the applying goroutine and
// must not call back into the engine.
type Listener func(prev, next *State)

// Engine is the single-writer dispatcher around Reduce.
//
// Thread-safety model:
//   - Enqueue, State, OnChange: safe from any goroutine
//   - Run: at most one goroutine
//   - Dispatch: applies under the same lock as Run, so a Dispatch racing
//     the loop lands between two queued events
type Engine struct {
	mu        sync.Mutex
	state     atomic.Pointer[State]
	clock     Sequencer
	queue     *eventQueue
	runID     string
	source    string
	journal   Journal
	begun     bool
	logger    pslog.Logger
	listeners []Listener
}

// Option configures an Engine.
type Option func(*Engine)

// WithJournal records every applied event in j under a run labelled with
// source.
func WithJournal(j Journal, source string) Option {
	return func(e *Engine) {
		e.journal = j
		e.source = source
	}
}

// WithClock replaces the logical clock.
func WithClock(c Sequencer) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithRunIDGenerator sets how the run id is produced. The default is
// UUIDv7Generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Engine) {
		e.runID = g.Generate()
	}
}

// WithLogger fixes the logger. Without it the logger is taken from the
// context passed to Run or Dispatch.
func WithLogger(l pslog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithState starts the engine from s instead of NewState.
func WithState(s *State) Option {
	return func(e *Engine) {
		if s != nil {
			e.state.Store(s)
		}
	}
}

// New creates an engine holding the empty state.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock: NewClock(),
		queue: newEventQueue(),
	}
	e.state.Store(NewState())
	for _, opt := range opts {
		opt(e)
	}
	if e.runID == "" {
		e.runID = UUIDv7Generator{}.Generate()
	}
	return e
}

// RunID returns the id under which this engine journals its events.
func (e *Engine) RunID() string {
	return e.runID
}

// State returns the current tree. The tree must not be modified.
func (e *Engine) State() *State {
	return e.state.Load()
}

// Seq returns the sequence number of the last applied event.
func (e *Engine) Seq() int64 {
	return e.clock.Current()
}

// OnChange registers a listener called with (prev, next) after every event
// that changed the tree.
func (e *Engine) OnChange(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// Enqueue submits ev to the Run loop. It returns false after Stop.
func (e *Engine) Enqueue(ev event.Event) bool {
	return e.queue.Enqueue(ev)
}

// Pending returns the number of events waiting for the Run loop.
func (e *Engine) Pending() int {
	return e.queue.Len()
}

// Dispatch applies ev immediately and returns its step.
func (e *Engine) Dispatch(ctx context.Context, ev event.Event) Step {
	return e.apply(ctx, ev)
}

// Run applies queued events in arrival order until ctx is cancelled or
// Stop is called and the queue drained.
//
// Journal failures are logged and the event still counts as applied;
// retrying would make the journal diverge from the in-memory run.
func (e *Engine) Run(ctx context.Context) error {
	log := logx.WithRun(e.log(ctx), e.runID)
	log.Info("engine starting", "seq", e.clock.Current())

	for {
		if ev, ok := e.queue.TryDequeue(); ok {
			e.apply(ctx, ev)
			continue
		}

		select {
		case <-ctx.Done():
			log.Info("engine stopping: context cancelled", "seq", e.clock.Current())
			e.queue.Close()
			return ctx.Err()
		case <-e.queue.Wait():
			if e.queue.Len() == 0 && e.queue.isClosed() {
				log.Info("engine stopping: queue closed", "seq", e.clock.Current())
				return nil
			}
		}
	}
}

// Stop closes the queue. Run returns once the queued events are applied.
func (e *Engine) Stop() {
	e.queue.Close()
}

func (e *Engine) log(ctx context.Context) pslog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return pslog.Ctx(ctx)
}

func (e *Engine) apply(ctx context.Context, ev event.Event) Step {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.state.Load()
	next := Reduce(prev, ev)
	changed := next != prev
	if changed {
		e.state.Store(next)
	}
	step := Step{
		Seq:     e.clock.Next(),
		Kind:    ev.Kind(),
		Changed: changed,
		Digest:  Digest(next),
	}

	tab, hasTab := event.TabOf(ev)
	log := logx.WithTab(logx.WithRun(e.log(ctx), e.runID), tab, hasTab)
	log.Debug("event applied", "seq", step.Seq, "type", string(step.Kind), "changed", changed)

	if e.journal != nil {
		e.record(ctx, log, ev, step, next)
	}
	if changed {
		for _, l := range e.listeners {
			l(prev, next)
		}
	}
	return step
}

func (e *Engine) record(ctx context.Context, log pslog.Logger, ev event.Event, step Step, state *State) {
	if !e.begun {
		e.begun = true
		if err := e.journal.BeginRun(ctx, Run{ID: e.runID, Source: e.source}); err != nil {
			log.Error("journal begin run failed", "err", err)
		}
	}
	err := e.journal.Append(ctx, Entry{
		RunID:   e.runID,
		Seq:     step.Seq,
		Record:  event.FromEvent(ev),
		Changed: step.Changed,
		Digest:  step.Digest,
		State:   state,
	})
	if err != nil {
		log.Error("journal append failed", "seq", step.Seq, "type", string(step.Kind), "err", err)
	}
}

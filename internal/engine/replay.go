package engine

import "github.com/roach88/livestyle/internal/event"

// Replay applies events to start in order without a dispatcher and returns
// the final tree with one step per event, numbered from 1. Feeding the
// events decoded from a journaled run reproduces its digests exactly.
func Replay(start *State, events []event.Event) (*State, []Step) {
	if start == nil {
		start = NewState()
	}
	clock := NewClock()
	state := start
	steps := make([]Step, 0, len(events))
	for _, ev := range events {
		next := Reduce(state, ev)
		steps = append(steps, Step{
			Seq:     clock.Next(),
			Kind:    ev.Kind(),
			Changed: next != state,
			Digest:  Digest(next),
		})
		state = next
	}
	return state, steps
}

// Package engine applies events to the LiveStyle sync state.
//
// Reduce is the whole of the state logic: a pure function from the current
// state tree and one event to the next tree. A tree is never mutated; an
// event that changes nothing returns the very same *State, and a change
// shares every untouched branch with the previous tree, so readers can skip
// work with a pointer comparison.
//
// Engine wraps Reduce in a single-writer loop. Events are enqueued from any
// goroutine and applied one at a time in arrival order, each stamped with a
// sequence number from a logical clock. Wall-clock time never takes part in
// ordering, so a journaled run replays to the same digests.
package engine

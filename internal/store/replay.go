package store

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/roach88/livestyle/internal/engine"
	"github.com/roach88/livestyle/internal/event"
)

// Mismatch is a difference between a journaled run and its replay.
type Mismatch struct {
	Seq   int64  `json:"seq"`
	Field string `json:"field"` // "digest", "changed", "checkpoint" or "decode"
	Want  string `json:"want"`
	Got   string `json:"got"`
}

// ReplayReport is the outcome of ReplayRun.
type ReplayReport struct {
	RunID       string     `json:"run_id"`
	Events      int        `json:"events"`
	Checkpoints int        `json:"checkpoints"`
	FinalDigest string     `json:"final_digest"`
	Mismatches  []Mismatch `json:"mismatches,omitempty"`
}

// OK reports whether the replay reproduced the run exactly.
func (r ReplayReport) OK() bool {
	return len(r.Mismatches) == 0
}

// ReplayRun re-applies the events of a run through engine.Reduce from the
// empty state and compares every step with the journal: the digest, the
// changed flag and, where one was written, the checkpoint bytes.
//
// Differences are reported, not returned as errors. An error means the
// run could not be read at all.
func (s *Store) ReplayRun(ctx context.Context, runID string) (ReplayReport, error) {
	stored, err := s.ReadEvents(ctx, runID, EventFilter{})
	if err != nil {
		return ReplayReport{}, fmt.Errorf("replay run: %w", err)
	}
	cps, err := s.ReadCheckpoints(ctx, runID)
	if err != nil {
		return ReplayReport{}, fmt.Errorf("replay run: %w", err)
	}
	checkpoints := make(map[int64]Checkpoint, len(cps))
	for _, cp := range cps {
		checkpoints[cp.Seq] = cp
	}

	report := ReplayReport{RunID: runID, Events: len(stored)}
	state := engine.NewState()
	for _, se := range stored {
		ev, err := se.Record.Event()
		if err != nil {
			report.Mismatches = append(report.Mismatches, Mismatch{Seq: se.Seq, Field: "decode", Want: string(se.Type), Got: err.Error()})
			continue
		}
		next := engine.Reduce(state, ev)
		changed := next != state
		state = next

		digest := engine.Digest(state)
		if digest != se.Digest {
			report.Mismatches = append(report.Mismatches, Mismatch{Seq: se.Seq, Field: "digest", Want: se.Digest, Got: digest})
		}
		if changed != se.Changed {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Seq: se.Seq, Field: "changed",
				Want: strconv.FormatBool(se.Changed), Got: strconv.FormatBool(changed),
			})
		}

		cp, ok := checkpoints[se.Seq]
		if !ok {
			continue
		}
		report.Checkpoints++
		data, err := encodeCheckpoint(state)
		if err != nil {
			return report, fmt.Errorf("replay run: seq %d: %w", se.Seq, err)
		}
		if !bytes.Equal(data, cp.State) {
			report.Mismatches = append(report.Mismatches, Mismatch{Seq: se.Seq, Field: "checkpoint", Want: cp.Digest, Got: digest})
		}
	}
	report.FinalDigest = engine.Digest(state)
	return report, nil
}

// Events converts stored events back into typed events, in order.
func Events(stored []StoredEvent) ([]event.Event, error) {
	records := make([]event.Record, len(stored))
	for i, se := range stored {
		records[i] = se.Record
	}
	return event.Convert(records)
}

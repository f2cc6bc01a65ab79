package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/livestyle/internal/engine"
)

func TestReplayRunMatches(t *testing.T) {
	s := openTestStore(t, WithCheckpointEvery(2))
	e := dispatchAll(t, s, "run-1", sampleEvents())

	report, err := s.ReplayRun(t.Context(), "run-1")
	require.NoError(t, err)
	assert.True(t, report.OK(), "mismatches: %v", report.Mismatches)
	assert.Equal(t, 8, report.Events)
	assert.Equal(t, 4, report.Checkpoints)
	assert.Equal(t, engine.Digest(e.State()), report.FinalDigest)
	assert.Equal(t, report.FinalDigest, lastDigest(t, s, "run-1"))
}

func TestReplayRunDetectsTamperedDigest(t *testing.T) {
	s := openTestStore(t, WithCheckpointEvery(0))
	dispatchAll(t, s, "run-1", sampleEvents())

	_, err := s.db.Exec(`UPDATE events SET digest = 'bogus' WHERE run_id = 'run-1' AND seq = 2`)
	require.NoError(t, err)

	report, err := s.ReplayRun(t.Context(), "run-1")
	require.NoError(t, err)
	require.Len(t, report.Mismatches, 1)
	assert.Equal(t, Mismatch{Seq: 2, Field: "digest", Want: "bogus", Got: report.Mismatches[0].Got}, report.Mismatches[0])
}

func TestReplayRunDetectsTamperedChanged(t *testing.T) {
	s := openTestStore(t, WithCheckpointEvery(0))
	dispatchAll(t, s, "run-1", sampleEvents())

	_, err := s.db.Exec(`UPDATE events SET changed = 1 WHERE run_id = 'run-1' AND seq = 6`)
	require.NoError(t, err)

	report, err := s.ReplayRun(t.Context(), "run-1")
	require.NoError(t, err)
	require.Len(t, report.Mismatches, 1)
	assert.Equal(t, "changed", report.Mismatches[0].Field)
	assert.Equal(t, "true", report.Mismatches[0].Want)
	assert.Equal(t, "false", report.Mismatches[0].Got)
}

func TestReplayRunDetectsTamperedCheckpoint(t *testing.T) {
	s := openTestStore(t, WithCheckpointEvery(4))
	dispatchAll(t, s, "run-1", sampleEvents())

	_, err := s.db.Exec(`UPDATE checkpoints SET state = x'a0' WHERE run_id = 'run-1' AND seq = 4`)
	require.NoError(t, err)

	report, err := s.ReplayRun(t.Context(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checkpoints)
	require.Len(t, report.Mismatches, 1)
	assert.Equal(t, int64(4), report.Mismatches[0].Seq)
	assert.Equal(t, "checkpoint", report.Mismatches[0].Field)
}

func TestReplayRunUnknown(t *testing.T) {
	s := openTestStore(t)
	_, err := s.ReplayRun(t.Context(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func lastDigest(t *testing.T, s *Store, runID string) string {
	t.Helper()
	events, err := s.ReadEvents(t.Context(), runID, EventFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, events)
	return events[len(events)-1].Digest
}

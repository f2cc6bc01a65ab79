package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/livestyle/internal/event"
)

func TestRunsSummary(t *testing.T) {
	s := openTestStore(t)
	dispatchAll(t, s, "first", sampleEvents())
	dispatchAll(t, s, "second", sampleEvents()[:3])

	runs, err := s.Runs(t.Context())
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, RunInfo{ID: "first", Source: "test", Events: 8, LastSeq: 8}, runs[0])
	assert.Equal(t, RunInfo{ID: "second", Source: "test", Events: 3, LastSeq: 3}, runs[1])

	latest, err := s.LatestRun(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "second", latest.ID)
}

func TestRunsEmpty(t *testing.T) {
	s := openTestStore(t)

	runs, err := s.Runs(t.Context())
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = s.LatestRun(t.Context())
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestReadEventsUnknownRun(t *testing.T) {
	s := openTestStore(t)
	_, err := s.ReadEvents(t.Context(), "nope", EventFilter{})
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestReadEventsTabFilter(t *testing.T) {
	s := openTestStore(t)
	dispatchAll(t, s, "run-1", sampleEvents())

	tab := 1
	events, err := s.ReadEvents(t.Context(), "run-1", EventFilter{Tab: &tab})
	require.NoError(t, err)
	require.Len(t, events, 4)
	for _, ev := range events {
		require.NotNil(t, ev.Tab)
		assert.Equal(t, 1, *ev.Tab)
	}
	assert.Equal(t, event.KindSetDevtoolsStylesheets, events[0].Type)
	assert.Equal(t, event.KindSaveResourcePatches, events[3].Type)
}

func TestReadEventsRoundTripRecords(t *testing.T) {
	s := openTestStore(t)
	want := sampleEvents()
	dispatchAll(t, s, "run-1", want)

	stored, err := s.ReadEvents(t.Context(), "run-1", EventFilter{})
	require.NoError(t, err)

	got, err := Events(stored)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

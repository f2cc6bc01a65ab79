package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/livestyle/internal/event"
)

// RunInfo summarises a journaled run.
type RunInfo struct {
	ID      string `json:"id"`
	Source  string `json:"source"`
	Events  int    `json:"events"`
	LastSeq int64  `json:"last_seq"`
}

// StoredEvent is one journaled event.
type StoredEvent struct {
	RunID   string       `json:"run_id"`
	Seq     int64        `json:"seq"`
	ID      string       `json:"id"`
	Type    event.Kind   `json:"type"`
	Tab     *int         `json:"tab,omitempty"`
	Record  event.Record `json:"record"`
	Changed bool         `json:"changed"`
	Digest  string       `json:"digest"`
}

// Checkpoint is a stored state snapshot.
type Checkpoint struct {
	RunID  string
	Seq    int64
	Digest string
	State  []byte // deterministic CBOR
}

// Snapshot decodes the checkpoint state.
func (c Checkpoint) Snapshot() (map[string]any, error) {
	return decodeCheckpoint(c.State)
}

// Runs lists all runs in creation order.
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.source, COUNT(e.seq), COALESCE(MAX(e.seq), 0)
		FROM runs r
		LEFT JOIN events e ON e.run_id = r.id
		GROUP BY r.id
		ORDER BY r.created_seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunInfo{}
	for rows.Next() {
		var info RunInfo
		if err := rows.Scan(&info.ID, &info.Source, &info.Events, &info.LastSeq); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Run returns one run, or ErrRunNotFound.
func (s *Store) Run(ctx context.Context, runID string) (RunInfo, error) {
	var info RunInfo
	err := s.db.QueryRowContext(ctx, `
		SELECT r.id, r.source, COUNT(e.seq), COALESCE(MAX(e.seq), 0)
		FROM runs r
		LEFT JOIN events e ON e.run_id = r.id
		WHERE r.id = ?
		GROUP BY r.id
	`, runID).Scan(&info.ID, &info.Source, &info.Events, &info.LastSeq)
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return RunInfo{}, fmt.Errorf("query run %s: %w", runID, err)
	}
	return info, nil
}

// LatestRun returns the most recently created run, or ErrRunNotFound when
// the journal is empty.
func (s *Store) LatestRun(ctx context.Context) (RunInfo, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM runs ORDER BY created_seq DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, fmt.Errorf("%w: journal is empty", ErrRunNotFound)
	}
	if err != nil {
		return RunInfo{}, fmt.Errorf("query latest run: %w", err)
	}
	return s.Run(ctx, id)
}

// EventFilter narrows ReadEvents.
type EventFilter struct {
	Tab *int // only events addressed to this tab
}

// ReadEvents returns the events of a run ordered by seq.
func (s *Store) ReadEvents(ctx context.Context, runID string, filter EventFilter) ([]StoredEvent, error) {
	if _, err := s.Run(ctx, runID); err != nil {
		return nil, err
	}

	query := `
		SELECT run_id, seq, id, type, tab, payload, changed, digest
		FROM events
		WHERE run_id = ?`
	args := []any{runID}
	if filter.Tab != nil {
		query += ` AND tab = ?`
		args = append(args, *filter.Tab)
	}
	query += ` ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []StoredEvent{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func scanEvent(rows *sql.Rows) (StoredEvent, error) {
	var (
		ev      StoredEvent
		typ     string
		tab     sql.NullInt64
		payload string
	)
	if err := rows.Scan(&ev.RunID, &ev.Seq, &ev.ID, &typ, &tab, &payload, &ev.Changed, &ev.Digest); err != nil {
		return StoredEvent{}, fmt.Errorf("scan event: %w", err)
	}
	ev.Type = event.Kind(typ)
	if tab.Valid {
		n := int(tab.Int64)
		ev.Tab = &n
	}
	record, err := unmarshalPayload(payload)
	if err != nil {
		return StoredEvent{}, fmt.Errorf("event %s/%d: %w", ev.RunID, ev.Seq, err)
	}
	ev.Record = record
	return ev, nil
}

// ReadCheckpoints returns the checkpoints of a run ordered by seq.
func (s *Store) ReadCheckpoints(ctx context.Context, runID string) ([]Checkpoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, digest, state
		FROM checkpoints
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query checkpoints: %w", err)
	}
	defer rows.Close()

	var cps []Checkpoint
	for rows.Next() {
		var cp Checkpoint
		if err := rows.Scan(&cp.RunID, &cp.Seq, &cp.Digest, &cp.State); err != nil {
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		cps = append(cps, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkpoints: %w", err)
	}
	return cps, nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/livestyle/internal/canon"
	"github.com/roach88/livestyle/internal/engine"
)

var _ engine.Journal = (*Store)(nil)

// BeginRun registers a run. Registering the same id again is a no-op.
func (s *Store) BeginRun(ctx context.Context, run engine.Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, source, created_seq)
		VALUES (?, ?, (SELECT COALESCE(MAX(created_seq), 0) + 1 FROM runs))
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.Source)
	if err != nil {
		return fmt.Errorf("begin run %s: %w", run.ID, err)
	}
	return nil
}

// Append stores one applied event and, on checkpoint boundaries, the
// resulting state. Both rows are written in one transaction. Appending the
// same entry twice is a no-op.
func (s *Store) Append(ctx context.Context, entry engine.Entry) error {
	payload, err := marshalPayload(entry.Record)
	if err != nil {
		return fmt.Errorf("append seq %d: %w", entry.Seq, err)
	}

	var tab sql.NullInt64
	if entry.Record.Tab != nil {
		tab = sql.NullInt64{Int64: int64(*entry.Record.Tab), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append seq %d: begin tx: %w", entry.Seq, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO events (run_id, seq, id, type, tab, payload, changed, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		entry.RunID,
		entry.Seq,
		canon.EventID(entry.RunID, entry.Seq, []byte(payload)),
		string(entry.Record.Type),
		tab,
		payload,
		entry.Changed,
		entry.Digest,
	)
	if err != nil {
		return fmt.Errorf("append seq %d: %w", entry.Seq, err)
	}

	if s.checkpointDue(entry.Seq) && entry.State != nil {
		state, err := encodeCheckpoint(entry.State)
		if err != nil {
			return fmt.Errorf("append seq %d: %w", entry.Seq, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO checkpoints (run_id, seq, digest, state)
			VALUES (?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`, entry.RunID, entry.Seq, entry.Digest, state)
		if err != nil {
			return fmt.Errorf("append seq %d: checkpoint: %w", entry.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append seq %d: commit: %w", entry.Seq, err)
	}
	return nil
}

func (s *Store) checkpointDue(seq int64) bool {
	return s.checkpointEvery > 0 && seq%s.checkpointEvery == 0
}

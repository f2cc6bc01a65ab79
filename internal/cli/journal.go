package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/livestyle/internal/store"
)

// openJournal opens an existing journal. Commands that read a journal
// must not create an empty one as a side effect of a typo.
func openJournal(f *OutputFormatter, path string, opts ...store.Option) (*store.Store, error) {
	if path == "" {
		return nil, f.Fail(ExitCommandError, CodeInput, "no journal: pass --db or set journal.path", nil, nil)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, f.Fail(ExitCommandError, CodeJournal, fmt.Sprintf("journal not found: %s", path), err, nil)
	}
	st, err := store.Open(path, opts...)
	if err != nil {
		return nil, f.Fail(ExitCommandError, CodeJournal, "failed to open journal", err, nil)
	}
	return st, nil
}

// selectRuns resolves the runs a command operates on: the named run, or
// every run when all is set, or the latest run.
func selectRuns(ctx context.Context, f *OutputFormatter, st *store.Store, runID string, all bool) ([]store.RunInfo, error) {
	switch {
	case runID != "":
		run, err := st.Run(ctx, runID)
		if err != nil {
			return nil, failRun(f, runID, err)
		}
		return []store.RunInfo{run}, nil
	case all:
		runs, err := st.Runs(ctx)
		if err != nil {
			return nil, f.Fail(ExitCommandError, CodeJournal, "failed to list runs", err, nil)
		}
		return runs, nil
	default:
		run, err := st.LatestRun(ctx)
		if err != nil {
			return nil, failRun(f, "", err)
		}
		return []store.RunInfo{run}, nil
	}
}

func failRun(f *OutputFormatter, runID string, err error) error {
	if errors.Is(err, store.ErrRunNotFound) {
		if runID == "" {
			return f.Fail(ExitCommandError, CodeRunNotFound, "journal has no runs", nil, nil)
		}
		return f.Fail(ExitCommandError, CodeRunNotFound, fmt.Sprintf("run not found: %s", runID), nil, nil)
	}
	return f.Fail(ExitCommandError, CodeJournal, "failed to read run", err, nil)
}

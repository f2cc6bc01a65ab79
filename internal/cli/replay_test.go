package cli

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayLatestRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "journal.db")
	runID := journaledRun(t, db)

	stdout, _, err := execute(t, "replay", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, markOK+" "+runID+": 7 event(s)")
	assert.Contains(t, stdout, "All 1 run(s) deterministic")
}

func TestReplayJSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "journal.db")
	runID := journaledRun(t, db)

	resp, data, err := executeJSON(t, "replay", "--db", db, "--run", runID)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, true, data["all_deterministic"])
	assert.EqualValues(t, 1, data["total_runs"])

	runs, ok := data["runs"].([]any)
	require.True(t, ok)
	require.Len(t, runs, 1)
	report := runs[0].(map[string]any)
	assert.Equal(t, runID, report["run_id"])
	assert.EqualValues(t, 7, report["events"])
}

func TestReplayAllRuns(t *testing.T) {
	db := filepath.Join(t.TempDir(), "journal.db")
	journaledRun(t, db)
	journaledRun(t, db)

	_, data, err := executeJSON(t, "replay", "--db", db, "--all")
	require.NoError(t, err)
	assert.EqualValues(t, 2, data["total_runs"])
}

func TestReplayDetectsTamperedDigest(t *testing.T) {
	db := filepath.Join(t.TempDir(), "journal.db")
	runID := journaledRun(t, db)

	raw, err := sql.Open("sqlite3", db)
	require.NoError(t, err)
	_, err = raw.Exec(`UPDATE events SET digest = 'bogus' WHERE run_id = ? AND seq = 3`, runID)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	stdout, _, err := execute(t, "replay", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsReported(err))
	assert.Contains(t, stdout, markFail)
	assert.Contains(t, stdout, "seq 3 digest: want bogus")
	assert.Contains(t, stdout, "Determinism verification failed")
}

func TestReplayDetectsTamperedDigestJSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "journal.db")
	runID := journaledRun(t, db)

	raw, err := sql.Open("sqlite3", db)
	require.NoError(t, err)
	_, err = raw.Exec(`UPDATE events SET digest = 'bogus' WHERE run_id = ? AND seq = 1`, runID)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	resp, _, err := executeJSON(t, "replay", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeDeterminism, resp.Error.Code)
}

func TestReplayUnknownRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "journal.db")
	journaledRun(t, db)

	resp, _, err := executeJSON(t, "replay", "--db", db, "--run", "no-such-run")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeRunNotFound, resp.Error.Code)
}

func TestReplayMissingJournal(t *testing.T) {
	db := filepath.Join(t.TempDir(), "absent.db")

	_, _, err := execute(t, "replay", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, statErr := os.Stat(db)
	assert.True(t, os.IsNotExist(statErr), "replay must not create the journal")
}

func TestReplayWithoutJournal(t *testing.T) {
	resp, _, err := executeJSON(t, "replay")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInput, resp.Error.Code)
}

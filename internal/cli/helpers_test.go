package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const demoEvents = "../../testdata/events/demo.yaml"

// execute runs the root command with args and an empty config home.
func execute(t *testing.T, args ...string) (stdout string, stderr string, err error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// executeJSON runs the root command with --format json and decodes the
// response.
func executeJSON(t *testing.T, args ...string) (CLIResponse, map[string]any, error) {
	t.Helper()
	stdout, _, err := execute(t, append([]string{"--format", "json"}, args...)...)

	var raw struct {
		Status string         `json:"status"`
		Data   map[string]any `json:"data"`
		Error  *CLIError      `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &raw), "stdout: %s", stdout)
	return CLIResponse{Status: raw.Status, Error: raw.Error}, raw.Data, err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// journaledRun applies the demo events into db and returns the run id.
func journaledRun(t *testing.T, db string) string {
	t.Helper()
	resp, data, err := executeJSON(t, "run", demoEvents, "--db", db)
	require.NoError(t, err)
	require.Equal(t, "ok", resp.Status)
	runID, ok := data["run_id"].(string)
	require.True(t, ok)
	return runID
}

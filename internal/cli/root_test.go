package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "livestyle", cmd.Use)
	assert.Contains(t, cmd.Long, "event documents")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"run", "validate", "replay", "test", "trace", "config"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestJournalFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"run", "replay", "trace"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		dbFlag := sub.Flags().Lookup("db")
		require.NotNil(t, dbFlag, name)
		assert.Equal(t, "", dbFlag.DefValue)
	}
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "--format", "xml", "validate", demoEvents)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestConfigFileFormat(t *testing.T) {
	cfg := writeFile(t, "config.yaml", "config_version: 1\noutput:\n  format: json\n")

	stdout, _, err := execute(t, "--config", cfg, "validate", demoEvents)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"status": "ok"`)
}

func TestFormatFlagOverridesConfig(t *testing.T) {
	cfg := writeFile(t, "config.yaml", "config_version: 1\noutput:\n  format: json\n")

	stdout, _, err := execute(t, "--config", cfg, "--format", "text", "validate", demoEvents)
	require.NoError(t, err)
	assert.Contains(t, stdout, markOK)
	assert.NotContains(t, stdout, `"status"`)
}

func TestConfigJournalPath(t *testing.T) {
	db := filepath.Join(t.TempDir(), "journal.db")
	cfg := writeFile(t, "config.yaml", "config_version: 1\njournal:\n  path: "+db+"\n")

	_, _, err := execute(t, "--config", cfg, "run", demoEvents)
	require.NoError(t, err)
	_, err = os.Stat(db)
	require.NoError(t, err)

	stdout, _, err := execute(t, "--config", cfg, "replay")
	require.NoError(t, err)
	assert.Contains(t, stdout, "All 1 run(s) deterministic")
}

func TestMissingConfigFile(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "validate", demoEvents)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestVerboseLogsToStderr(t *testing.T) {
	stdout, stderr, err := execute(t, "-v", "run", demoEvents)
	require.NoError(t, err)
	assert.Contains(t, stderr, "events loaded")
	assert.NotContains(t, stdout, "events loaded")
}

package cli

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "daypool", cmd.Use)
	assert.Contains(t, cmd.Long, "deterministic")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"today", "user", "migrate", "pools", "serve-retry"}

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

	require.NotNil(t, cmd.PersistentFlags().Lookup("db"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("pools"))
}

func TestTodayCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	todayCmd, _, err := cmd.Find([]string{"today"})
	require.NoError(t, err)

	userFlag := todayCmd.Flags().Lookup("user")
	require.NotNil(t, userFlag)
	assert.Equal(t, "u", userFlag.Shorthand)
}

func TestMigrateSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"submit", "skip", "status"} {
		subCmd, _, err := cmd.Find([]string{"migrate", name})
		require.NoError(t, err)
		assert.Equal(t, name, subCmd.Name())
	}

	submitCmd, _, err := cmd.Find([]string{"migrate", "submit"})
	require.NoError(t, err)
	require.NotNil(t, submitCmd.Flags().Lookup("month"))
	require.NotNil(t, submitCmd.Flags().Lookup("day"))
}

func TestUserSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"create", "show", "block", "unblock", "set-tz"} {
		subCmd, _, err := cmd.Find([]string{"user", name})
		require.NoError(t, err)
		assert.Equal(t, name, subCmd.Name())
	}
}

func TestInvalidFormatRejected(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--format", "xml", "pools", "list", "nowhere"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		level   string
		want    slog.Level
	}{
		{"verbose wins", true, "error", slog.LevelDebug},
		{"debug", false, "debug", slog.LevelDebug},
		{"info", false, "info", slog.LevelInfo},
		{"warn", false, "warn", slog.LevelWarn},
		{"error", false, "error", slog.LevelError},
		{"unknown falls back to info", false, "chatty", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, levelFor(tt.verbose, tt.level))
		})
	}
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.False(t, isValidFormat("yaml"))
	assert.False(t, isValidFormat(""))
}

package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeRetryRejectsBadSpec(t *testing.T) {
	db, pools := testEnv(t)
	t.Setenv("DAYPOOL_POOLS", pools)
	t.Setenv("DAYPOOL_RETRY_SPEC", "not a cron spec")

	_, err := execute(t, "--db", db, "serve-retry")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid retry spec")
}

func TestServeRetryStopsOnContextDone(t *testing.T) {
	db, pools := testEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewRootCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--db", db, "--pools", pools, "serve-retry"})
	require.NoError(t, cmd.ExecuteContext(ctx))
}

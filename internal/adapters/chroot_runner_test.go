package adapters

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkgfilehash/internal/testutil"
	"pkgfilehash/internal/types"
)

// shellRunner replaces chroot with a host shell script so the runner's
// outcome handling can be tested without privileges.
func shellRunner(t *testing.T, timeout time.Duration, script string) ChrootRunnerAdapter {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	return ChrootRunnerAdapter{
		Timeout: timeout,
		Command: func(ctx context.Context, _ string, _ []string) *exec.Cmd {
			return exec.CommandContext(ctx, "sh", "-c", script)
		},
	}
}

func TestChrootRunnerOK(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "usr/bin/rpm", "")
	runner := shellRunner(t, 5*time.Second, "printf 'bash\\n'")

	result := runner.Run(context.Background(), root, "/usr/bin/rpm", "-qa")
	require.True(t, result.OK(), "unexpected result: %+v", result)
	assert.Equal(t, "bash\n", string(result.Output))
	assert.NoError(t, result.Err)
}

func TestChrootRunnerBinaryMissing(t *testing.T) {
	runner := shellRunner(t, time.Second, "true")
	result := runner.Run(context.Background(), t.TempDir(), "/usr/bin/rpm", "-qa")
	assert.Equal(t, types.RunReasonBinaryMissing, result.Reason)
	assert.Error(t, result.Err)
}

func TestChrootRunnerExitStatus(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "usr/bin/rpm", "")
	runner := shellRunner(t, 5*time.Second, "echo 'rpmdb open failed' >&2; exit 3")

	result := runner.Run(context.Background(), root, "/usr/bin/rpm", "-qa")
	assert.Equal(t, types.RunReasonExitStatus, result.Reason)
	assert.Equal(t, 3, result.ExitCode)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "rpmdb open failed")
}

func TestChrootRunnerTimeout(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "usr/bin/rpm", "")
	runner := shellRunner(t, 100*time.Millisecond, "sleep 10")

	start := time.Now()
	result := runner.Run(context.Background(), root, "/usr/bin/rpm", "-qa")
	assert.Equal(t, types.RunReasonTimeout, result.Reason)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestChrootRunnerNoCommand(t *testing.T) {
	result := NewChrootRunnerAdapter(time.Second).Run(context.Background(), t.TempDir())
	assert.Equal(t, types.RunReasonExecError, result.Reason)
}

package adapters

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"

	"pkgfilehash/internal/ports"
	"pkgfilehash/internal/shared"
	"pkgfilehash/internal/types"
)

const DefaultProcessTimeout = 30 * time.Second

// ChrootRunnerAdapter runs a binary of the target filesystem through
// chroot(8). Running it requires CAP_SYS_CHROOT; without it the call fails
// with RunReasonExitStatus and the caller degrades to empty results.
type ChrootRunnerAdapter struct {
	Timeout time.Duration
	// Command builds the process for argv inside root. Nil means chroot.
	Command func(ctx context.Context, root string, argv []string) *exec.Cmd
}

func NewChrootRunnerAdapter(timeout time.Duration) ChrootRunnerAdapter {
	return ChrootRunnerAdapter{Timeout: timeout}
}

func (a ChrootRunnerAdapter) Run(ctx context.Context, root string, argv ...string) types.RunResult {
	if len(argv) == 0 {
		return types.RunResult{Reason: types.RunReasonExecError, Err: errors.New("no command given")}
	}
	if !shared.Exists(shared.RootJoin(root, argv[0])) {
		return types.RunResult{
			Reason: types.RunReasonBinaryMissing,
			Err:    errors.New(argv[0] + " not present in target filesystem"),
		}
	}
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultProcessTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	build := a.Command
	if build == nil {
		build = chrootCommand
	}
	cmd := build(runCtx, root, argv)
	cmd.WaitDelay = time.Second
	log.Ctx(ctx).Debug().Str("command", cmd.String()).Msg("running isolated command")

	output, err := cmd.Output()
	if err == nil {
		return types.RunResult{Output: output, Reason: types.RunReasonOK}
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return types.RunResult{
			Output:   output,
			ExitCode: -1,
			Reason:   types.RunReasonTimeout,
			Err:      errors.New("timed out after " + timeout.String()),
		}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return types.RunResult{
			Output:   output,
			ExitCode: exitErr.ExitCode(),
			Reason:   types.RunReasonExitStatus,
			Err:      shared.CommandError(exitErr.Stderr, err),
		}
	}
	return types.RunResult{Output: output, ExitCode: -1, Reason: types.RunReasonExecError, Err: err}
}

func chrootCommand(ctx context.Context, root string, argv []string) *exec.Cmd {
	args := append([]string{root}, argv...)
	return exec.CommandContext(ctx, "chroot", args...)
}

var _ ports.IsolatedRunnerPort = ChrootRunnerAdapter{}

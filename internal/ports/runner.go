package ports

import (
	"context"

	"pkgfilehash/internal/types"
)

// IsolatedRunnerPort executes a binary of the target filesystem with that
// filesystem as its root.
type IsolatedRunnerPort interface {
	Run(ctx context.Context, root string, argv ...string) types.RunResult
}

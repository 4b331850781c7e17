package ports

import (
	"context"

	"pkgfilehash/internal/types"
)

// ContentHasherPort digests the file at rel inside root. It never fails;
// problems are reported through HashResult.FileType.
type ContentHasherPort interface {
	Hash(ctx context.Context, root string, rel string) types.HashResult
}

type FileTypePort interface {
	Classify(path string) string
}

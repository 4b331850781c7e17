package ports

import (
	"context"

	"pkgfilehash/internal/types"
)

// PackageSourcePort enumerates the packages of one packaging ecosystem and
// the files they own.
//
// Both methods treat per-package problems as recoverable: they return what
// they could read together with a (possibly combined) error describing what
// was skipped. Callers must not discard the records when err is non-nil.
type PackageSourcePort interface {
	Ecosystem() types.Ecosystem

	// ListPackages returns the sorted, de-duplicated package identifiers.
	ListPackages(ctx context.Context, root string) ([]string, error)

	// ResolveFiles returns packages in iteration order with the
	// root-relative paths they own that currently exist under root.
	ResolveFiles(ctx context.Context, root string) ([]types.PackageRecord, error)
}

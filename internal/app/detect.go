package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"pkgfilehash/internal/core"
)

// Detect reports the ecosystem of a root filesystem and, on request, the
// package identifiers its package manager knows about.
func (s Service) Detect(ctx context.Context, req DetectRequest) (DetectResult, error) {
	root := strings.TrimSpace(req.RootFS)
	if root == "" {
		return DetectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("root filesystem path is required")
	}
	mode, err := normalizeRPMMode(req.RPMMode)
	if err != nil {
		return DetectResult{}, err
	}
	builder := s.builder(ScanOptions{RootFS: root, RPMMode: mode, RPMTimeout: req.RPMTimeout})
	if !req.ListPackages {
		if err := core.CheckRoot(root); err != nil {
			return DetectResult{}, err
		}
		return DetectResult{Ecosystem: builder.Detector.Detect(root)}, nil
	}
	ecosystem, names, err := builder.EnumeratePackages(ctx, root)
	if err != nil {
		if names == nil {
			return DetectResult{}, err
		}
		log.Ctx(ctx).Warn().Err(err).Msg("package enumeration incomplete")
	}
	return DetectResult{Ecosystem: ecosystem, Packages: names}, nil
}

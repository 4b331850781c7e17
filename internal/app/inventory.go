package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"pkgfilehash/internal/core"
	"pkgfilehash/internal/types"
)

func (s Service) Inventory(ctx context.Context, req InventoryRequest) (InventoryResult, error) {
	format, err := normalizeFormat(req.Format)
	if err != nil {
		return InventoryResult{}, err
	}
	built, err := s.scan(ctx, req.ScanOptions)
	if err != nil {
		return InventoryResult{}, err
	}
	if err := s.Writer.WriteInventory(strings.TrimSpace(req.Output), format, built.Inventory); err != nil {
		return InventoryResult{}, err
	}
	return InventoryResult{
		Ecosystem: built.Inventory.Ecosystem,
		Packages:  len(built.Inventory.Packages),
		Records:   len(built.Inventory.Records),
		Warnings:  built.Warnings,
	}, nil
}

func (s Service) scan(ctx context.Context, opts ScanOptions) (core.BuildResult, error) {
	opts.RootFS = strings.TrimSpace(opts.RootFS)
	if opts.RootFS == "" {
		return core.BuildResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("root filesystem path is required")
	}
	mode, err := normalizeRPMMode(opts.RPMMode)
	if err != nil {
		return core.BuildResult{}, err
	}
	opts.RPMMode = mode
	if opts.Workers < 0 || opts.ChunkSize < 0 {
		return core.BuildResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("workers and chunk size must not be negative")
	}
	result, err := s.builder(opts).Build(ctx, opts.RootFS)
	if err != nil {
		return core.BuildResult{}, err
	}
	if result.Warnings != nil {
		log.Ctx(ctx).Warn().Err(result.Warnings).Msg("inventory built with warnings")
	}
	return result, nil
}

func normalizeFormat(format types.OutputFormat) (types.OutputFormat, error) {
	value := types.OutputFormat(strings.ToLower(strings.TrimSpace(string(format))))
	switch value {
	case "":
		return types.OutputFormatJSON, nil
	case types.OutputFormatJSON, types.OutputFormatYAML, types.OutputFormatSPDX:
		return value, nil
	default:
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported output format: " + string(format))
	}
}

func normalizeRPMMode(mode types.RPMMode) (types.RPMMode, error) {
	value := types.RPMMode(strings.ToLower(strings.TrimSpace(string(mode))))
	switch value {
	case "":
		return types.RPMModeAuto, nil
	case types.RPMModeAuto, types.RPMModeNative, types.RPMModeChroot:
		return value, nil
	default:
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported rpm mode: " + string(mode))
	}
}

package app

import (
	"context"
	"strings"

	"pkgfilehash/internal/core"
)

func (s Service) Packages(ctx context.Context, req PackagesRequest) (PackagesResult, error) {
	built, err := s.scan(ctx, req.ScanOptions)
	if err != nil {
		return PackagesResult{}, err
	}
	summaries := core.SummarizePackages(built.Inventory)
	if err := s.Writer.WriteJSON(strings.TrimSpace(req.Output), summaries); err != nil {
		return PackagesResult{}, err
	}
	return PackagesResult{Ecosystem: built.Inventory.Ecosystem, Packages: summaries}, nil
}

func (s Service) Shared(ctx context.Context, req SharedRequest) (SharedResult, error) {
	built, err := s.scan(ctx, req.ScanOptions)
	if err != nil {
		return SharedResult{}, err
	}
	files := core.SharedFiles(built.Inventory.Records)
	if err := s.Writer.WriteJSON(strings.TrimSpace(req.Output), files); err != nil {
		return SharedResult{}, err
	}
	return SharedResult{Ecosystem: built.Inventory.Ecosystem, Files: files}, nil
}

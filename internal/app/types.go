package app

import (
	"time"

	"pkgfilehash/internal/types"
)

// ScanOptions are shared by every command that walks a root filesystem.
type ScanOptions struct {
	RootFS     string
	Workers    int
	ChunkSize  int
	Exclude    []string
	Sort       bool
	RPMMode    types.RPMMode
	RPMTimeout time.Duration
}

type InventoryRequest struct {
	ScanOptions
	Output string
	Format types.OutputFormat
}

type InventoryResult struct {
	Ecosystem types.Ecosystem
	Packages  int
	Records   int
	Warnings  error
}

type DetectRequest struct {
	RootFS       string
	ListPackages bool
	RPMMode      types.RPMMode
	RPMTimeout   time.Duration
}

type DetectResult struct {
	Ecosystem types.Ecosystem
	Packages  []string
}

type PackagesRequest struct {
	ScanOptions
	Output string
}

type PackagesResult struct {
	Ecosystem types.Ecosystem
	Packages  []types.PackageSummary
}

type SharedRequest struct {
	ScanOptions
	Output string
}

type SharedResult struct {
	Ecosystem types.Ecosystem
	Files     []types.SharedFile
}

type DedupRequest struct {
	Input  string
	Output string
}

type DedupFile struct {
	Input  string
	Output string
	Groups int
}

type DedupResult struct {
	Files []DedupFile
}

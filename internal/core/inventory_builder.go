package core

import (
	"context"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gobwas/glob"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"pkgfilehash/internal/ports"
	"pkgfilehash/internal/shared"
	"pkgfilehash/internal/types"
)

// InventoryBuilder turns a root filesystem into file hash records:
// detect the ecosystem, resolve package files, hash them, keep what is
// emittable.
type InventoryBuilder struct {
	Detector ports.EcosystemDetectorPort
	Sources  map[types.Ecosystem]ports.PackageSourcePort
	Hasher   ports.ContentHasherPort

	// Workers bounds concurrent hashing. Zero means runtime.NumCPU().
	Workers int
	// Exclude holds globs matched against root-relative paths.
	Exclude []string
	// Sort orders records by package, then file.
	Sort bool
}

type BuildResult struct {
	Inventory types.Inventory
	// Warnings combines the recoverable problems met while resolving
	// package files. Nil when there were none.
	Warnings error
}

func NewInventoryBuilder(detector ports.EcosystemDetectorPort, hasher ports.ContentHasherPort, sources ...ports.PackageSourcePort) InventoryBuilder {
	registry := map[types.Ecosystem]ports.PackageSourcePort{}
	for _, source := range sources {
		registry[source.Ecosystem()] = source
	}
	return InventoryBuilder{
		Detector: detector,
		Sources:  registry,
		Hasher:   hasher,
	}
}

type hashJob struct {
	pkg  string
	file string
}

func (b InventoryBuilder) Build(ctx context.Context, root string) (BuildResult, error) {
	if b.Detector == nil || b.Hasher == nil {
		return BuildResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("inventory builder requires detector and hasher ports")
	}
	if err := CheckRoot(root); err != nil {
		return BuildResult{}, err
	}
	excludes, err := compileExcludes(b.Exclude)
	if err != nil {
		return BuildResult{}, err
	}

	ecosystem := b.Detector.Detect(root)
	inventory := types.Inventory{Root: root, Ecosystem: ecosystem, Records: []types.FileHashRecord{}}
	logger := log.Ctx(ctx).With().Str("root", root).Str("ecosystem", string(ecosystem)).Logger()
	source, ok := b.Sources[ecosystem]
	if !ok {
		logger.Warn().Msg("no supported package manager found, inventory is empty")
		return BuildResult{Inventory: inventory}, nil
	}

	var warnings error
	packages, err := source.ResolveFiles(ctx, root)
	if err != nil {
		if ctx.Err() != nil {
			return BuildResult{}, ctx.Err()
		}
		logger.Warn().Err(err).Msg("package file resolution incomplete")
		warnings = multierr.Append(warnings, err)
	}

	versions := newVersionCache(ecosystem)
	var jobs []hashJob
	for i := range packages {
		pkg := &packages[i]
		if err := versions.validate(pkg.Version); err != nil {
			logger.Debug().Str("package", pkg.Name).Str("version", pkg.Version).Err(err).Msg("unparsable package version")
		}
		kept := pkg.Files[:0]
		for _, file := range pkg.Files {
			if excluded(excludes, file) {
				continue
			}
			kept = append(kept, file)
			jobs = append(jobs, hashJob{pkg: pkg.Name, file: file})
		}
		pkg.Files = kept
	}
	inventory.Packages = packages
	logger.Debug().Int("packages", len(packages)).Int("files", len(jobs)).Msg("package files resolved")

	results, err := b.hashAll(ctx, root, jobs)
	if err != nil {
		return BuildResult{}, err
	}
	for i, job := range jobs {
		result := results[i]
		if !result.Emittable() {
			continue
		}
		inventory.Records = append(inventory.Records, types.FileHashRecord{
			Package:       job.pkg,
			File:          job.file,
			SHA256:        result.SHA256,
			IsSymlink:     result.IsSymlink,
			SymlinkTarget: result.SymlinkTarget,
			FileType:      result.FileType,
		})
	}
	if b.Sort {
		SortRecords(inventory.Records)
	}
	logger.Info().Int("records", len(inventory.Records)).Msg("inventory built")
	return BuildResult{Inventory: inventory, Warnings: warnings}, nil
}

// EnumeratePackages detects the ecosystem of root and lists its packages.
func (b InventoryBuilder) EnumeratePackages(ctx context.Context, root string) (types.Ecosystem, []string, error) {
	if b.Detector == nil {
		return "", nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package enumeration requires a detector port")
	}
	if err := CheckRoot(root); err != nil {
		return "", nil, err
	}
	ecosystem := b.Detector.Detect(root)
	source, ok := b.Sources[ecosystem]
	if !ok {
		log.Ctx(ctx).Warn().Str("root", root).Msg("no supported package manager found")
		return ecosystem, []string{}, nil
	}
	names, err := source.ListPackages(ctx, root)
	if names == nil {
		names = []string{}
	}
	return ecosystem, names, err
}

// hashAll hashes every job with at most Workers in flight. Results are
// stored by job index so the output order does not depend on scheduling.
func (b InventoryBuilder) hashAll(ctx context.Context, root string, jobs []hashJob) ([]types.HashResult, error) {
	results := make([]types.HashResult, len(jobs))
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = b.Hasher.Hash(gctx, root, job.file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SortRecords orders records by package, then file.
func SortRecords(records []types.FileHashRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Package != records[j].Package {
			return records[i].Package < records[j].Package
		}
		return records[i].File < records[j].File
	})
}

// CheckRoot fails unless root names an existing directory.
func CheckRoot(root string) error {
	if strings.TrimSpace(root) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("root filesystem path is required")
	}
	info, err := os.Stat(root)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("root filesystem not found: " + root).
			WithCause(err)
	}
	if !info.IsDir() {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("root filesystem is not a directory: " + root)
	}
	return nil
}

func compileExcludes(patterns []string) ([]glob.Glob, error) {
	var out []glob.Glob
	for _, pattern := range patterns {
		pattern = shared.CleanRel(pattern)
		if pattern == "" {
			continue
		}
		compiled, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid exclude pattern: " + pattern).
				WithCause(err)
		}
		out = append(out, compiled)
	}
	return out, nil
}

func excluded(globs []glob.Glob, rel string) bool {
	for _, g := range globs {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

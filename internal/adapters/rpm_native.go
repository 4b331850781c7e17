package adapters

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	rpmdb "github.com/erikvarga/go-rpmdb/pkg"
	rpmversion "github.com/knqyf263/go-rpm-version"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"

	"pkgfilehash/internal/shared"
	"pkgfilehash/internal/types"

	// SQLite driver needed for rpmdb.sqlite databases.
	_ "modernc.org/sqlite"
)

var (
	RPMDBDirs = []string{
		"var/lib/rpm",
		"usr/lib/sysimage/rpm",
		"usr/share/rpm",
	}

	rpmDBFiles = []string{
		// SQLite (current default)
		"rpmdb.sqlite",
		// NDB
		"Packages.db",
		// Berkeley DB
		"Packages",
	}
)

func findRPMDB(root string) (string, error) {
	for _, dir := range RPMDBDirs {
		for _, name := range rpmDBFiles {
			candidate := shared.RootJoin(root, dir, name)
			info, err := os.Stat(candidate)
			if err == nil && info.Mode().IsRegular() && info.Size() > 0 {
				return candidate, nil
			}
		}
	}
	return "", errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg("no rpm database found")
}

// readNativeRPMDB lists packages straight from the database file. Several
// installed instances of one name (kernels, gpg-pubkey) are merged into a
// single record carrying the highest version.
func readNativeRPMDB(ctx context.Context, root string, dbPath string, timeout time.Duration) ([]types.PackageRecord, error) {
	db, err := rpmdb.Open(dbPath)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to open rpm database").
			WithCause(err)
	}
	defer db.Close()

	listCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	pkgs, err := db.ListPackagesWithContext(listCtx)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to list rpm packages").
			WithCause(err)
	}

	var errs error
	var records []types.PackageRecord
	index := map[string]int{}
	seen := map[string]map[string]struct{}{}
	for _, pkg := range pkgs {
		version := rpmVersionString(pkg.EpochNum(), pkg.Version, pkg.Release)
		idx, ok := index[pkg.Name]
		if !ok {
			records = append(records, types.PackageRecord{
				Name:    pkg.Name,
				Version: version,
				Arch:    pkg.Arch,
				Vendor:  pkg.Vendor,
			})
			idx = len(records) - 1
			index[pkg.Name] = idx
			seen[pkg.Name] = map[string]struct{}{}
		} else if rpmversion.NewVersion(records[idx].Version).LessThan(rpmversion.NewVersion(version)) {
			records[idx].Version = version
			records[idx].Arch = pkg.Arch
		}

		for i, base := range pkg.BaseNames {
			if i >= len(pkg.DirIndexes) {
				errs = multierr.Append(errs, fmt.Errorf("%s: malformed directory index: want %d entries, got %d", pkg.Name, i+1, len(pkg.DirIndexes)))
				break
			}
			dirIdx := int(pkg.DirIndexes[i])
			if dirIdx < 0 || dirIdx >= len(pkg.DirNames) {
				errs = multierr.Append(errs, fmt.Errorf("%s: directory index %d out of range", pkg.Name, dirIdx))
				continue
			}
			rel := shared.CleanRel(path.Join(pkg.DirNames[dirIdx], base))
			if rel == "" {
				continue
			}
			if _, dup := seen[pkg.Name][rel]; dup {
				continue
			}
			if !shared.Exists(shared.RootJoin(root, rel)) {
				continue
			}
			seen[pkg.Name][rel] = struct{}{}
			records[idx].Files = append(records[idx].Files, rel)
		}
	}
	if errs != nil {
		log.Ctx(ctx).Warn().Err(errs).Msg("rpm database contains malformed file entries")
	}
	log.Ctx(ctx).Debug().Int("packages", len(records)).Str("db", dbPath).Msg("rpm database read")
	return records, errs
}

func rpmVersionString(epoch int, version string, release string) string {
	value := version
	if release != "" {
		value += "-" + release
	}
	if epoch > 0 {
		value = fmt.Sprintf("%d:%s", epoch, value)
	}
	return value
}

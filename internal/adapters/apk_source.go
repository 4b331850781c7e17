package adapters

import (
	"bufio"
	"context"
	"os"
	"path"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"pkgfilehash/internal/ports"
	"pkgfilehash/internal/shared"
	"pkgfilehash/internal/types"
)

const ApkInstalledDB = "lib/apk/db/installed"

type ApkSourceAdapter struct{}

func NewApkSourceAdapter() ApkSourceAdapter {
	return ApkSourceAdapter{}
}

func (a ApkSourceAdapter) Ecosystem() types.Ecosystem {
	return types.EcosystemAlpine
}

func (a ApkSourceAdapter) ListPackages(ctx context.Context, root string) ([]string, error) {
	names := map[string]struct{}{}
	err := scanApkDB(root, func(key string, value string) {
		if key == "P" && value != "" {
			names[value] = struct{}{}
		}
	})
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Debug().Int("packages", len(names)).Msg("apk packages listed")
	return shared.SortedKeys(names), nil
}

// ResolveFiles scans the installed database once. "P:" opens a package
// context, "F:" names a directory owned by it and "R:" a file inside the
// most recent "F:" directory. Packages keep first-seen order.
func (a ApkSourceAdapter) ResolveFiles(ctx context.Context, root string) ([]types.PackageRecord, error) {
	var records []types.PackageRecord
	index := map[string]int{}
	seen := map[string]map[string]struct{}{}
	current := -1
	currentDir := ""

	add := func(rel string) {
		if current < 0 || rel == "" {
			return
		}
		name := records[current].Name
		if _, dup := seen[name][rel]; dup {
			return
		}
		if !shared.Exists(shared.RootJoin(root, rel)) {
			return
		}
		seen[name][rel] = struct{}{}
		records[current].Files = append(records[current].Files, rel)
	}

	err := scanApkDB(root, func(key string, value string) {
		switch key {
		case "P":
			currentDir = ""
			if value == "" {
				current = -1
				return
			}
			if idx, ok := index[value]; ok {
				current = idx
				return
			}
			records = append(records, types.PackageRecord{Name: value})
			current = len(records) - 1
			index[value] = current
			seen[value] = map[string]struct{}{}
		case "V":
			if current >= 0 {
				records[current].Version = value
			}
		case "A":
			if current >= 0 {
				records[current].Arch = value
			}
		case "F":
			currentDir = shared.CleanRel(value)
			add(currentDir)
		case "R":
			add(shared.CleanRel(path.Join(currentDir, value)))
		}
	})
	if err != nil {
		return records, err
	}
	if err := ctx.Err(); err != nil {
		return records, err
	}
	return records, nil
}

func scanApkDB(root string, visit func(key string, value string)) error {
	file, err := os.Open(shared.RootJoin(root, ApkInstalledDB))
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("apk installed database not readable").
			WithCause(err)
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, found := strings.Cut(line, ":")
		if !found || len(key) != 1 {
			continue
		}
		visit(key, strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read apk installed database").
			WithCause(err)
	}
	return nil
}

var _ ports.PackageSourcePort = ApkSourceAdapter{}

package adapters

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/textproto"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"

	"pkgfilehash/internal/ports"
	"pkgfilehash/internal/shared"
	"pkgfilehash/internal/types"
)

const (
	DpkgInfoDir    = "var/lib/dpkg/info"
	DpkgStatusFile = "var/lib/dpkg/status"
	dpkgListSuffix = ".list"
)

type DpkgSourceAdapter struct{}

func NewDpkgSourceAdapter() DpkgSourceAdapter {
	return DpkgSourceAdapter{}
}

func (a DpkgSourceAdapter) Ecosystem() types.Ecosystem {
	return types.EcosystemDebian
}

func (a DpkgSourceAdapter) ListPackages(ctx context.Context, root string) ([]string, error) {
	entries, err := os.ReadDir(shared.RootJoin(root, DpkgInfoDir))
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("dpkg info directory not readable").
			WithCause(err)
	}
	names := map[string]struct{}{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), dpkgListSuffix) {
			continue
		}
		names[strings.TrimSuffix(entry.Name(), dpkgListSuffix)] = struct{}{}
	}
	log.Ctx(ctx).Debug().Int("packages", len(names)).Msg("dpkg packages listed")
	return shared.SortedKeys(names), nil
}

func (a DpkgSourceAdapter) ResolveFiles(ctx context.Context, root string) ([]types.PackageRecord, error) {
	names, err := a.ListPackages(ctx, root)
	if err != nil {
		return nil, err
	}
	status, statusErr := readDpkgStatus(root)
	if statusErr != nil {
		log.Ctx(ctx).Debug().Err(statusErr).Msg("dpkg status unavailable, versions left empty")
	}
	var errs error
	records := make([]types.PackageRecord, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return records, multierr.Append(errs, err)
		}
		files, err := a.PackageFiles(root, name)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("package", name).Msg("dpkg file list skipped")
			errs = multierr.Append(errs, err)
		}
		meta := status.lookup(name)
		records = append(records, types.PackageRecord{
			Name:    name,
			Version: meta.Version,
			Arch:    meta.Arch,
			Files:   files,
		})
	}
	return records, errs
}

// PackageFiles reads <name>.list and returns the listed paths that still
// exist under root, in file-list order.
func (a DpkgSourceAdapter) PackageFiles(root string, name string) ([]string, error) {
	file, err := os.Open(shared.RootJoin(root, DpkgInfoDir, name+dpkgListSuffix))
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("dpkg file list not found: " + name).
			WithCause(err)
	}
	defer file.Close()
	var files []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		rel := shared.CleanRel(scanner.Text())
		if rel == "" {
			continue
		}
		if shared.Exists(shared.RootJoin(root, rel)) {
			files = append(files, rel)
		}
	}
	if err := scanner.Err(); err != nil {
		return files, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read dpkg file list: " + name).
			WithCause(err)
	}
	return files, nil
}

type dpkgPackageMeta struct {
	Version string
	Arch    string
}

type dpkgStatus map[string]dpkgPackageMeta

// lookup accepts multi-arch list names such as "libc6:amd64".
func (s dpkgStatus) lookup(name string) dpkgPackageMeta {
	if meta, ok := s[name]; ok {
		return meta
	}
	if base, _, found := strings.Cut(name, ":"); found {
		return s[base]
	}
	return dpkgPackageMeta{}
}

// readDpkgStatus parses the RFC822-style stanzas of the dpkg status file,
// keeping only installed packages.
func readDpkgStatus(root string) (dpkgStatus, error) {
	status := dpkgStatus{}
	file, err := os.Open(shared.RootJoin(root, DpkgStatusFile))
	if err != nil {
		return status, err
	}
	defer file.Close()
	reader := textproto.NewReader(bufio.NewReader(file))
	for {
		hdr, err := reader.ReadMIMEHeader()
		if len(hdr) > 0 && dpkgInstalled(hdr.Get("Status")) {
			meta := dpkgPackageMeta{
				Version: hdr.Get("Version"),
				Arch:    hdr.Get("Architecture"),
			}
			name := hdr.Get("Package")
			status[name] = meta
			if meta.Arch != "" {
				status[name+":"+meta.Arch] = meta
			}
		}
		if errors.Is(err, io.EOF) {
			return status, nil
		}
		if err != nil {
			return status, err
		}
	}
}

func dpkgInstalled(value string) bool {
	if strings.TrimSpace(value) == "" {
		return true
	}
	var ok, installed bool
	for _, field := range strings.Fields(value) {
		switch field {
		case "ok":
			ok = true
		case "installed":
			installed = true
		}
	}
	return ok && installed
}

var _ ports.PackageSourcePort = DpkgSourceAdapter{}

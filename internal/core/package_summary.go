package core

import (
	"sort"
	"strings"

	"github.com/package-url/packageurl-go"

	"pkgfilehash/internal/types"
)

const (
	purlNamespaceDebian = "debian"
	purlNamespaceAlpine = "alpine"
	purlNamespaceRPM    = "rpm"
)

// SummarizePackages lists every package of the inventory with its purl and
// the number of records it owns. Packages appearing more than once keep the
// highest version.
func SummarizePackages(inventory types.Inventory) []types.PackageSummary {
	counts := map[string]int{}
	for _, record := range inventory.Records {
		counts[record.Package]++
	}
	versions := newVersionCache(inventory.Ecosystem)
	byName := map[string]types.PackageRecord{}
	for _, pkg := range inventory.Packages {
		existing, ok := byName[pkg.Name]
		if ok && versions.compare(existing.Version, pkg.Version) >= 0 {
			continue
		}
		byName[pkg.Name] = pkg
	}

	out := make([]types.PackageSummary, 0, len(byName))
	for name, pkg := range byName {
		out = append(out, types.PackageSummary{
			Name:    name,
			Version: pkg.Version,
			Arch:    pkg.Arch,
			PURL:    PackageURL(inventory.Ecosystem, pkg),
			Files:   counts[name],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// PackageURL renders the purl of pkg. dpkg multi-arch identifiers
// ("libc6:amd64") are split into name and arch qualifier.
func PackageURL(ecosystem types.Ecosystem, pkg types.PackageRecord) string {
	name := pkg.Name
	arch := pkg.Arch
	if base, qualifier, found := strings.Cut(name, ":"); found && ecosystem == types.EcosystemDebian {
		name = base
		if arch == "" {
			arch = qualifier
		}
	}
	qualifiers := map[string]string{}
	if arch != "" {
		qualifiers["arch"] = arch
	}

	var purlType, namespace string
	switch ecosystem {
	case types.EcosystemDebian:
		purlType, namespace = packageurl.TypeDebian, purlNamespaceDebian
	case types.EcosystemAlpine:
		purlType, namespace = packageurl.TypeApk, purlNamespaceAlpine
	case types.EcosystemRPM:
		purlType, namespace = packageurl.TypeRPM, purlNamespaceRPM
		if fields := strings.Fields(pkg.Vendor); len(fields) > 0 {
			namespace = strings.ToLower(strings.Trim(fields[0], ",."))
		}
	default:
		purlType = packageurl.TypeGeneric
	}
	purl := packageurl.PackageURL{
		Type:       purlType,
		Namespace:  namespace,
		Name:       name,
		Version:    pkg.Version,
		Qualifiers: packageurl.QualifiersFromMap(qualifiers),
	}
	return purl.ToString()
}

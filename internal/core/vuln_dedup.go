package core

import (
	"github.com/package-url/packageurl-go"

	"pkgfilehash/internal/shared"
	"pkgfilehash/internal/types"
)

type vulnAccumulator struct {
	names     map[string]struct{}
	locations map[string]struct{}
	purls     map[string]struct{}
}

// DedupVulnerabilities groups matches by vulnerability id. Groups keep the
// order in which their id first appears; the names, locations and purls of
// a group are de-duplicated and sorted.
func DedupVulnerabilities(matches []types.VulnMatch) types.DedupReport {
	groups := map[string]*vulnAccumulator{}
	var order []string
	for _, match := range matches {
		acc, ok := groups[match.VulnerabilityID]
		if !ok {
			acc = &vulnAccumulator{
				names:     map[string]struct{}{},
				locations: map[string]struct{}{},
				purls:     map[string]struct{}{},
			}
			groups[match.VulnerabilityID] = acc
			order = append(order, match.VulnerabilityID)
		}
		acc.names[match.ArtifactName] = struct{}{}
		for _, location := range match.Locations {
			acc.locations[location] = struct{}{}
		}
		acc.purls[canonicalPURL(match.PURL)] = struct{}{}
	}

	report := types.DedupReport{Matches: make([]types.VulnerabilityGroup, 0, len(order))}
	for _, id := range order {
		acc := groups[id]
		report.Matches = append(report.Matches, types.VulnerabilityGroup{
			Vulnerability: types.VulnerabilityRef{ID: id},
			Artifact: types.GroupedArtifact{
				Names:     shared.SortedKeys(acc.names),
				Locations: shared.SortedKeys(acc.locations),
				PURLs:     shared.SortedKeys(acc.purls),
			},
		})
	}
	return report
}

// canonicalPURL normalises qualifier order and escaping so that equivalent
// purls collapse. Unparsable values are kept as given.
func canonicalPURL(value string) string {
	if value == "" {
		return value
	}
	parsed, err := packageurl.FromString(value)
	if err != nil {
		return value
	}
	return parsed.ToString()
}

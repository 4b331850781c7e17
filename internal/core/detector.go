package core

import (
	"pkgfilehash/internal/ports"
	"pkgfilehash/internal/shared"
	"pkgfilehash/internal/types"
)

type ecosystemMarker struct {
	ecosystem types.Ecosystem
	paths     []string
}

// ecosystemMarkers is checked in order; the first ecosystem with any
// existing marker wins.
var ecosystemMarkers = []ecosystemMarker{
	{ecosystem: types.EcosystemDebian, paths: []string{"var/lib/dpkg/info"}},
	{ecosystem: types.EcosystemAlpine, paths: []string{"lib/apk/db/installed"}},
	{ecosystem: types.EcosystemRPM, paths: []string{"var/lib/rpm", "usr/lib/sysimage/rpm"}},
}

type EcosystemDetector struct{}

func NewEcosystemDetector() EcosystemDetector {
	return EcosystemDetector{}
}

func (d EcosystemDetector) Detect(root string) types.Ecosystem {
	for _, marker := range ecosystemMarkers {
		for _, rel := range marker.paths {
			if shared.Exists(shared.RootJoin(root, rel)) {
				return marker.ecosystem
			}
		}
	}
	return types.EcosystemUnknown
}

var _ ports.EcosystemDetectorPort = EcosystemDetector{}

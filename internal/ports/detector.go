package ports

import "pkgfilehash/internal/types"

type EcosystemDetectorPort interface {
	Detect(root string) types.Ecosystem
}

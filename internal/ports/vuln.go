package ports

import "pkgfilehash/internal/types"

type VulnReportPort interface {
	ReadMatches(path string) ([]types.VulnMatch, error)
	WriteReport(path string, report types.DedupReport) error
}

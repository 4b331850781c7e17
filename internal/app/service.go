package app

import (
	"pkgfilehash/internal/adapters"
	"pkgfilehash/internal/core"
	"pkgfilehash/internal/ports"
)

type Service struct {
	Detector    ports.EcosystemDetectorPort
	Writer      ports.InventoryWriterPort
	VulnReports ports.VulnReportPort
	FileTypes   ports.FileTypePort
	// Runner overrides the chroot runner used by the rpm fallback.
	Runner ports.IsolatedRunnerPort
}

func NewService() Service {
	return Service{
		Detector:    core.NewEcosystemDetector(),
		Writer:      adapters.NewInventoryWriterAdapter(),
		VulnReports: adapters.NewVulnReportAdapter(),
		FileTypes:   adapters.NewMagicFileTypeAdapter(),
	}
}

// builder wires the package sources and the hasher for one scan.
func (s Service) builder(opts ScanOptions) core.InventoryBuilder {
	hasher := adapters.NewContentHasherAdapter(opts.ChunkSize)
	if s.FileTypes != nil {
		hasher.FileTypes = s.FileTypes
	}
	rpm := adapters.NewRPMSourceAdapter(opts.RPMMode, opts.RPMTimeout)
	if s.Runner != nil {
		rpm.Runner = s.Runner
	}
	detector := s.Detector
	if detector == nil {
		detector = core.NewEcosystemDetector()
	}
	builder := core.NewInventoryBuilder(
		detector,
		hasher,
		adapters.NewDpkgSourceAdapter(),
		adapters.NewApkSourceAdapter(),
		rpm,
	)
	builder.Workers = opts.Workers
	builder.Exclude = opts.Exclude
	builder.Sort = opts.Sort
	return builder
}

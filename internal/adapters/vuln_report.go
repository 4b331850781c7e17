package adapters

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/tidwall/gjson"

	"pkgfilehash/internal/ports"
	"pkgfilehash/internal/types"
)

// VulnReportAdapter reads grype-style match reports and writes grouped
// reports back as JSON indented by four spaces.
type VulnReportAdapter struct{}

func NewVulnReportAdapter() VulnReportAdapter {
	return VulnReportAdapter{}
}

func (a VulnReportAdapter) ReadMatches(path string) ([]types.VulnMatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read vulnerability report").
			WithCause(err)
	}
	if !gjson.ValidBytes(data) {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("vulnerability report is not valid json: " + path)
	}
	matches := gjson.GetBytes(data, "matches")
	if !matches.IsArray() {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("vulnerability report has no matches array: " + path)
	}

	var out []types.VulnMatch
	for _, match := range matches.Array() {
		id := match.Get("vulnerability.id").String()
		if id == "" {
			continue
		}
		entry := types.VulnMatch{
			VulnerabilityID: id,
			ArtifactName:    match.Get("artifact.name").String(),
			PURL:            match.Get("artifact.purl").String(),
		}
		for _, location := range match.Get("artifact.locations.#.path").Array() {
			entry.Locations = append(entry.Locations, location.String())
		}
		out = append(out, entry)
	}
	return out, nil
}

func (a VulnReportAdapter) WriteReport(path string, report types.DedupReport) error {
	if report.Matches == nil {
		report.Matches = []types.VulnerabilityGroup{}
	}
	data, err := json.MarshalIndent(report, "", "    ")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to marshal deduplicated report").
			WithCause(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create report directory").
			WithCause(err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write deduplicated report").
			WithCause(err)
	}
	return nil
}

var _ ports.VulnReportPort = VulnReportAdapter{}

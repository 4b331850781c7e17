package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"pkgfilehash/internal/core"
)

const (
	vulnReportSuffix  = "vulns.json"
	dedupOutputPrefix = "formatted_"
)

// Dedup groups the matches of a vulnerability report by vulnerability id.
// When Input is a directory every "*vulns.json" in it is processed and
// written to Output (default: Input) as "formatted_<name>".
func (s Service) Dedup(req DedupRequest) (DedupResult, error) {
	input := strings.TrimSpace(req.Input)
	if input == "" {
		return DedupResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("input report path is required")
	}
	info, err := os.Stat(input)
	if err != nil {
		return DedupResult{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("input report not found: " + input).
			WithCause(err)
	}
	output := strings.TrimSpace(req.Output)

	if !info.IsDir() {
		if output == "" {
			output = filepath.Join(filepath.Dir(input), dedupOutputPrefix+filepath.Base(input))
		}
		file, err := s.dedupFile(input, output)
		if err != nil {
			return DedupResult{}, err
		}
		return DedupResult{Files: []DedupFile{file}}, nil
	}

	if output == "" {
		output = input
	}
	entries, err := os.ReadDir(input)
	if err != nil {
		return DedupResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to list input directory").
			WithCause(err)
	}
	result := DedupResult{Files: []DedupFile{}}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, vulnReportSuffix) || strings.HasPrefix(name, dedupOutputPrefix) {
			continue
		}
		file, err := s.dedupFile(filepath.Join(input, name), filepath.Join(output, dedupOutputPrefix+name))
		if err != nil {
			return result, err
		}
		result.Files = append(result.Files, file)
	}
	return result, nil
}

func (s Service) dedupFile(input string, output string) (DedupFile, error) {
	matches, err := s.VulnReports.ReadMatches(input)
	if err != nil {
		return DedupFile{}, err
	}
	report := core.DedupVulnerabilities(matches)
	if err := s.VulnReports.WriteReport(output, report); err != nil {
		return DedupFile{}, err
	}
	return DedupFile{Input: input, Output: output, Groups: len(report.Matches)}, nil
}

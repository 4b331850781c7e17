package adapters

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"

	"pkgfilehash/internal/ports"
	"pkgfilehash/internal/shared"
	"pkgfilehash/internal/types"
)

const (
	RPMQueryBinary = "/usr/bin/rpm"
	rpmQueryFormat = "%{NAME}\t%{VERSION}-%{RELEASE}\t%{ARCH}\n"
)

// queryChrootRPM asks the target's own rpm for its package list and then for
// each package's files. A failing package query is logged and skipped.
func queryChrootRPM(ctx context.Context, runner ports.IsolatedRunnerPort, root string) ([]types.PackageRecord, error) {
	listed := runner.Run(ctx, root, RPMQueryBinary, "-qa", "--qf", rpmQueryFormat)
	if !listed.OK() {
		log.Ctx(ctx).Warn().
			Str("reason", string(listed.Reason)).
			Err(listed.Err).
			Msg("rpm package query failed")
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("rpm package query failed: " + string(listed.Reason)).
			WithCause(listed.Err)
	}

	var errs error
	var records []types.PackageRecord
	index := map[string]int{}
	for _, record := range parseRPMQueryList(listed.Output) {
		if err := ctx.Err(); err != nil {
			return records, multierr.Append(errs, err)
		}
		if _, dup := index[record.Name]; dup {
			continue
		}
		owned := runner.Run(ctx, root, RPMQueryBinary, "-ql", record.Name)
		if !owned.OK() {
			log.Ctx(ctx).Warn().
				Str("package", record.Name).
				Str("reason", string(owned.Reason)).
				Err(owned.Err).
				Msg("rpm file query failed")
			errs = multierr.Append(errs, fmt.Errorf("rpm -ql %s: %s: %w", record.Name, owned.Reason, owned.Err))
			continue
		}
		record.Files = existingLines(root, owned.Output)
		index[record.Name] = len(records)
		records = append(records, record)
	}
	return records, errs
}

func parseRPMQueryList(output []byte) []types.PackageRecord {
	var records []types.PackageRecord
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		record := types.PackageRecord{Name: fields[0]}
		if len(fields) > 1 {
			record.Version = fields[1]
		}
		if len(fields) > 2 && fields[2] != "(none)" {
			record.Arch = fields[2]
		}
		records = append(records, record)
	}
	return records
}

func existingLines(root string, output []byte) []string {
	var files []string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		rel := shared.CleanRel(scanner.Text())
		if rel == "" {
			continue
		}
		if shared.Exists(shared.RootJoin(root, rel)) {
			files = append(files, rel)
		}
	}
	return files
}

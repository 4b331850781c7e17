package adapters

import (
	"context"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"

	"pkgfilehash/internal/ports"
	"pkgfilehash/internal/shared"
	"pkgfilehash/internal/types"
)

// RPMSourceAdapter lists rpm packages and their files. Enumeration and file
// resolution share one read of the database.
//
// In auto mode the database is read natively first and the target's own
// rpm binary is only invoked (through Runner) when no readable database is
// found.
type RPMSourceAdapter struct {
	Mode    types.RPMMode
	Timeout time.Duration
	Runner  ports.IsolatedRunnerPort
}

func NewRPMSourceAdapter(mode types.RPMMode, timeout time.Duration) RPMSourceAdapter {
	if mode == "" {
		mode = types.RPMModeAuto
	}
	if timeout <= 0 {
		timeout = DefaultProcessTimeout
	}
	return RPMSourceAdapter{
		Mode:    mode,
		Timeout: timeout,
		Runner:  NewChrootRunnerAdapter(timeout),
	}
}

func (a RPMSourceAdapter) Ecosystem() types.Ecosystem {
	return types.EcosystemRPM
}

func (a RPMSourceAdapter) ListPackages(ctx context.Context, root string) ([]string, error) {
	records, err := a.ResolveFiles(ctx, root)
	names := map[string]struct{}{}
	for _, record := range records {
		names[record.Name] = struct{}{}
	}
	return shared.SortedKeys(names), err
}

func (a RPMSourceAdapter) ResolveFiles(ctx context.Context, root string) ([]types.PackageRecord, error) {
	switch a.Mode {
	case types.RPMModeNative:
		return a.native(ctx, root)
	case types.RPMModeChroot:
		return a.chroot(ctx, root)
	case types.RPMModeAuto, "":
		records, nativeErr := a.native(ctx, root)
		if nativeErr == nil {
			return records, nil
		}
		log.Ctx(ctx).Info().Err(nativeErr).Msg("native rpmdb read failed, falling back to rpm query")
		records, chrootErr := a.chroot(ctx, root)
		if chrootErr != nil {
			return records, multierr.Append(nativeErr, chrootErr)
		}
		return records, nil
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unknown rpm mode: " + string(a.Mode))
	}
}

func (a RPMSourceAdapter) native(ctx context.Context, root string) ([]types.PackageRecord, error) {
	dbPath, err := findRPMDB(root)
	if err != nil {
		return nil, err
	}
	return readNativeRPMDB(ctx, root, dbPath, a.Timeout)
}

func (a RPMSourceAdapter) chroot(ctx context.Context, root string) ([]types.PackageRecord, error) {
	runner := a.Runner
	if runner == nil {
		runner = NewChrootRunnerAdapter(a.Timeout)
	}
	return queryChrootRPM(ctx, runner, root)
}

var _ ports.PackageSourcePort = RPMSourceAdapter{}

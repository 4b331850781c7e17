package cli

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pkgfilehash/internal/app"
)

type reportOptions struct {
	scanOptions
	Output string
}

func newPackagesCommand() *cobra.Command {
	opts := reportOptions{}
	cmd := &cobra.Command{
		Use:   "packages",
		Short: "Summarize installed packages with purls and owned file counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPackages(cmd.Context(), cmd, opts)
		},
	}
	addReportFlags(cmd, &opts)
	return cmd
}

func newSharedCommand() *cobra.Command {
	opts := reportOptions{}
	cmd := &cobra.Command{
		Use:   "shared",
		Short: "List identical files owned by more than one package",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShared(cmd.Context(), cmd, opts)
		},
	}
	addReportFlags(cmd, &opts)
	return cmd
}

func addReportFlags(cmd *cobra.Command, opts *reportOptions) {
	addScanFlags(cmd, &opts.scanOptions)
	cmd.Flags().StringVar(&opts.Output, "output", "", "Output file (default stdout)")
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
}

func runPackages(ctx context.Context, cmd *cobra.Command, opts reportOptions) error {
	service := newAppService()
	result, err := service.Packages(ctx, app.PackagesRequest{
		ScanOptions: resolveScanOptions(cmd, opts.scanOptions),
		Output:      resolveString(cmd, opts.Output, "output", "output"),
	})
	if err != nil {
		return err
	}
	log.Ctx(ctx).Info().
		Str("ecosystem", string(result.Ecosystem)).
		Int("packages", len(result.Packages)).
		Msg("package summary complete")
	return nil
}

func runShared(ctx context.Context, cmd *cobra.Command, opts reportOptions) error {
	service := newAppService()
	result, err := service.Shared(ctx, app.SharedRequest{
		ScanOptions: resolveScanOptions(cmd, opts.scanOptions),
		Output:      resolveString(cmd, opts.Output, "output", "output"),
	})
	if err != nil {
		return err
	}
	log.Ctx(ctx).Info().
		Str("ecosystem", string(result.Ecosystem)).
		Int("shared", len(result.Files)).
		Msg("shared file report complete")
	return nil
}

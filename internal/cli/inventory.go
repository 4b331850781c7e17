package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pkgfilehash/internal/adapters"
	"pkgfilehash/internal/app"
	"pkgfilehash/internal/types"
)

type scanOptions struct {
	RootFS     string
	Workers    int
	ChunkSize  int
	Exclude    []string
	Sort       bool
	RPMMode    string
	RPMTimeout time.Duration
}

type inventoryOptions struct {
	scanOptions
	Output string
	Format string
}

func addScanFlags(cmd *cobra.Command, opts *scanOptions) {
	cmd.Flags().StringVar(&opts.RootFS, "rootfs", "", "Root filesystem directory to inspect")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Concurrent hashing workers (0 = number of CPUs)")
	cmd.Flags().IntVar(&opts.ChunkSize, "chunk-size", adapters.DefaultChunkSize, "Read size used while hashing")
	cmd.Flags().StringSliceVar(&opts.Exclude, "exclude", nil, "Glob of root-relative paths to skip (repeatable)")
	cmd.Flags().BoolVar(&opts.Sort, "sort", false, "Sort records by package and file")
	cmd.Flags().StringVar(&opts.RPMMode, "rpm-mode", string(types.RPMModeAuto), "RPM database access (auto|native|chroot)")
	cmd.Flags().DurationVar(&opts.RPMTimeout, "rpm-timeout", adapters.DefaultProcessTimeout, "Time limit for rpm database reads and queries")
	_ = viper.BindPFlag("rootfs", cmd.Flags().Lookup("rootfs"))
	_ = viper.BindPFlag("workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("chunk_size", cmd.Flags().Lookup("chunk-size"))
	_ = viper.BindPFlag("exclude", cmd.Flags().Lookup("exclude"))
	_ = viper.BindPFlag("sort", cmd.Flags().Lookup("sort"))
	_ = viper.BindPFlag("rpm_mode", cmd.Flags().Lookup("rpm-mode"))
	_ = viper.BindPFlag("rpm_timeout", cmd.Flags().Lookup("rpm-timeout"))
}

func resolveScanOptions(cmd *cobra.Command, opts scanOptions) app.ScanOptions {
	return app.ScanOptions{
		RootFS:     resolveString(cmd, opts.RootFS, "rootfs", "rootfs"),
		Workers:    resolveInt(cmd, opts.Workers, "workers", "workers"),
		ChunkSize:  resolveInt(cmd, opts.ChunkSize, "chunk_size", "chunk-size"),
		Exclude:    resolveStrings(cmd, opts.Exclude, "exclude", "exclude"),
		Sort:       resolveBool(cmd, opts.Sort, "sort", "sort"),
		RPMMode:    types.RPMMode(resolveString(cmd, opts.RPMMode, "rpm_mode", "rpm-mode")),
		RPMTimeout: resolveDuration(cmd, opts.RPMTimeout, "rpm_timeout", "rpm-timeout"),
	}
}

func newInventoryCommand() *cobra.Command {
	opts := inventoryOptions{}
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Hash every file owned by an installed package",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInventory(cmd.Context(), cmd, opts)
		},
	}
	addScanFlags(cmd, &opts.scanOptions)
	cmd.Flags().StringVar(&opts.Output, "output", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&opts.Format, "format", string(types.OutputFormatJSON), "Output format (json|yaml|spdx)")
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("format", cmd.Flags().Lookup("format"))
	return cmd
}

func runInventory(ctx context.Context, cmd *cobra.Command, opts inventoryOptions) error {
	service := newAppService()
	output := resolveString(cmd, opts.Output, "output", "output")
	result, err := service.Inventory(ctx, app.InventoryRequest{
		ScanOptions: resolveScanOptions(cmd, opts.scanOptions),
		Output:      output,
		Format:      types.OutputFormat(resolveString(cmd, opts.Format, "format", "format")),
	})
	if err != nil {
		return err
	}
	log.Ctx(ctx).Info().
		Str("ecosystem", string(result.Ecosystem)).
		Int("packages", result.Packages).
		Int("records", result.Records).
		Msg("inventory complete")
	if output != "" && output != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "inventory written: %s\n", output)
	}
	return nil
}

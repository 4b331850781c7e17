package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pkgfilehash/internal/adapters"
	"pkgfilehash/internal/app"
	"pkgfilehash/internal/types"
)

type detectOptions struct {
	RootFS     string
	List       bool
	RPMMode    string
	RPMTimeout time.Duration
}

func newDetectCommand() *cobra.Command {
	opts := detectOptions{}
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Print the package ecosystem of a root filesystem",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDetect(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.RootFS, "rootfs", "", "Root filesystem directory to inspect")
	cmd.Flags().BoolVar(&opts.List, "list", false, "Also list installed package identifiers")
	cmd.Flags().StringVar(&opts.RPMMode, "rpm-mode", string(types.RPMModeAuto), "RPM database access (auto|native|chroot)")
	cmd.Flags().DurationVar(&opts.RPMTimeout, "rpm-timeout", adapters.DefaultProcessTimeout, "Time limit for rpm database reads and queries")
	_ = viper.BindPFlag("rootfs", cmd.Flags().Lookup("rootfs"))
	_ = viper.BindPFlag("rpm_mode", cmd.Flags().Lookup("rpm-mode"))
	_ = viper.BindPFlag("rpm_timeout", cmd.Flags().Lookup("rpm-timeout"))
	return cmd
}

func runDetect(ctx context.Context, cmd *cobra.Command, opts detectOptions) error {
	service := newAppService()
	result, err := service.Detect(ctx, app.DetectRequest{
		RootFS:       resolveString(cmd, opts.RootFS, "rootfs", "rootfs"),
		ListPackages: opts.List,
		RPMMode:      types.RPMMode(resolveString(cmd, opts.RPMMode, "rpm_mode", "rpm-mode")),
		RPMTimeout:   resolveDuration(cmd, opts.RPMTimeout, "rpm_timeout", "rpm-timeout"),
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, result.Ecosystem)
	for _, name := range result.Packages {
		fmt.Fprintf(out, "  %s\n", name)
	}
	return nil
}

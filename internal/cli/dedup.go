package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkgfilehash/internal/app"
)

type dedupOptions struct {
	Input  string
	Output string
}

func newDedupCommand() *cobra.Command {
	opts := dedupOptions{}
	cmd := &cobra.Command{
		Use:   "dedup",
		Short: "Group vulnerability matches by vulnerability id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDedup(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Input, "input", "", "Vulnerability report file, or a directory of *vulns.json reports")
	cmd.Flags().StringVar(&opts.Output, "output", "", "Output file or directory (default: formatted_<name> next to the input)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runDedup(cmd *cobra.Command, opts dedupOptions) error {
	service := newAppService()
	result, err := service.Dedup(app.DedupRequest{
		Input:  opts.Input,
		Output: opts.Output,
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, file := range result.Files {
		fmt.Fprintf(out, "%s -> %s (%d vulnerabilities)\n", file.Input, file.Output, file.Groups)
	}
	return nil
}

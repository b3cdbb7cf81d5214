package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"automix/internal/deps"
	"automix/internal/preflight"
	"automix/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify external tools and directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var report readinessReport
			tools := report.section("Dependencies")
			for _, status := range preflight.CheckSystemDeps(cmd.Context(), cfg, nil) {
				v, detail := dependencyVerdict(status)
				tools.add(status.Name, v, detail)
			}
			dirs := report.section("Filesystem")
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				v := verdictReady
				if !result.Passed {
					v = verdictMissing
				}
				dirs.add(result.Name, v, result.Detail)
			}

			out := cmd.OutOrStdout()
			report.write(out, shouldColorize(out))
			if n := report.missing(); n > 0 {
				return services.Wrap(services.ErrConfiguration, "check", "", fmt.Sprintf("%d readiness %s missing", n, plural(n, "check", "checks")), nil)
			}
			return nil
		},
	}
}

func dependencyVerdict(status deps.Status) (verdict, string) {
	if status.Available {
		return verdictReady, status.Command
	}
	if status.Optional {
		detail := status.Detail
		if status.Name == "rubberband" {
			detail += "; mix tempo and pitch will fail"
		}
		return verdictDegraded, detail
	}
	return verdictMissing, status.Detail
}

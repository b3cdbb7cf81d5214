package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"automix/internal/preflight"
	"automix/internal/render"
	"automix/internal/services"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var inputs definitionInputs
	var output string
	var yes bool

	cmd := &cobra.Command{
		Use:   "render [definition]",
		Short: "Render every mix of a definition file",
		Long: "Render every mix of a definition file (default ./automix.yml).\n\n" +
			"Clips come from the definition and from --clip files or directories\n" +
			"(./clips by default, when present). Mix outputs are named\n" +
			"\"<name> (<mix>).<format>\" in the output directory unless --output\n" +
			"names a file for a single-mix definition.",
		Args: definitionArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			def, err := inputs.load(cmd, args)
			if err != nil {
				return err
			}

			if failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg)); len(failed) > 0 {
				problems := make([]error, 0, len(failed))
				for _, r := range failed {
					problems = append(problems, fmt.Errorf("%s: %s", r.Name, r.Detail))
				}
				return services.Wrap(services.ErrConfiguration, "render", "preflight", "", errors.Join(problems...))
			}

			outputs, err := render.ResolveOutputs(def, cfg.Paths.OutputDir, output, cfg.Media.OutputFormat)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			engine := newMediaEngine(cfg, logger)
			orch := render.New(engine, render.Options{
				WorkDir:     cfg.Paths.WorkDir,
				Outputs:     outputs,
				Overwrite:   yes || cfg.Render.Overwrite,
				Concurrency: cfg.Workers(),
				Format:      cfg.Media.OutputFormat,
			}, logger)
			prober, closeCache := cachedProber(runCtx, cfg, engine, logger)
			defer closeCache()
			orch.WithProber(prober)

			result, err := orch.Run(runCtx, def)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, o := range result.Outputs {
				fmt.Fprintf(out, "Wrote %s (%s)\n", o.Location, humanize.Bytes(uint64(o.SizeBytes)))
			}
			fmt.Fprintf(out, "Rendered %d %s in %s\n", len(result.Outputs), plural(len(result.Outputs), "mix", "mixes"), result.Elapsed.Round(time.Millisecond))
			return nil
		},
	}

	inputs.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory, or output file for a single-mix definition")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Overwrite existing output files")
	return cmd
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func joinNonEmpty(values []string, sep string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, sep)
}

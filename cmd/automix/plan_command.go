package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"automix/internal/clips"
	"automix/internal/compose"
	"automix/internal/filters"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var inputs definitionInputs

	cmd := &cobra.Command{
		Use:   "plan [definition]",
		Short: "Show how every part will be composed without rendering",
		Args:  definitionArgs,
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

			engine := newMediaEngine(cfg, logger)
			prober, closeCache := cachedProber(cmd.Context(), cfg, engine, logger)
			defer closeCache()

			registry, err := clips.Load(cmd.Context(), def.Clips, prober,
				clips.WithConcurrency(cfg.Workers()),
				clips.WithLogger(logger),
			)
			if err != nil {
				return err
			}
			catalog, err := filters.NewCatalog(def.Filters)
			if err != nil {
				return err
			}
			composer := compose.NewComposer(def.BPM, catalog, registry, logger)

			parts := newPlanTable(
				planColumn{title: "Part"},
				planColumn{title: "Bars", numeric: true},
				planColumn{title: "Clip"},
				planColumn{title: "Original", numeric: true},
				planColumn{title: "Clip Bars", numeric: true},
				planColumn{title: "Offset", numeric: true},
				planColumn{title: "Loop", numeric: true},
				planColumn{title: "Weight", numeric: true},
				planColumn{title: "Filters"},
			).mergeColumns(0)
			partSeconds := make(map[string]float64, len(def.Parts))
			for _, name := range def.PartNames() {
				plan, err := composer.Plan(cmd.Context(), name, def.Parts[name], def.PartBars(name))
				if err != nil {
					return err
				}
				partSeconds[name] = plan.DurationSeconds()
				appendPartRows(parts, plan)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s bpm, bar %s\n\n", def.Name, formatNumber(def.BPM), formatSeconds(composer.BarTime()))
			fmt.Fprintln(out, parts.render())

			mixes := newPlanTable(
				planColumn{title: "Mix"},
				planColumn{title: "Tracks", numeric: true},
				planColumn{title: "Tempo", numeric: true},
				planColumn{title: "Pitch", numeric: true},
				planColumn{title: "Length", numeric: true},
			)
			for _, mix := range def.MixNames() {
				tempo, pitch := def.Ratios(mix)
				var seconds float64
				for _, seg := range def.Mixes[mix].Segments {
					var longest float64
					for _, ref := range seg.Parts {
						longest = max(longest, partSeconds[ref.Name])
					}
					seconds += longest
				}
				mixes.append(
					mix,
					strconv.Itoa(len(def.Mixes[mix].Segments)),
					formatNumber(tempo),
					formatNumber(pitch),
					formatSeconds(seconds/tempo),
				)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, mixes.render())
			return nil
		},
	}

	inputs.bind(cmd)
	return cmd
}

// appendPartRows adds one row per clip. The part name repeats on every row
// and is merged by the table; bars are shown on the first row only.
func appendPartRows(t *planTable, plan compose.PartPlan) {
	bars := formatNumber(plan.BarsPart)
	if len(plan.Clips) == 0 {
		t.append(plan.Name, bars, "(silence)")
		return
	}
	for i, cp := range plan.Clips {
		if i > 0 {
			bars = ""
		}
		if cp.Skipped {
			t.append(plan.Name, bars, cp.Clip+" (missing)", "", "", strconv.Itoa(cp.Offset), "", formatNumber(cp.Weight))
			continue
		}
		names := make([]string, 0, len(cp.Filters))
		for _, f := range cp.Filters {
			names = append(names, f.String())
		}
		t.append(
			plan.Name,
			bars,
			cp.Clip,
			formatNumber(cp.BarsOriginal),
			formatNumber(cp.Bars),
			strconv.Itoa(cp.Offset),
			strconv.Itoa(cp.Loop),
			formatNumber(cp.Weight),
			joinNonEmpty(names, ", "),
		)
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatSeconds(seconds float64) string {
	return time.Duration(seconds * float64(time.Second)).Round(time.Millisecond).String()
}

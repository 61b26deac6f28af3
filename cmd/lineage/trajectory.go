package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/lineage/trajectory"
)

func newTrajectoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trajectory",
		Short: "Compute ancestors and descendants of unit sets",
		Long: `Reads transport maps from --dir and unit sets from --sets (two columns:
set, id), then writes one line per set, day and unit with the accumulated
weight: set<TAB>day<TAB>id<TAB>weight.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			dir, _ := f.GetString("dir")
			prefix, _ := f.GetString("prefix")
			setsPath, _ := f.GetString("sets")
			day, _ := f.GetFloat64("day")
			outPath, _ := f.GetString("out")

			chain, err := loadChain(dir, prefix)
			if err != nil {
				return err
			}
			groups, err := readSets(setsPath)
			if err != nil {
				return err
			}
			var opts []trajectory.Option
			if f.Changed("from") || f.Changed("to") {
				from, to := math.Inf(-1), math.Inf(1)
				if f.Changed("from") {
					from, _ = f.GetFloat64("from")
				}
				if f.Changed("to") {
					to, _ = f.GetFloat64("to")
				}
				if from > to {
					return fmt.Errorf("--from %g is after --to %g", from, to)
				}
				opts = append(opts, trajectory.WithDayRange(from, to))
			}
			results, err := trajectory.PropagateGroups(groups, day, chain, opts...)
			if err != nil {
				return err
			}

			w, done, err := output(outPath, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err = writeTrajectories(w, results); err != nil {
				_ = done()
				return err
			}
			a.logger.Info("trajectories written", zap.Int("sets", len(results)))
			return done()
		},
	}

	f := cmd.Flags()
	f.String("dir", ".", "Directory of transport maps")
	f.String("prefix", "tmaps", "Transport map file prefix")
	f.String("sets", "", "Unit sets: two columns set and id")
	f.Float64("day", 0, "Day the sets are observed at")
	f.Float64("from", 0, "Earliest day to reach (default: first day of the chain)")
	f.Float64("to", 0, "Latest day to reach (default: last day of the chain)")
	f.String("out", "-", "Output file, - for stdout")
	_ = cmd.MarkFlagRequired("sets")
	_ = cmd.MarkFlagRequired("day")

	return cmd
}

// readSets groups a two-column "set<TAB>id" file by set.
func readSets(path string) (map[string][]string, error) {
	_, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	groups := make(map[string][]string)
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		groups[row[0]] = append(groups[row[0]], row[1])
	}

	return groups, nil
}

// writeTrajectories writes results sorted by set, day and id.
func writeTrajectories(w io.Writer, results map[string]*trajectory.Result) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write([]string{"set", "day", "id", "weight"}); err != nil {
		return err
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r := results[name]
		for _, day := range r.Days() {
			weights, _ := r.At(day)
			ids := make([]string, 0, len(weights))
			for id := range weights {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			dayText := strconv.FormatFloat(day, 'g', -1, 64)
			for _, id := range ids {
				rec := []string{name, dayText, id, strconv.FormatFloat(weights[id], 'g', -1, 64)}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
	}
	cw.Flush()

	return cw.Error()
}

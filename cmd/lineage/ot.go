package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/lineage/cluster"
	"github.com/katalvlaran/lineage/config"
	"github.com/katalvlaran/lineage/cost"
	"github.com/katalvlaran/lineage/pipeline"
	"github.com/katalvlaran/lineage/transport"
)

func newOTCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ot",
		Short: "Compute transport maps between consecutive days",
		Long: `Reads a feature matrix (id + one column per feature), day labels (id, day)
and optional growth rates (id, growth), then writes one <prefix>_<t0>_<t1>.tsv
map per consecutive day pair into --out. With --clusters (id, cluster) and
--summary-out it also writes the time-weighted cluster summary of the maps.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			featuresPath, _ := f.GetString("matrix")
			daysPath, _ := f.GetString("cell-days")
			growthPath, _ := f.GetString("growth")
			configPath, _ := f.GetString("config")
			paramsPath, _ := f.GetString("parameters")
			outDir, _ := f.GetString("out")
			prefix, _ := f.GetString("prefix")
			concurrency, _ := f.GetInt("concurrency")
			dayFilter, _ := f.GetString("day-filter")
			metricsPath, _ := f.GetString("metrics-out")
			rawCost, _ := f.GetBool("raw-cost")
			clustersPath, _ := f.GetString("clusters")
			summaryPath, _ := f.GetString("summary-out")

			if concurrency < 1 {
				return fmt.Errorf("--concurrency must be >= 1, got %d", concurrency)
			}
			if summaryPath != "" && clustersPath == "" {
				return errors.New("--summary-out needs --clusters")
			}
			cfg, err := loadConfig(configPath, paramsPath)
			if err != nil {
				return err
			}
			units, err := loadUnits(featuresPath, daysPath, growthPath, clustersPath)
			if err != nil {
				return err
			}
			keep, err := parseDays(dayFilter)
			if err != nil {
				return err
			}
			reg := prometheus.NewRegistry()
			metrics, err := pipeline.NewMetrics(reg)
			if err != nil {
				return err
			}

			opts := []pipeline.Option{
				pipeline.WithConfig(cfg),
				pipeline.WithConcurrency(concurrency),
				pipeline.WithLogger(a.logger),
				pipeline.WithMetrics(metrics),
			}
			if keep != nil {
				opts = append(opts, pipeline.WithDays(keep...))
			}
			if rawCost {
				opts = append(opts, pipeline.WithRawCost())
			}
			res, err := pipeline.NewRunner(opts...).Run(cmd.Context(), units)
			if err != nil {
				return err
			}

			if err = os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			for _, m := range res.Chain.Maps() {
				path := mapPath(outDir, prefix, m)
				if err = writeMap(path, m); err != nil {
					return err
				}
				d := m.Diagnostics()
				a.logger.Info("map written",
					zap.String("path", path),
					zap.Bool("converged", d.Converged),
					zap.Float64("epsilon", d.Epsilon),
					zap.Float64("lambda1", d.Lambda1),
					zap.Float64("lambda2", d.Lambda2))
			}
			if summaryPath != "" {
				if err = writeSummary(summaryPath, units, res.Chain.Maps()); err != nil {
					return err
				}
				a.logger.Info("cluster summary written", zap.String("path", summaryPath))
			}
			if metricsPath != "" {
				return writeMetrics(metricsPath, reg)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.String("matrix", "", "Feature matrix: id followed by one column per feature")
	f.String("cell-days", "", "File with headers id and day")
	f.String("growth", "", "Optional file with headers id and growth rate per day")
	f.String("config", "", "YAML configuration with defaults and per day-pair overrides")
	f.String("parameters", "", "Optional two-column parameter file (name value)")
	f.String("out", ".", "Output directory")
	f.String("prefix", "tmaps", "Output file prefix")
	f.Int("concurrency", runtime.GOMAXPROCS(0), "Day pairs solved at once")
	f.String("day-filter", "", "Comma-separated list of days to include (e.g. 12,14,16)")
	f.String("metrics-out", "", "Write Prometheus metrics in text format to this file")
	f.Bool("raw-cost", false, "Do not normalize the cost matrix by its median")
	f.String("clusters", "", "Optional cluster labels: two columns id and cluster")
	f.String("summary-out", "", "Write the cluster summary of the solved maps to this file")
	_ = cmd.MarkFlagRequired("matrix")
	_ = cmd.MarkFlagRequired("cell-days")

	return cmd
}

// loadConfig layers the YAML file, the parameter file and LINEAGE_* variables.
func loadConfig(configPath, paramsPath string) (*config.Config, error) {
	cfg := &config.Config{}
	if configPath != "" {
		var err error
		if cfg, err = config.LoadFile(configPath); err != nil {
			return nil, err
		}
	}
	if paramsPath != "" {
		f, err := os.Open(paramsPath)
		if err != nil {
			return nil, err
		}
		p, err := config.FromParameters(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", paramsPath, err)
		}
		cfg.MergeDefaults(p)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func writeMetrics(path string, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err = expfmt.MetricFamilyToText(f, mf); err != nil {
			f.Close()
			return err
		}
	}

	return f.Close()
}

// writeSummary labels maps by the units' clusters and writes the summary map.
func writeSummary(path string, units []cost.Unit, maps []*transport.Map) error {
	labels, err := cluster.FromUnits(units)
	if err != nil {
		return err
	}
	s, err := cluster.Summarize(maps, labels, nil)
	if err != nil {
		return err
	}

	return writeMap(path, s.Map)
}

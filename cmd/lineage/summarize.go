package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/lineage/cluster"
	"github.com/katalvlaran/lineage/transport"
)

func newSummarizeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize transport maps by cluster",
		Long: `Collapses every transport map in --dir by the cluster labels in --clusters
(two columns: id, cluster) and writes the time-weighted cluster transition
map as TSV.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			dir, _ := f.GetString("dir")
			prefix, _ := f.GetString("prefix")
			clustersPath, _ := f.GetString("clusters")
			outPath, _ := f.GetString("out")

			chain, err := loadChain(dir, prefix)
			if err != nil {
				return err
			}
			labels, err := readColumn(clustersPath)
			if err != nil {
				return err
			}
			s, err := cluster.Summarize(chain.Maps(), cluster.Labeling(labels), nil)
			if err != nil {
				return err
			}

			w, done, err := output(outPath, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err = transport.WriteTSV(w, s.Map); err != nil {
				_ = done()
				return err
			}
			a.logger.Info("cluster summary written",
				zap.Int("maps", len(s.PerTime)),
				zap.Strings("clusters", s.Weights.ClusterIDs),
				zap.Ints("sizes", s.Weights.Sizes))
			return done()
		},
	}

	f := cmd.Flags()
	f.String("dir", ".", "Directory of transport maps")
	f.String("prefix", "tmaps", "Transport map file prefix")
	f.String("clusters", "", "Cluster labels: two columns id and cluster")
	f.String("out", "-", "Output file, - for stdout")
	_ = cmd.MarkFlagRequired("clusters")

	return cmd
}

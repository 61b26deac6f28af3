package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/lineage/internal/logging"
)

// app carries what every subcommand shares.
type app struct {
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: logging.Nop()}
	root := &cobra.Command{
		Use:           "lineage",
		Short:         "Lineage computes transport maps between population snapshots",
		Long:          `Lineage solves growth-aware unbalanced optimal transport between consecutive days and follows units or clusters through the resulting maps.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			mode, _ := cmd.Flags().GetString("log-mode")
			verbose, _ := cmd.Flags().GetBool("verbose")
			l, err := logging.New(mode, verbose)
			if err != nil {
				return err
			}
			a.logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().Bool("verbose", false, "Print progress information")
	root.PersistentFlags().String("log-mode", "dev", "Log format: dev or prod")

	root.AddCommand(newOTCmd(a), newTrajectoryCmd(a), newSummarizeCmd(a))

	return root
}

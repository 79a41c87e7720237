package cmd

import (
	"github.com/spf13/cobra"
)

var runPrint bool

var runCmd = &cobra.Command{
	Use:   "run <data>",
	Short: "Run summarize, histograms and assemble in order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := runSummarize(cmd, args[0], runPrint, false); err != nil {
			return err
		}
		if _, err := runHistograms(cmd, args[0]); err != nil {
			return err
		}
		_, err := runAssemble(cmd)
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addDatasetFlags(runCmd)
	runCmd.Flags().BoolVar(&runPrint, "print", false, "print the summary table to stdout")
}

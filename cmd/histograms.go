package cmd

import (
	"github.com/spf13/cobra"
)

var histogramsCmd = &cobra.Command{
	Use:   "histograms <data>",
	Short: "Render a miniature histogram for every numeric column",
	Long: `Writes one PNG per numeric column to the plots directory. Columns without any
values get a blank placeholder of the same size.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runHistograms(cmd, args[0])
		return err
	},
}

func init() {
	rootCmd.AddCommand(histogramsCmd)
	addDatasetFlags(histogramsCmd)
}

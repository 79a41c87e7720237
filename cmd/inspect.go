package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/statsheet/internal/analysis"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <data>",
	Short: "List columns with their inferred kind and missing counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(cmd, args[0])
		if err != nil {
			return err
		}
		analysis.RenderColumns(cmd.OutOrStdout(), ds)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	addDatasetFlags(inspectCmd)
}

package cmd

import (
	"github.com/spf13/cobra"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Build the A4 landscape DOCX report from the summary and histograms",
	Long: `Reads the summary table written by 'summarize' and the images written by
'histograms' and produces a single-page report. A missing summary table is fatal;
a missing histogram leaves its cell empty.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runAssemble(cmd)
		return err
	},
}

func init() {
	rootCmd.AddCommand(assembleCmd)
}

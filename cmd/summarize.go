package cmd

import (
	"github.com/spf13/cobra"
)

var (
	sumPrint    bool
	sumMarkdown bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <data>",
	Short: "Compute descriptive statistics for every numeric column",
	Long: `Reads a CSV/TSV/XLSX dataset and writes one row per numeric column with mean, SD,
max, min, median, CV(%), skewness, excess kurtosis and the percentage of missing cells.
Unavailable statistics are written as empty cells.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runSummarize(cmd, args[0], sumPrint, sumMarkdown)
		return err
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	addDatasetFlags(summarizeCmd)
	summarizeCmd.Flags().BoolVar(&sumPrint, "print", false, "print the table to stdout")
	summarizeCmd.Flags().BoolVar(&sumMarkdown, "markdown", false, "also write a Markdown summary next to the CSV")
}

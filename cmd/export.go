package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/statsheet/internal/analysis"
	"github.com/KaramelBytes/statsheet/internal/artifacts"
	"github.com/KaramelBytes/statsheet/internal/utils"
	"github.com/KaramelBytes/statsheet/internal/workbook"
)

var exportCmd = &cobra.Command{
	Use:   "export <data>",
	Short: "Write the dataset, its summary and histograms to an XLSX workbook",
	Long: `Creates a workbook with a 'data' sheet holding the parsed rows and a 'summary' sheet
holding the rounded statistics. Histograms already rendered by 'histograms' are embedded
next to their summary row.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(cmd, args[0])
		if err != nil {
			return err
		}
		out := cfg.WorkbookPath()
		if err := utils.EnsureDir(filepath.Dir(out)); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		if err := workbook.Export(out, ds, analysis.Summarize(ds), plotStore(), logger); err != nil {
			return fmt.Errorf("export workbook: %w", err)
		}
		progress(cmd, "✓ Wrote workbook to %s", out)
		recordStage(artifacts.StageExport, args[0], []string{out})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addDatasetFlags(exportCmd)
}

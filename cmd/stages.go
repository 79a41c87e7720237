package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/statsheet/internal/analysis"
	"github.com/KaramelBytes/statsheet/internal/artifacts"
	"github.com/KaramelBytes/statsheet/internal/dataset"
	"github.com/KaramelBytes/statsheet/internal/histogram"
	"github.com/KaramelBytes/statsheet/internal/report"
	"github.com/KaramelBytes/statsheet/internal/utils"
)

// datasetFlags maps shared parsing flags to their config keys.
var datasetFlags = map[string]string{
	"delimiter":   "delimiter",
	"decimal":     "decimal",
	"thousands":   "thousands",
	"sheet-name":  "sheet_name",
	"sheet-index": "sheet_index",
	"percent":     "percent_values",
}

func addDatasetFlags(c *cobra.Command) {
	c.Flags().String("delimiter", "", "field delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	c.Flags().String("decimal", "", "decimal separator: '.' | ',' | 'auto' (overrides config)")
	c.Flags().String("thousands", "", "thousands separator: ',' | '.' | 'space' (overrides config)")
	c.Flags().String("sheet-name", "", "XLSX: sheet name to read")
	c.Flags().Int("sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	c.Flags().Bool("percent", false, "read values like '12%' as numbers (overrides config)")
}

// datasetOptions applies changed parsing flags on top of the loaded config.
func datasetOptions(c *cobra.Command) (dataset.Options, error) {
	eff := *cfg
	for flag, key := range datasetFlags {
		fl := c.Flags().Lookup(flag)
		if fl == nil || !fl.Changed {
			continue
		}
		if err := eff.Set(key, fl.Value.String()); err != nil {
			return dataset.Options{}, fmt.Errorf("--%s: %w", flag, err)
		}
	}
	return eff.DatasetOptions(), nil
}

func loadDataset(c *cobra.Command, path string) (*dataset.Dataset, error) {
	opt, err := datasetOptions(c)
	if err != nil {
		return nil, err
	}
	ds, err := dataset.Load(path, opt)
	if err != nil {
		return nil, err
	}
	logger.Debug("dataset loaded", "path", path, "rows", ds.Rows,
		"columns", len(ds.Columns), "numeric", len(ds.NumericColumns()))
	return ds, nil
}

func recordStage(stage artifacts.Stage, input string, outputs []string) {
	m, err := artifacts.LoadManifest(cfg.OutDir)
	if err == nil {
		if _, err = m.Record(stage, input, outputs); err == nil {
			err = m.Save()
		}
	}
	if err != nil {
		logger.Warn("manifest not updated", "stage", stage, "error", err)
	}
}

func plotStore() histogram.Store { return histogram.Store{Dir: cfg.PlotsPath()} }

func runSummarize(c *cobra.Command, dataPath string, printTable, markdown bool) (*analysis.SummaryTable, error) {
	ds, err := loadDataset(c, dataPath)
	if err != nil {
		return nil, err
	}
	t := analysis.Summarize(ds)
	if len(t.Rows) == 0 {
		progress(c, "⚠ No numeric columns in %s", dataPath)
	}

	out := cfg.SummaryPath()
	if err := utils.EnsureDir(filepath.Dir(out)); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if err := t.SaveCSV(out); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}
	outputs := []string{out}
	progress(c, "✓ Wrote summary of %d numeric variable(s) to %s", len(t.Rows), out)

	if markdown {
		mdPath := strings.TrimSuffix(out, filepath.Ext(out)) + ".md"
		if err := utils.SafeWriteFile(mdPath, []byte(t.Markdown())); err != nil {
			return nil, fmt.Errorf("write markdown: %w", err)
		}
		outputs = append(outputs, mdPath)
		progress(c, "✓ Wrote Markdown summary to %s", mdPath)
	}
	if printTable {
		t.RenderTable(c.OutOrStdout())
	}
	recordStage(artifacts.StageSummarize, dataPath, outputs)
	return t, nil
}

func runHistograms(c *cobra.Command, dataPath string) ([]string, error) {
	ds, err := loadDataset(c, dataPath)
	if err != nil {
		return nil, err
	}
	store := plotStore()
	paths, err := histogram.RenderAll(ds, store, cfg.HistogramOptions(), logger)
	if err != nil {
		return nil, err
	}
	progress(c, "✓ Wrote %d histogram(s) to %s", len(paths), store.Dir)
	recordStage(artifacts.StageHistograms, dataPath, paths)
	return paths, nil
}

func runAssemble(c *cobra.Command) (*report.Document, error) {
	summaryPath := cfg.SummaryPath()
	t, err := analysis.LoadCSV(summaryPath)
	if err != nil {
		return nil, err
	}
	if m, err := artifacts.LoadManifest(cfg.OutDir); err == nil && !m.InputsMatch(artifacts.StageSummarize, artifacts.StageHistograms) {
		logger.Warn("summary and histograms were computed from different inputs; re-run both stages")
		progress(c, "⚠ Summary and histograms come from different datasets")
	}

	store := plotStore()
	missing := 0
	for _, name := range t.Names() {
		if _, ok := store.Lookup(name); !ok {
			missing++
		}
	}
	if missing > 0 {
		progress(c, "⚠ %d variable(s) have no histogram in %s", missing, store.Dir)
	}

	doc, err := report.Assemble(t, store, cfg.ReportOptions(), logger)
	if err != nil {
		return nil, err
	}
	out := cfg.ReportPath()
	if err := utils.EnsureDir(filepath.Dir(out)); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if err := doc.WriteFile(out); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	if doc.Layout.Overflow {
		progress(c, "⚠ %d thumbnails need %smm but the page has %smm", doc.Layout.Count,
			strconv.FormatFloat(doc.Layout.RowWidthMM, 'f', -1, 64),
			strconv.FormatFloat(doc.Geometry.UsableWidthMM(), 'f', -1, 64))
	}
	progress(c, "✓ Wrote report to %s", out)
	recordStage(artifacts.StageAssemble, summaryPath, []string{out})
	return doc, nil
}

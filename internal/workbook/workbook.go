// Package workbook exports a dataset and its summary to an XLSX workbook.
package workbook

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/statsheet/internal/analysis"
	"github.com/KaramelBytes/statsheet/internal/dataset"
	"github.com/KaramelBytes/statsheet/internal/report"
	"github.com/KaramelBytes/statsheet/internal/utils"
)

// Sheet names.
const (
	DataSheet    = "data"
	SummarySheet = "summary"
)

// Thumbnails are scaled down from the rendered size to fit a spreadsheet row.
const (
	pictureScale     = 0.1
	pictureRowHeight = 24 // points
)

// Build creates the workbook in memory. images may be nil; variables without a
// stored image get no picture.
func Build(ds *dataset.Dataset, t *analysis.SummaryTable, images report.ImageSource, logger *slog.Logger) (*excelize.File, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", DataSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return nil, fmt.Errorf("add summary sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	if err := writeData(f, ds, bold); err != nil {
		return nil, err
	}
	if err := writeSummary(f, t, images, bold, logger); err != nil {
		return nil, err
	}
	return f, nil
}

// Export builds the workbook and atomically writes it to path.
func Export(path string, ds *dataset.Dataset, t *analysis.SummaryTable, images report.ImageSource, logger *slog.Logger) error {
	f, err := Build(ds, t, images, logger)
	if err != nil {
		return err
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

func writeData(f *excelize.File, ds *dataset.Dataset, headerStyle int) error {
	header := make([]any, len(ds.Columns))
	for i, c := range ds.Columns {
		header[i] = c.Name
	}
	if err := writeHeader(f, DataSheet, header, headerStyle); err != nil {
		return err
	}
	for r := 0; r < ds.Rows; r++ {
		row := make([]any, len(ds.Columns))
		for i, c := range ds.Columns {
			switch {
			case c.Missing[r]:
				row[i] = nil
			case c.IsNumeric():
				row[i] = c.Values[r]
			default:
				row[i] = c.Raw[r]
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(DataSheet, cell, &row); err != nil {
			return fmt.Errorf("write data row %d: %w", r+1, err)
		}
	}
	return nil
}

func writeSummary(f *excelize.File, t *analysis.SummaryTable, images report.ImageSource, headerStyle int, logger *slog.Logger) error {
	header := make([]any, 0, len(analysis.Header)+1)
	for _, h := range analysis.Header {
		header = append(header, h)
	}
	header = append(header, "Histogram")
	if err := writeHeader(f, SummarySheet, header, headerStyle); err != nil {
		return err
	}
	pictureCol := len(analysis.Header) + 1
	for i, v := range t.Rows {
		r := v.Rounded()
		row := []any{r.Name, val(r.Mean), val(r.SD), val(r.Max), val(r.Min), val(r.Median),
			val(r.CV), val(r.Skewness), val(r.Kurtosis), r.MissingPct}
		rowNum := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %s: %w", v.Name, err)
		}
		if images == nil {
			continue
		}
		data, err := images.Open(v.Name)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("no histogram to embed", "variable", v.Name)
			continue
		}
		if err != nil {
			return fmt.Errorf("read histogram for %s: %w", v.Name, err)
		}
		picCell, _ := excelize.CoordinatesToCellName(pictureCol, rowNum)
		if err := f.AddPictureFromBytes(SummarySheet, picCell, &excelize.Picture{
			Extension: ".png",
			File:      data,
			Format: &excelize.GraphicOptions{
				AltText: v.Name,
				ScaleX:  pictureScale,
				ScaleY:  pictureScale,
			},
		}); err != nil {
			return fmt.Errorf("embed histogram for %s: %w", v.Name, err)
		}
		if err := f.SetRowHeight(SummarySheet, rowNum, pictureRowHeight); err != nil {
			return fmt.Errorf("row height: %w", err)
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, header []any, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	if len(header) == 0 {
		return nil
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	return nil
}

// val maps an unavailable statistic to an empty cell.
func val(s analysis.Stat) any {
	if !s.OK {
		return nil
	}
	return s.Value
}

// Package report assembles the summary table and histogram thumbnails into a
// single-page A4 landscape DOCX document.
package report

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/KaramelBytes/statsheet/internal/analysis"
	"github.com/KaramelBytes/statsheet/internal/histogram"
)

// DefaultTitle heads the report unless Options.Title overrides it.
const DefaultTitle = "Summary Statistics"

// NAText is shown in table cells whose statistic is unavailable.
const NAText = "NA"

// ImageSource yields the stored histogram PNG for a variable. An absent image
// is reported with an error matching fs.ErrNotExist.
type ImageSource interface {
	Open(name string) ([]byte, error)
}

// Options configures Assemble.
type Options struct {
	Title        string
	Geometry     Geometry
	ImageWidthMM float64
}

// DefaultOptions returns the A4 landscape layout with 25 mm thumbnails.
func DefaultOptions() Options {
	return Options{Title: DefaultTitle, Geometry: A4Landscape(), ImageWidthMM: DefaultImageWidthMM}
}

// Thumbnail is one cell of the image row. PNG is nil when the variable has no
// stored image; the cell is then left empty.
type Thumbnail struct {
	Name     string
	PNG      []byte
	WidthPx  int
	HeightPx int
}

// HeightMM returns the display height for the given width, keeping the PNG's
// aspect ratio.
func (t Thumbnail) HeightMM(widthMM float64) float64 {
	if t.WidthPx <= 0 || t.HeightPx <= 0 {
		return 0
	}
	return widthMM * float64(t.HeightPx) / float64(t.WidthPx)
}

// Document is the assembled report, ready to serialize.
type Document struct {
	Geometry   Geometry
	Title      string
	Header     []string
	Rows       [][]analysis.Cell
	Thumbnails []Thumbnail
	Layout     ThumbnailLayout
}

// Assemble builds the report for t, taking one thumbnail per table row from
// images in table order. Missing images produce empty cells. A thumbnail row
// wider than the page is logged as a warning and kept at nominal size.
func Assemble(t *analysis.SummaryTable, images ImageSource, opt Options, logger *slog.Logger) (*Document, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opt.Title == "" {
		opt.Title = DefaultTitle
	}
	if opt.Geometry == (Geometry{}) {
		opt.Geometry = A4Landscape()
	}

	doc := &Document{
		Geometry: opt.Geometry,
		Title:    opt.Title,
		Header:   append([]string(nil), analysis.Header...),
	}
	for _, r := range t.Rows {
		doc.Rows = append(doc.Rows, r.Cells(NAText))
	}

	for _, name := range t.Names() {
		th := Thumbnail{Name: name}
		if images != nil {
			data, err := images.Open(name)
			switch {
			case err == nil:
				w, h, err := histogram.Size(data)
				if err != nil {
					return nil, fmt.Errorf("histogram for %s is not a PNG: %w", name, err)
				}
				th.PNG, th.WidthPx, th.HeightPx = data, w, h
			case errors.Is(err, fs.ErrNotExist):
				logger.Debug("no histogram for variable", "variable", name)
			default:
				return nil, fmt.Errorf("read histogram for %s: %w", name, err)
			}
		}
		doc.Thumbnails = append(doc.Thumbnails, th)
	}

	doc.Layout = LayoutThumbnails(len(doc.Thumbnails), doc.Geometry, opt.ImageWidthMM)
	if doc.Layout.Overflow {
		logger.Warn("thumbnail row exceeds usable page width",
			"variables", doc.Layout.Count,
			"row_width_mm", doc.Layout.RowWidthMM,
			"usable_width_mm", doc.Geometry.UsableWidthMM(),
			"cell_width_mm", doc.Layout.CellWidthMM)
	}
	return doc, nil
}

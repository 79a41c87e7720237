package analysis

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/KaramelBytes/statsheet/internal/dataset"
)

// RenderColumns prints each column's inferred kind and missing counts.
func RenderColumns(w io.Writer, ds *dataset.Dataset) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.SetTitle(fmt.Sprintf("%s: %d rows, %d columns", ds.Name, ds.Rows, len(ds.Columns)))
	tw.AppendHeader(table.Row{"Column", "Kind", "Non-missing", "Missing", "%NA"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	for _, c := range ds.Columns {
		miss := c.MissingCount()
		pct := 0.0
		if ds.Rows > 0 {
			pct = float64(miss) / float64(ds.Rows) * 100
		}
		tw.AppendRow(table.Row{c.Name, c.Kind.String(), ds.Rows - miss, miss, fmt.Sprintf("%.1f", pct)})
	}
	tw.Render()
}

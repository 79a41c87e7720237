package analysis

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/KaramelBytes/statsheet/internal/artifacts"
	"github.com/KaramelBytes/statsheet/internal/utils"
)

// Header is the column layout of the summary table artifact.
var Header = []string{"Variable", "Mean", "SD", "Max", "Min", "Median", "CV(%)", "Skewness", "Kurtosis", "%NA"}

// SummaryTable is the ordered set of variable summaries for one dataset.
type SummaryTable struct {
	Source string
	Rows   []VariableSummary
}

// Names returns the variable names in table order.
func (t *SummaryTable) Names() []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Name
	}
	return out
}

// Cell is one rounded, formatted value of a summary row.
type Cell struct {
	Text    string
	Numeric bool
}

// Cells returns the rounded row in Header order. Statistic cells are numeric even
// when unavailable; the variable name is not.
func (v VariableSummary) Cells(naText string) []Cell {
	r := v.Rounded()
	stat := func(s Stat) Cell {
		if !s.OK {
			return Cell{Text: naText, Numeric: true}
		}
		return Cell{Text: formatFloat(s.Value), Numeric: true}
	}
	return []Cell{
		{Text: r.Name},
		stat(r.Mean), stat(r.SD), stat(r.Max), stat(r.Min), stat(r.Median),
		stat(r.CV), stat(r.Skewness), stat(r.Kurtosis),
		{Text: formatFloat(r.MissingPct), Numeric: true},
	}
}

// Record returns the row as persisted in the CSV artifact; NA is an empty field.
func (v VariableSummary) Record() []string {
	cells := v.Cells("")
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Text
	}
	return out
}

// formatFloat prints the shortest representation, keeping a decimal point so
// that whole numbers read as floats ("3.0").
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// WriteCSV writes the rounded table with a header row.
func (t *SummaryTable) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range t.Rows {
		if err := cw.Write(r.Record()); err != nil {
			return fmt.Errorf("write row %s: %w", r.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV atomically replaces path with the CSV form of the table.
func (t *SummaryTable) SaveCSV(path string) error {
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

// ReadCSV parses a summary table artifact. Columns are matched by header name, so
// extra columns are ignored; every Header column must be present.
func ReadCSV(r io.Reader) (*SummaryTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	head, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("summary table is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(head))
	for i, h := range head {
		idx[strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")] = i
	}
	for _, h := range Header {
		if _, ok := idx[h]; !ok {
			return nil, fmt.Errorf("summary table missing column %q", h)
		}
	}
	t := &SummaryTable{}
	line := 1
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		line++
		field := func(name string) string {
			if i := idx[name]; i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		var perr error
		parse := func(name string) Stat {
			s, err := parseStat(field(name))
			if err != nil && perr == nil {
				perr = fmt.Errorf("row %d column %s: %w", line, name, err)
			}
			return s
		}
		v := VariableSummary{
			Name:     field("Variable"),
			Mean:     parse("Mean"),
			SD:       parse("SD"),
			Max:      parse("Max"),
			Min:      parse("Min"),
			Median:   parse("Median"),
			CV:       parse("CV(%)"),
			Skewness: parse("Skewness"),
			Kurtosis: parse("Kurtosis"),
		}
		if pct := parse("%NA"); pct.OK {
			v.MissingPct = pct.Value
		} else if perr == nil {
			perr = fmt.Errorf("row %d column %%NA: value required", line)
		}
		if perr != nil {
			return nil, perr
		}
		t.Rows = append(t.Rows, v)
	}
	return t, nil
}

// LoadCSV reads the summary table at path. An absent file is a
// *artifacts.MissingInputError.
func LoadCSV(path string) (*SummaryTable, error) {
	const hint = "run `statsheet summarize` first"
	if err := artifacts.RequireFile("summary table", path, hint); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &artifacts.MissingInputError{Artifact: "summary table", Path: path, Hint: hint, Err: err}
	}
	defer f.Close()
	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse summary table %s: %w", path, err)
	}
	return t, nil
}

func parseStat(s string) (Stat, error) {
	switch strings.ToLower(s) {
	case "", "na", "nan", "<na>":
		return NA, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return NA, err
	}
	return Available(f), nil
}

// Markdown renders the table as a compact report.
func (t *SummaryTable) Markdown() string {
	var b strings.Builder
	b.WriteString("[SUMMARY STATISTICS]\n")
	if t.Source != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", t.Source))
	}
	b.WriteString(fmt.Sprintf("Numeric variables: %d\n\n", len(t.Rows)))
	b.WriteString("| " + strings.Join(Header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(Header)) + "\n")
	for _, r := range t.Rows {
		cells := r.Cells("NA")
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = safeVal(c.Text)
		}
		b.WriteString("| " + strings.Join(parts, " | ") + " |\n")
	}
	var notes []string
	for _, r := range t.Rows {
		switch {
		case r.Total > 0 && r.N == 0:
			notes = append(notes, fmt.Sprintf("%s: no non-missing values", r.Name))
		case r.Total > 0 && r.N == 1:
			notes = append(notes, fmt.Sprintf("%s: a single non-missing value; spread and shape unavailable", r.Name))
		}
	}
	if len(notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderTable prints the rounded table to w for terminal display.
func (t *SummaryTable) RenderTable(w io.Writer) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Header = text.FormatDefault
	head := make(table.Row, len(Header))
	for i, h := range Header {
		head[i] = h
	}
	tw.AppendHeader(head)
	configs := make([]table.ColumnConfig, 0, len(Header))
	for i := 2; i <= len(Header); i++ {
		configs = append(configs, table.ColumnConfig{Number: i, Align: text.AlignRight})
	}
	tw.SetColumnConfigs(configs)
	for _, r := range t.Rows {
		cells := r.Cells("NA")
		row := make(table.Row, len(cells))
		for i, c := range cells {
			row[i] = c.Text
		}
		tw.AppendRow(row)
	}
	tw.Render()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

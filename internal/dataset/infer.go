package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Options controls how raw cells are read and typed.
type Options struct {
	// Delimiter for delimited text. If 0, sniffed from the file name and header line.
	Delimiter rune
	// DecimalSeparator for numbers. If 0, auto-detect per value.
	DecimalSeparator rune
	// ThousandsSeparator is stripped before parsing when set. With auto-detection of
	// the decimal separator, common separators (',' '.' space) are stripped.
	ThousandsSeparator rune
	// PercentValues accepts a trailing '%' on numeric cells ("12.5%" reads as 12.5).
	// Off by default: such cells make the column non-numeric.
	PercentValues bool
	// NAValues are the cell values (after trimming) that count as missing.
	NAValues []string
	// SheetName selects an XLSX sheet; SheetIndex (1-based) is used when empty.
	SheetName  string
	SheetIndex int
}

// DefaultNAValues mirrors the missing-value markers most table tools recognise.
var DefaultNAValues = []string{
	"", "NA", "N/A", "n/a", "NaN", "nan", "-nan", "-NaN", "null", "NULL", "None",
	"#N/A", "#NA", "<NA>",
}

// DefaultOptions returns '.'-decimal parsing with the default missing markers.
func DefaultOptions() Options {
	return Options{
		DecimalSeparator: '.',
		NAValues:         append([]string(nil), DefaultNAValues...),
		SheetIndex:       1,
	}
}

// FromRecords builds a typed Dataset from a header and raw records. Short records
// are padded with missing cells; records longer than the header are rejected.
func FromRecords(name string, header []string, records [][]string, opt Options) (*Dataset, error) {
	names := uniqueNames(header)
	ds := &Dataset{Name: name, Rows: len(records)}
	na := make(map[string]struct{}, len(opt.NAValues))
	for _, v := range opt.NAValues {
		na[strings.TrimSpace(v)] = struct{}{}
	}
	for ri, rec := range records {
		if len(rec) > len(names) {
			return nil, fmt.Errorf("row %d: expected %d fields, saw %d", ri+1, len(names), len(rec))
		}
	}
	for j, cname := range names {
		c := &Column{
			Name:    cname,
			Raw:     make([]string, len(records)),
			Values:  make([]float64, len(records)),
			Missing: make([]bool, len(records)),
		}
		numeric := true
		for i, rec := range records {
			var cell string
			if j < len(rec) {
				cell = rec[j]
			}
			c.Raw[i] = cell
			v := strings.TrimSpace(cell)
			if _, ok := na[v]; ok || v == "" {
				c.Missing[i] = true
				c.Values[i] = math.NaN()
				continue
			}
			if !numeric {
				continue
			}
			x, ok := parseNumeric(v, opt)
			if !ok {
				numeric = false
				continue
			}
			c.Values[i] = x
		}
		if numeric {
			c.Kind = KindNumeric
		} else {
			c.Kind = KindOther
			c.Values = nil
		}
		ds.Columns = append(ds.Columns, c)
	}
	return ds, nil
}

// uniqueNames fills blank headers and disambiguates duplicates with ".1", ".2", ...
// so that every column, and every artifact keyed by column name, is addressable.
func uniqueNames(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	counts := make(map[string]int)
	for i, h := range header {
		n := strings.TrimSpace(h)
		if i == 0 {
			n = strings.TrimPrefix(n, "\ufeff")
		}
		if n == "" {
			n = fmt.Sprintf("Unnamed: %d", i)
		}
		if used[n] {
			base := n
			for {
				counts[base]++
				cand := fmt.Sprintf("%s.%d", base, counts[base])
				if !used[cand] {
					n = cand
					break
				}
			}
		}
		used[n] = true
		out[i] = n
	}
	return out
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	if opt.PercentValues {
		raw = strings.TrimSuffix(raw, "%")
	}
	// Normalize spaces
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	auto := dec == 0
	if auto {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	if auto && thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != 0 && thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		if strings.Contains(raw, ".") {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

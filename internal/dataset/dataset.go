// Package dataset loads delimited text and XLSX files into a typed, column-oriented
// Dataset. Column types are inferred once, at load time, so every consumer sees the
// same Numeric/Other decision.
package dataset

import "fmt"

// Kind is the inferred type tag of a column.
type Kind int

const (
	// KindOther marks a column holding at least one non-numeric, non-missing value.
	KindOther Kind = iota
	// KindNumeric marks a column whose non-missing values all parse as finite numbers.
	// A column with no non-missing values is numeric.
	KindNumeric
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindOther:
		return "other"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Column is one named column of a Dataset. Raw, Values and Missing all have the
// dataset's row count; Values[i] is meaningful only for numeric columns where
// Missing[i] is false.
type Column struct {
	Name    string
	Kind    Kind
	Raw     []string
	Values  []float64
	Missing []bool
}

// IsNumeric reports whether the column was tagged numeric.
func (c *Column) IsNumeric() bool { return c.Kind == KindNumeric }

// NonMissing returns the parsed non-missing values in row order.
func (c *Column) NonMissing() []float64 {
	if c.Kind != KindNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.Values))
	for i, v := range c.Values {
		if !c.Missing[i] {
			out = append(out, v)
		}
	}
	return out
}

// MissingCount returns the number of missing cells in the column.
func (c *Column) MissingCount() int {
	n := 0
	for _, m := range c.Missing {
		if m {
			n++
		}
	}
	return n
}

// Dataset is an ordered collection of equally long columns.
type Dataset struct {
	Name    string
	Rows    int
	Columns []*Column
}

// NumericColumns returns the numeric columns in their original order.
func (d *Dataset) NumericColumns() []*Column {
	var out []*Column
	for _, c := range d.Columns {
		if c.IsNumeric() {
			out = append(out, c)
		}
	}
	return out
}

// Column returns the column with the given name.
func (d *Dataset) Column(name string) (*Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

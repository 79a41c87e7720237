// Package analysis computes per-column descriptive statistics for the numeric
// columns of a dataset and persists them as a summary table.
package analysis

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/statsheet/internal/dataset"
)

// Presentation precision, applied once by VariableSummary.Rounded.
const (
	CentralPlaces = 2 // mean, SD, max, min, median, CV
	ShapePlaces   = 3 // skewness, kurtosis
	MissingPlaces = 1 // %NA
)

// Stat is a statistic that may be unavailable, e.g. the SD of a single value or
// the CV of a zero-mean column. Consumers must check OK before using Value.
type Stat struct {
	Value float64
	OK    bool
}

// NA is the unavailable statistic.
var NA = Stat{}

// Available wraps v; NaN and ±Inf become NA.
func Available(v float64) Stat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NA
	}
	return Stat{Value: v, OK: true}
}

// Round rounds half away from zero to the given number of decimal places.
// Values too large to scale by 10^places carry no fraction and are kept as is.
func (s Stat) Round(places int) Stat {
	if !s.OK {
		return NA
	}
	r, err := stats.Round(s.Value, places)
	if err != nil {
		return NA
	}
	if math.IsInf(r, 0) || math.IsNaN(r) {
		r = s.Value
	}
	if r == 0 {
		r = 0 // drop the sign of -0
	}
	return Stat{Value: r, OK: true}
}

// VariableSummary holds the descriptive statistics of one numeric column.
type VariableSummary struct {
	Name       string
	Mean       Stat
	SD         Stat
	Max        Stat
	Min        Stat
	Median     Stat
	CV         Stat // percent
	Skewness   Stat
	Kurtosis   Stat // excess
	MissingPct float64

	// N is the number of non-missing values, Missing the number of missing cells
	// and Total the column length. They are not persisted in the summary table.
	N       int
	Missing int
	Total   int
}

// Rounded returns a copy with every statistic rounded to its presentation precision.
func (v VariableSummary) Rounded() VariableSummary {
	out := v
	out.Mean = v.Mean.Round(CentralPlaces)
	out.SD = v.SD.Round(CentralPlaces)
	out.Max = v.Max.Round(CentralPlaces)
	out.Min = v.Min.Round(CentralPlaces)
	out.Median = v.Median.Round(CentralPlaces)
	out.CV = v.CV.Round(CentralPlaces)
	out.Skewness = v.Skewness.Round(ShapePlaces)
	out.Kurtosis = v.Kurtosis.Round(ShapePlaces)
	out.MissingPct = Available(v.MissingPct).Round(MissingPlaces).Value
	return out
}

// Summarize computes a VariableSummary for every numeric column of ds, in column
// order. Non-numeric columns are skipped. Degenerate columns (too few values,
// zero variance, zero mean) produce NA statistics rather than errors.
func Summarize(ds *dataset.Dataset) *SummaryTable {
	t := &SummaryTable{Source: ds.Name}
	for _, c := range ds.NumericColumns() {
		t.Rows = append(t.Rows, SummarizeColumn(c.Name, c.NonMissing(), c.MissingCount(), ds.Rows))
	}
	return t
}

// SummarizeColumn computes full-precision statistics over the non-missing values v.
// missing and total are counts over the whole column.
func SummarizeColumn(name string, v []float64, missing, total int) VariableSummary {
	s := VariableSummary{Name: name, N: len(v), Missing: missing, Total: total}
	if total > 0 {
		s.MissingPct = float64(missing) / float64(total) * 100
	}
	n := len(v)
	if n == 0 {
		return s
	}

	mean := stat.Mean(v, nil)
	s.Mean = Available(mean)
	if mx, err := stats.Max(v); err == nil {
		s.Max = Available(mx)
	}
	if mn, err := stats.Min(v); err == nil {
		s.Min = Available(mn)
	}
	if md, err := stats.Median(v); err == nil {
		s.Median = Available(md)
	}
	if n < 2 {
		return s
	}

	sd := stat.StdDev(v, nil)
	s.SD = Available(sd)
	if mean != 0 {
		s.CV = Available(sd / mean * 100)
	}
	if sd == 0 {
		// Standardized moments are undefined for a constant column.
		return s
	}
	if n >= 3 {
		s.Skewness = Available(stat.Skew(v, nil))
	}
	if n >= 4 {
		s.Kurtosis = Available(stat.ExKurtosis(v, nil))
	}
	return s
}

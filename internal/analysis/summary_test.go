package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/statsheet/internal/dataset"
)

func mustDataset(t *testing.T, header []string, rows ...[]string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromRecords("test.csv", header, rows, dataset.DefaultOptions())
	require.NoError(t, err)
	return ds
}

func TestSummarizeEndToEndScenario(t *testing.T) {
	ds := mustDataset(t, []string{"A", "B"},
		[]string{"1", ""}, []string{"2", ""}, []string{"3", ""}, []string{"4", ""}, []string{"5", ""})

	tbl := Summarize(ds)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"A", "B"}, tbl.Names())

	a := tbl.Rows[0].Rounded()
	assert.Equal(t, Stat{Value: 3, OK: true}, a.Mean)
	assert.Equal(t, Stat{Value: 1.58, OK: true}, a.SD)
	assert.Equal(t, Stat{Value: 52.7, OK: true}, a.CV)
	assert.Equal(t, Stat{Value: 5, OK: true}, a.Max)
	assert.Equal(t, Stat{Value: 1, OK: true}, a.Min)
	assert.Equal(t, Stat{Value: 3, OK: true}, a.Median)
	assert.Equal(t, Stat{Value: 0, OK: true}, a.Skewness)
	assert.Equal(t, Stat{Value: -1.2, OK: true}, a.Kurtosis)
	assert.Equal(t, 0.0, a.MissingPct)
	assert.Equal(t, []string{"A", "3.0", "1.58", "5.0", "1.0", "3.0", "52.7", "0.0", "-1.2", "0.0"}, tbl.Rows[0].Record())

	b := tbl.Rows[1]
	for _, s := range []Stat{b.Mean, b.SD, b.Max, b.Min, b.Median, b.CV, b.Skewness, b.Kurtosis} {
		assert.False(t, s.OK)
	}
	assert.Equal(t, 100.0, b.MissingPct)
	assert.Equal(t, []string{"B", "", "", "", "", "", "", "", "", "100.0"}, b.Record())
}

func TestSummarizeSkipsNonNumericAndKeepsColumnOrder(t *testing.T) {
	ds := mustDataset(t, []string{"z", "label", "a", "m"},
		[]string{"1", "x", "10", "5"},
		[]string{"2", "y", "20", "6"})
	assert.Equal(t, []string{"z", "a", "m"}, Summarize(ds).Names())

	perm := mustDataset(t, []string{"m", "a", "label", "z"},
		[]string{"5", "10", "x", "1"},
		[]string{"6", "20", "y", "2"})
	assert.Equal(t, []string{"m", "a", "z"}, Summarize(perm).Names())
}

func TestSummarizeColumnDegenerateCases(t *testing.T) {
	t.Run("single value", func(t *testing.T) {
		s := SummarizeColumn("x", []float64{4}, 2, 3)
		assert.Equal(t, Stat{Value: 4, OK: true}, s.Mean)
		assert.Equal(t, Stat{Value: 4, OK: true}, s.Median)
		assert.False(t, s.SD.OK)
		assert.False(t, s.CV.OK)
		assert.False(t, s.Skewness.OK)
		assert.False(t, s.Kurtosis.OK)
		assert.InDelta(t, 66.6667, s.MissingPct, 1e-3)
	})
	t.Run("two values", func(t *testing.T) {
		s := SummarizeColumn("x", []float64{1, 3}, 0, 2)
		assert.InDelta(t, math.Sqrt2, s.SD.Value, 1e-12)
		assert.True(t, s.CV.OK)
		assert.False(t, s.Skewness.OK)
		assert.False(t, s.Kurtosis.OK)
	})
	t.Run("three values", func(t *testing.T) {
		s := SummarizeColumn("x", []float64{1, 2, 9}, 0, 3)
		assert.True(t, s.Skewness.OK)
		assert.False(t, s.Kurtosis.OK)
	})
	t.Run("constant column", func(t *testing.T) {
		s := SummarizeColumn("x", []float64{2, 2, 2, 2, 2}, 0, 5)
		assert.Equal(t, Stat{Value: 0, OK: true}, s.SD)
		assert.Equal(t, Stat{Value: 0, OK: true}, s.CV)
		assert.False(t, s.Skewness.OK)
		assert.False(t, s.Kurtosis.OK)
	})
	t.Run("zero mean", func(t *testing.T) {
		s := SummarizeColumn("x", []float64{-2, -1, 0, 1, 2}, 0, 5)
		assert.True(t, s.SD.OK)
		assert.False(t, s.CV.OK)
	})
	t.Run("empty column with no rows", func(t *testing.T) {
		s := SummarizeColumn("x", nil, 0, 0)
		assert.Equal(t, 0.0, s.MissingPct)
		assert.False(t, s.Mean.OK)
	})
}

func TestMissingPercentIndependentOfRemainingValues(t *testing.T) {
	for _, tc := range []struct {
		missing, total int
		want           float64
	}{
		{0, 4, 0}, {1, 4, 25}, {3, 4, 75}, {4, 4, 100},
	} {
		vals := make([]float64, tc.total-tc.missing)
		for i := range vals {
			vals[i] = float64(i)
		}
		s := SummarizeColumn("x", vals, tc.missing, tc.total)
		assert.Equal(t, tc.want, s.MissingPct)
	}
}

// Recomputing the moments directly from the raw values must agree with the
// rounded table within the rounding precision.
func TestRoundedMomentsMatchDirectComputation(t *testing.T) {
	v := []float64{2.3, 4.1, 4.4, 5.0, 6.8, 7.7, 9.9, 12.5, 13.1, 21.0}
	got := SummarizeColumn("x", v, 0, len(v)).Rounded()

	n := float64(len(v))
	var mean float64
	for _, x := range v {
		mean += x
	}
	mean /= n
	var m2, m3, m4 float64
	for _, x := range v {
		d := x - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	m2 /= n
	m3 /= n
	m4 /= n
	sd := math.Sqrt(m2 * n / (n - 1))
	g1 := m3 / math.Pow(m2, 1.5)
	skew := math.Sqrt(n*(n-1)) / (n - 2) * g1
	g2 := m4/(m2*m2) - 3
	kurt := ((n+1)*g2 + 6) * (n - 1) / ((n - 2) * (n - 3))

	assert.InDelta(t, sd, got.SD.Value, 0.005)
	assert.InDelta(t, sd/mean*100, got.CV.Value, 0.005)
	assert.InDelta(t, skew, got.Skewness.Value, 0.0005)
	assert.InDelta(t, kurt, got.Kurtosis.Value, 0.0005)
}

func TestStatRound(t *testing.T) {
	assert.Equal(t, Stat{Value: 0.13, OK: true}, Available(0.125).Round(2))
	assert.Equal(t, Stat{Value: -0.13, OK: true}, Available(-0.125).Round(2))
	assert.False(t, math.Signbit(Available(-0.0001).Round(2).Value))
	assert.Equal(t, NA, NA.Round(2))
	assert.Equal(t, Stat{Value: 1e307, OK: true}, Available(1e307).Round(2))
	assert.Equal(t, Stat{Value: -math.MaxFloat64, OK: true}, Available(-math.MaxFloat64).Round(3))
	assert.Equal(t, NA, Available(math.NaN()))
	assert.Equal(t, NA, Available(math.Inf(1)))
}

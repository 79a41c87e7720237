package analysis

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/statsheet/internal/artifacts"
	"github.com/KaramelBytes/statsheet/internal/dataset"
)

func sampleTable(t *testing.T) *SummaryTable {
	t.Helper()
	ds := mustDataset(t, []string{"A", "B", "C"},
		[]string{"1", "", "10"},
		[]string{"2", "", "-3"},
		[]string{"3", "", ""},
		[]string{"4", "", "7.5"},
		[]string{"5", "", "0.25"})
	return Summarize(ds)
}

func TestWriteCSVLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleTable(t).WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Variable,Mean,SD,Max,Min,Median,CV(%),Skewness,Kurtosis,%NA", lines[0])
	assert.Equal(t, "A,3.0,1.58,5.0,1.0,3.0,52.7,0.0,-1.2,0.0", lines[1])
	assert.Equal(t, "B,,,,,,,,,100.0", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "C,"))
	assert.True(t, strings.HasSuffix(lines[3], ",20.0"))
}

func TestCSVRoundTripKeepsRoundedValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")
	orig := sampleTable(t)
	require.NoError(t, orig.SaveCSV(path))

	got, err := LoadCSV(path)
	require.NoError(t, err)
	require.Equal(t, orig.Names(), got.Names())
	for i, r := range got.Rows {
		want := orig.Rows[i].Rounded()
		assert.Equal(t, want.Mean, r.Mean, r.Name)
		assert.Equal(t, want.SD, r.SD, r.Name)
		assert.Equal(t, want.CV, r.CV, r.Name)
		assert.Equal(t, want.Skewness, r.Skewness, r.Name)
		assert.Equal(t, want.Kurtosis, r.Kurtosis, r.Name)
		assert.Equal(t, want.MissingPct, r.MissingPct, r.Name)
		assert.Equal(t, orig.Rows[i].Record(), r.Record(), r.Name)
	}
}

func TestCSVRoundTripNearFloat64Limit(t *testing.T) {
	ds := mustDataset(t, []string{"X"}, []string{"1e307"}, []string{"2e307"}, []string{"3e307"})
	orig := Summarize(ds)
	path := filepath.Join(t.TempDir(), "summary.csv")
	require.NoError(t, orig.SaveCSV(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Inf")

	got, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	r := got.Rows[0]
	assert.Equal(t, orig.Rows[0].Record(), r.Record())
	assert.True(t, r.Max.OK)
	assert.Equal(t, 3e307, r.Max.Value)
	assert.Equal(t, 1e307, r.Min.Value)
	assert.True(t, r.Mean.OK)
}

func TestReadCSVRequiresMissingPercent(t *testing.T) {
	head := strings.Join(Header, ",") + "\n"
	for _, pct := range []string{"", "NA"} {
		_, err := ReadCSV(strings.NewReader(head + "x,1.0,,1.0,1.0,1.0,,,," + pct + "\n"))
		require.Error(t, err, "%%NA=%q", pct)
		assert.Contains(t, err.Error(), "%NA")
	}
}

func TestReadCSVToleratesReorderedAndExtraColumns(t *testing.T) {
	in := "\ufeff%NA,Variable,Extra,Mean,SD,Max,Min,Median,CV(%),Skewness,Kurtosis\n" +
		"0.0,x,ignored,1.5,NA,2.0,1.0,1.5,nan,,\n"
	got, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	r := got.Rows[0]
	assert.Equal(t, "x", r.Name)
	assert.Equal(t, Stat{Value: 1.5, OK: true}, r.Mean)
	assert.False(t, r.SD.OK)
	assert.False(t, r.CV.OK)
	assert.False(t, r.Kurtosis.OK)
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("Variable,Mean\nx,1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"SD"`)

	bad := strings.Join(Header, ",") + "\nx,abc,,,,,,,,0.0\n"
	_, err = ReadCSV(strings.NewReader(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Mean")
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, artifacts.IsMissingInput(err))
	assert.Contains(t, err.Error(), "statsheet summarize")
}

func TestSaveCSVReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))
	require.NoError(t, sampleTable(t).SaveCSV(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Variable,"))
}

func TestMarkdownNotesDegenerateColumns(t *testing.T) {
	ds := mustDataset(t, []string{"one", "none", "ok"},
		[]string{"4", "", "1"},
		[]string{"", "", "2"})
	md := Summarize(ds).Markdown()
	assert.Contains(t, md, "[SUMMARY STATISTICS]")
	assert.Contains(t, md, "File: test.csv")
	assert.Contains(t, md, "| Variable | Mean |")
	assert.Contains(t, md, "[NOTES]")
	assert.Contains(t, md, "one: a single non-missing value")
	assert.Contains(t, md, "none: no non-missing values")
	assert.NotContains(t, md, "ok:")
}

func TestRenderTableShowsNA(t *testing.T) {
	var buf bytes.Buffer
	sampleTable(t).RenderTable(&buf)
	out := buf.String()
	assert.Contains(t, out, "Variable")
	assert.Contains(t, out, "CV(%)")
	assert.Contains(t, out, "NA")
	assert.Contains(t, out, "52.7")
}

func TestRenderColumnsListsKinds(t *testing.T) {
	ds := mustDataset(t, []string{"n", "label"}, []string{"1", "a"}, []string{"", "b"})
	var buf bytes.Buffer
	RenderColumns(&buf, ds)
	out := buf.String()
	assert.Contains(t, out, dataset.KindNumeric.String())
	assert.Contains(t, out, dataset.KindOther.String())
	assert.Contains(t, out, "50.0")
}

package report

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/statsheet/internal/analysis"
	"github.com/KaramelBytes/statsheet/internal/histogram"
	"github.com/KaramelBytes/statsheet/internal/testutil"
)

type mapSource map[string][]byte

func (m mapSource) Open(name string) ([]byte, error) {
	if b, ok := m[name]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("open %s: %w", name, fs.ErrNotExist)
}

type brokenSource struct{}

func (brokenSource) Open(string) ([]byte, error) { return nil, errors.New("disk on fire") }

func placeholderPNG(t *testing.T) []byte {
	t.Helper()
	img, err := histogram.Render("p", nil, histogram.Options{WidthIn: 4, HeightIn: 1, DPI: 20})
	require.NoError(t, err)
	return img.PNG
}

func tableOf(names ...string) *analysis.SummaryTable {
	t := &analysis.SummaryTable{}
	for i, n := range names {
		v := []float64{1, 2, 3, float64(4 + i)}
		t.Rows = append(t.Rows, analysis.SummarizeColumn(n, v, 0, len(v)))
	}
	return t
}

func readPart(t *testing.T, docx []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		_ = rc.Close()
		require.NoError(t, err)
		return string(b)
	}
	t.Fatalf("%s not found in docx", name)
	return ""
}

func partNames(t *testing.T, docx []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	require.NoError(t, err)
	var out []string
	for _, f := range zr.File {
		out = append(out, f.Name)
	}
	return out
}

func TestUsableWidth(t *testing.T) {
	assert.Equal(t, 277.0, A4Landscape().UsableWidthMM())
}

func TestLayoutThumbnails(t *testing.T) {
	g := A4Landscape()
	one := LayoutThumbnails(1, g, 25)
	five := LayoutThumbnails(5, g, 25)
	twenty := LayoutThumbnails(20, g, 25)

	assert.Equal(t, 277.0, one.CellWidthMM)
	assert.InDelta(t, 55.4, five.CellWidthMM, 1e-9)
	assert.InDelta(t, 13.85, twenty.CellWidthMM, 1e-9)
	assert.Greater(t, one.CellWidthMM, five.CellWidthMM)
	assert.Greater(t, five.CellWidthMM, twenty.CellWidthMM)

	for _, l := range []ThumbnailLayout{one, five, twenty} {
		assert.Equal(t, 25.0, l.ImageWidthMM)
	}
	assert.False(t, five.Overflow)
	assert.True(t, twenty.Overflow)
	assert.Equal(t, 500.0, twenty.RowWidthMM)

	assert.False(t, LayoutThumbnails(11, g, 25).Overflow)
	assert.True(t, LayoutThumbnails(12, g, 25).Overflow)
	assert.Equal(t, ThumbnailLayout{ImageWidthMM: 25}, LayoutThumbnails(0, g, 0))
}

func TestAssembleMissingImageLeavesEmptyCell(t *testing.T) {
	png := placeholderPNG(t)
	src := mapSource{"a": png, "c": png}
	doc, err := Assemble(tableOf("a", "b", "c"), src, DefaultOptions(), testutil.NewTestLogger(t))
	require.NoError(t, err)

	require.Len(t, doc.Thumbnails, 3)
	assert.NotNil(t, doc.Thumbnails[0].PNG)
	assert.Nil(t, doc.Thumbnails[1].PNG)
	assert.NotNil(t, doc.Thumbnails[2].PNG)
	assert.Equal(t, 80, doc.Thumbnails[0].WidthPx)
	assert.Equal(t, 20, doc.Thumbnails[0].HeightPx)
	assert.InDelta(t, 6.25, doc.Thumbnails[0].HeightMM(25), 1e-9)

	var buf bytes.Buffer
	require.NoError(t, doc.WriteDOCX(&buf))
	names := partNames(t, buf.Bytes())
	assert.Contains(t, names, "word/media/image1.png")
	assert.Contains(t, names, "word/media/image2.png")
	assert.NotContains(t, names, "word/media/image3.png")

	body := readPart(t, buf.Bytes(), "word/document.xml")
	assert.Equal(t, 2, strings.Count(body, "<w:drawing>"))
	assert.Equal(t, 3, strings.Count(body, `<w:tcW w:w="5235" w:type="dxa"/>`))
	// The empty cell is a bare centered paragraph.
	assert.Contains(t, body, `<w:jc w:val="center"/></w:pPr></w:p></w:tc>`)

	rels := readPart(t, buf.Bytes(), "word/_rels/document.xml.rels")
	assert.Contains(t, rels, `Id="rId2"`)
	assert.Contains(t, rels, `Id="rId3"`)
	assert.NotContains(t, rels, `Id="rId4"`)
}

func TestDocumentXMLLayout(t *testing.T) {
	tbl := tableOf("x<1>")
	tbl.Rows = append(tbl.Rows, analysis.SummarizeColumn("solo", []float64{7}, 1, 2))
	doc, err := Assemble(tbl, nil, DefaultOptions(), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, doc.WriteDOCX(&buf))
	body := readPart(t, buf.Bytes(), "word/document.xml")

	assert.Contains(t, body, `<w:pgSz w:w="16838" w:h="11906" w:orient="landscape"/>`)
	assert.Contains(t, body, `<w:pgMar w:top="567" w:right="567" w:bottom="567" w:left="567"`)
	assert.Contains(t, body, `<w:jc w:val="center"/></w:pPr><w:r><w:rPr><w:b/><w:sz w:val="28"/>`)
	assert.Contains(t, body, ">Summary Statistics<")
	assert.Contains(t, body, `<w:tblStyle w:val="TableGrid"/>`)
	assert.Contains(t, body, `<w:b/><w:sz w:val="16"/><w:szCs w:val="16"/></w:rPr><w:t xml:space="preserve">CV(%)</w:t>`)
	assert.Contains(t, body, `<w:jc w:val="left"/></w:pPr><w:r><w:rPr><w:sz w:val="16"/><w:szCs w:val="16"/></w:rPr><w:t xml:space="preserve">x&lt;1&gt;</w:t>`)
	assert.Contains(t, body, `<w:jc w:val="right"/></w:pPr><w:r><w:rPr><w:sz w:val="16"/><w:szCs w:val="16"/></w:rPr><w:t xml:space="preserve">NA</w:t>`)
	assert.Contains(t, body, `<w:jc w:val="right"/></w:pPr><w:r><w:rPr><w:sz w:val="16"/><w:szCs w:val="16"/></w:rPr><w:t xml:space="preserve">50.0</w:t>`)
	assert.NotContains(t, body, "<w:drawing>")
	assert.NotContains(t, body, `<w:br w:type="page"/>`)
	assert.Equal(t, 1, strings.Count(body, "<w:sectPr>"))

	styles := readPart(t, buf.Bytes(), "word/styles.xml")
	assert.Contains(t, styles, `<w:name w:val="Table Grid"/>`)

	// Every header and data row holds ten cells.
	rows := regexp.MustCompile(`(?s)<w:tblStyle w:val="TableGrid"/>.*?</w:tbl>`).FindString(body)
	assert.Equal(t, 3*len(analysis.Header), strings.Count(rows, "<w:tc>"))
}

func TestAssembleOverflowWarns(t *testing.T) {
	names := make([]string, 20)
	for i := range names {
		names[i] = fmt.Sprintf("v%02d", i)
	}
	logger, logs := testutil.NewCaptureLogger()
	doc, err := Assemble(tableOf(names...), mapSource{}, DefaultOptions(), logger)
	require.NoError(t, err)
	assert.True(t, doc.Layout.Overflow)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "variables=20")

	logger, logs = testutil.NewCaptureLogger()
	_, err = Assemble(tableOf("a", "b"), mapSource{}, DefaultOptions(), logger)
	require.NoError(t, err)
	assert.NotContains(t, logs.String(), "level=WARN")
}

func TestAssembleCustomTitleAndEmptyTable(t *testing.T) {
	opt := DefaultOptions()
	opt.Title = "Trial & Error"
	doc, err := Assemble(&analysis.SummaryTable{}, mapSource{}, opt, nil)
	require.NoError(t, err)
	assert.Empty(t, doc.Thumbnails)

	var buf bytes.Buffer
	require.NoError(t, doc.WriteDOCX(&buf))
	body := readPart(t, buf.Bytes(), "word/document.xml")
	assert.Contains(t, body, ">Trial &amp; Error<")
	assert.Equal(t, 1, strings.Count(body, "<w:tbl>"))
}

func TestAssembleImageErrors(t *testing.T) {
	_, err := Assemble(tableOf("a"), brokenSource{}, DefaultOptions(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")

	_, err = Assemble(tableOf("a"), mapSource{"a": []byte("not a png")}, DefaultOptions(), nil)
	require.Error(t, err)
}

func TestAssembleWithStoreAndWriteFile(t *testing.T) {
	dir := t.TempDir()
	store := histogram.Store{Dir: filepath.Join(dir, "plots")}
	img, err := histogram.Render("a", []float64{1, 2, 2, 3, 5}, histogram.DefaultOptions())
	require.NoError(t, err)
	_, err = store.Save(img)
	require.NoError(t, err)

	doc, err := Assemble(tableOf("a", "b"), store, DefaultOptions(), nil)
	require.NoError(t, err)
	assert.NotNil(t, doc.Thumbnails[0].PNG)
	assert.Nil(t, doc.Thumbnails[1].PNG)

	out := filepath.Join(dir, "report.docx")
	require.NoError(t, doc.WriteFile(out))
	zr, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer zr.Close()
	assert.Len(t, zr.File, 6)
}

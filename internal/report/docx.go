package report

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/statsheet/internal/analysis"
	"github.com/KaramelBytes/statsheet/internal/utils"
)

// Font sizes in half-points.
const (
	titleSize = 28 // 14pt
	tableSize = 16 // 8pt
)

const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"

	relImage  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relStyles = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relOffice = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
)

type part struct {
	name string
	data []byte
}

// WriteDOCX serializes the document as a WordprocessingML package.
func (d *Document) WriteDOCX(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, p := range d.parts() {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", p.name, err)
		}
		if _, err := f.Write(p.data); err != nil {
			return fmt.Errorf("write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close docx: %w", err)
	}
	return nil
}

// WriteFile atomically replaces path with the DOCX form of the document.
func (d *Document) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := d.WriteDOCX(&buf); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

func (d *Document) parts() []part {
	var media []part
	var imageRels strings.Builder
	relIDs := make([]string, len(d.Thumbnails))
	for i, th := range d.Thumbnails {
		if th.PNG == nil {
			continue
		}
		n := len(media) + 1
		target := fmt.Sprintf("media/image%d.png", n)
		relIDs[i] = fmt.Sprintf("rId%d", n+1) // rId1 is the style sheet
		media = append(media, part{name: "word/" + target, data: th.PNG})
		fmt.Fprintf(&imageRels, `<Relationship Id="%s" Type="%s" Target="%s"/>`, relIDs[i], relImage, target)
	}

	out := []part{
		{name: "[Content_Types].xml", data: []byte(contentTypes)},
		{name: "_rels/.rels", data: []byte(xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="` + relOffice + `" Target="word/document.xml"/></Relationships>`)},
		{name: "word/_rels/document.xml.rels", data: []byte(xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="` + relStyles + `" Target="styles.xml"/>` + imageRels.String() + `</Relationships>`)},
		{name: "word/styles.xml", data: []byte(stylesXML)},
		{name: "word/document.xml", data: []byte(d.documentXML(relIDs))},
	}
	return append(out, media...)
}

const contentTypes = xml.Header + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Default Extension="png" ContentType="image/png"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`</Types>`

const stylesXML = xml.Header + `<w:styles xmlns:w="` + nsW + `">` +
	`<w:docDefaults><w:rPrDefault><w:rPr><w:sz w:val="22"/></w:rPr></w:rPrDefault>` +
	`<w:pPrDefault><w:pPr><w:spacing w:after="0" w:line="240" w:lineRule="auto"/></w:pPr></w:pPrDefault></w:docDefaults>` +
	`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style>` +
	`<w:style w:type="table" w:default="1" w:styleId="TableNormal"><w:name w:val="Normal Table"/>` +
	`<w:tblPr><w:tblInd w:w="0" w:type="dxa"/><w:tblCellMar><w:top w:w="0" w:type="dxa"/><w:left w:w="108" w:type="dxa"/>` +
	`<w:bottom w:w="0" w:type="dxa"/><w:right w:w="108" w:type="dxa"/></w:tblCellMar></w:tblPr></w:style>` +
	`<w:style w:type="table" w:styleId="TableGrid"><w:name w:val="Table Grid"/><w:basedOn w:val="TableNormal"/>` +
	`<w:tblPr><w:tblBorders>` +
	`<w:top w:val="single" w:sz="4" w:space="0" w:color="auto"/><w:left w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
	`<w:bottom w:val="single" w:sz="4" w:space="0" w:color="auto"/><w:right w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
	`<w:insideH w:val="single" w:sz="4" w:space="0" w:color="auto"/><w:insideV w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
	`</w:tblBorders></w:tblPr></w:style>` +
	`</w:styles>`

func (d *Document) documentXML(relIDs []string) string {
	var b strings.Builder
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, `<w:document xmlns:w="%s" xmlns:r="%s" xmlns:wp="%s" xmlns:a="%s" xmlns:pic="%s"><w:body>`,
		nsW, nsR, nsWP, nsA, nsPic)

	writeParagraph(&b, "center", d.Title, true, titleSize)
	d.writeSummaryTable(&b)
	b.WriteString(`<w:p/>`)
	if len(d.Thumbnails) > 0 {
		d.writeThumbnailRow(&b, relIDs)
		// A table may not close the body.
		b.WriteString(`<w:p/>`)
	}

	g := d.Geometry
	fmt.Fprintf(&b, `<w:sectPr><w:pgSz w:w="%d" w:h="%d" w:orient="landscape"/>`+
		`<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="0" w:footer="0" w:gutter="0"/></w:sectPr>`,
		mmToTwips(g.PageWidthMM), mmToTwips(g.PageHeightMM),
		mmToTwips(g.MarginTopMM), mmToTwips(g.MarginRightMM), mmToTwips(g.MarginBottomMM), mmToTwips(g.MarginLeftMM))
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func (d *Document) writeSummaryTable(b *strings.Builder) {
	cols := len(d.Header)
	if cols == 0 {
		return
	}
	colW := mmToTwips(d.Geometry.UsableWidthMM() / float64(cols))
	b.WriteString(`<w:tbl><w:tblPr><w:tblStyle w:val="TableGrid"/><w:tblW w:w="0" w:type="auto"/>` +
		`<w:tblLook w:val="04A0" w:firstRow="1" w:lastRow="0" w:firstColumn="1" w:lastColumn="0" w:noHBand="0" w:noVBand="1"/></w:tblPr><w:tblGrid>`)
	for i := 0; i < cols; i++ {
		fmt.Fprintf(b, `<w:gridCol w:w="%d"/>`, colW)
	}
	b.WriteString(`</w:tblGrid><w:tr><w:trPr><w:tblHeader/></w:trPr>`)
	for _, h := range d.Header {
		b.WriteString(`<w:tc><w:tcPr><w:tcW w:w="0" w:type="auto"/></w:tcPr>`)
		writeParagraph(b, "center", h, true, tableSize)
		b.WriteString(`</w:tc>`)
	}
	b.WriteString(`</w:tr>`)
	for _, row := range d.Rows {
		b.WriteString(`<w:tr>`)
		for _, c := range row {
			b.WriteString(`<w:tc><w:tcPr><w:tcW w:w="0" w:type="auto"/></w:tcPr>`)
			writeParagraph(b, alignment(c), c.Text, false, tableSize)
			b.WriteString(`</w:tc>`)
		}
		b.WriteString(`</w:tr>`)
	}
	b.WriteString(`</w:tbl>`)
}

func alignment(c analysis.Cell) string {
	if c.Numeric {
		return "right"
	}
	return "left"
}

func (d *Document) writeThumbnailRow(b *strings.Builder, relIDs []string) {
	l := d.Layout
	cellW := mmToTwips(l.CellWidthMM)
	fmt.Fprintf(b, `<w:tbl><w:tblPr><w:tblW w:w="%d" w:type="dxa"/><w:tblLayout w:type="fixed"/>`+
		`<w:tblCellMar><w:left w:w="0" w:type="dxa"/><w:right w:w="0" w:type="dxa"/></w:tblCellMar></w:tblPr><w:tblGrid>`,
		cellW*len(d.Thumbnails))
	for range d.Thumbnails {
		fmt.Fprintf(b, `<w:gridCol w:w="%d"/>`, cellW)
	}
	b.WriteString(`</w:tblGrid><w:tr>`)
	for i, th := range d.Thumbnails {
		fmt.Fprintf(b, `<w:tc><w:tcPr><w:tcW w:w="%d" w:type="dxa"/></w:tcPr><w:p><w:pPr><w:jc w:val="center"/></w:pPr>`, cellW)
		if th.PNG != nil {
			b.WriteString(`<w:r>`)
			writeInlinePicture(b, i+1, relIDs[i], th, l.ImageWidthMM)
			b.WriteString(`</w:r>`)
		}
		b.WriteString(`</w:p></w:tc>`)
	}
	b.WriteString(`</w:tr></w:tbl>`)
}

func writeInlinePicture(b *strings.Builder, id int, relID string, th Thumbnail, widthMM float64) {
	cx, cy := mmToEMU(widthMM), mmToEMU(th.HeightMM(widthMM))
	name := escape(th.Name)
	fmt.Fprintf(b, `<w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="%d" cy="%d"/><wp:docPr id="%d" name="%s"/>`+
		`<wp:cNvGraphicFramePr><a:graphicFrameLocks noChangeAspect="1"/></wp:cNvGraphicFramePr>`+
		`<a:graphic><a:graphicData uri="%s"><pic:pic>`+
		`<pic:nvPicPr><pic:cNvPr id="%d" name="%s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing>`,
		cx, cy, id, name, nsPic, id, name, relID, cx, cy)
}

func writeParagraph(b *strings.Builder, jc, text string, bold bool, size int) {
	fmt.Fprintf(b, `<w:p><w:pPr><w:jc w:val="%s"/></w:pPr><w:r><w:rPr>`, jc)
	if bold {
		b.WriteString(`<w:b/>`)
	}
	fmt.Fprintf(b, `<w:sz w:val="%d"/><w:szCs w:val="%d"/></w:rPr><w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
		size, size, escape(text))
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

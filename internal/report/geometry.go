package report

// Geometry is the page size and margins of the report, in millimetres.
type Geometry struct {
	PageWidthMM    float64
	PageHeightMM   float64
	MarginTopMM    float64
	MarginRightMM  float64
	MarginBottomMM float64
	MarginLeftMM   float64
}

// A4Landscape is a 297 x 210 mm page with 10 mm margins on every side.
func A4Landscape() Geometry {
	return Geometry{
		PageWidthMM:    297,
		PageHeightMM:   210,
		MarginTopMM:    10,
		MarginRightMM:  10,
		MarginBottomMM: 10,
		MarginLeftMM:   10,
	}
}

// UsableWidthMM is the page width inside the left and right margins.
func (g Geometry) UsableWidthMM() float64 {
	return g.PageWidthMM - g.MarginLeftMM - g.MarginRightMM
}

// DefaultImageWidthMM is the nominal thumbnail width.
const DefaultImageWidthMM = 25

// ThumbnailLayout describes how N thumbnails share the usable page width.
type ThumbnailLayout struct {
	Count        int
	CellWidthMM  float64
	ImageWidthMM float64
	// RowWidthMM is the width the images need side by side.
	RowWidthMM float64
	// Overflow is set when the images do not fit the usable width. The row
	// is still emitted at nominal size.
	Overflow bool
}

// LayoutThumbnails splits the usable width of g evenly across n cells, each
// holding an image of the given nominal width.
func LayoutThumbnails(n int, g Geometry, imageWidthMM float64) ThumbnailLayout {
	if imageWidthMM <= 0 {
		imageWidthMM = DefaultImageWidthMM
	}
	l := ThumbnailLayout{Count: n, ImageWidthMM: imageWidthMM}
	if n <= 0 {
		return l
	}
	usable := g.UsableWidthMM()
	l.CellWidthMM = usable / float64(n)
	l.RowWidthMM = float64(n) * imageWidthMM
	l.Overflow = l.RowWidthMM > usable
	return l
}

// Unit conversions for WordprocessingML.
const (
	emuPerMM   = 36000
	twipsPerMM = 1440 / 25.4
)

func mmToTwips(mm float64) int { return int(mm*twipsPerMM + 0.5) }

func mmToEMU(mm float64) int64 { return int64(mm*emuPerMM + 0.5) }

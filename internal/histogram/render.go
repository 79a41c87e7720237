package histogram

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"
)

// Options controls the rendered image size.
type Options struct {
	WidthIn  float64
	HeightIn float64
	DPI      float64
}

// DefaultOptions is a 4 x 1 inch strip at 300 dpi.
func DefaultOptions() Options {
	return Options{WidthIn: 4, HeightIn: 1, DPI: 300}
}

// Pixels returns the canvas size in pixels.
func (o Options) Pixels() (w, h int) {
	o = o.normalized()
	return int(o.WidthIn*o.DPI + 0.5), int(o.HeightIn*o.DPI + 0.5)
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.WidthIn <= 0 {
		o.WidthIn = d.WidthIn
	}
	if o.HeightIn <= 0 {
		o.HeightIn = d.HeightIn
	}
	if o.DPI <= 0 {
		o.DPI = d.DPI
	}
	return o
}

// Image is the rendered histogram of one variable.
type Image struct {
	Name string
	// Placeholder is set when the variable had no values to plot.
	Placeholder bool
	Bins        []Bin
	PNG         []byte
}

var (
	barColor  = drawing.ColorFromHex("4c72b0")
	edgeColor = drawing.ColorWhite
	tickColor = drawing.ColorFromHex("333333")
)

// Render draws the histogram of values. With no values it returns a blank
// placeholder of the same pixel size so the report layout stays stable.
func Render(name string, values []float64, opt Options) (*Image, error) {
	opt = opt.normalized()
	w, h := opt.Pixels()
	k := BinCount(len(values))
	if k == 0 {
		data, err := encodePNG(blank(w, h))
		if err != nil {
			return nil, fmt.Errorf("placeholder for %s: %w", name, err)
		}
		return &Image{Name: name, Placeholder: true, PNG: data}, nil
	}

	bins := Compute(values, k)
	if len(bins) == 0 {
		return nil, fmt.Errorf("histogram %s: no bins over [%g, %g]", name, floats.Min(values), floats.Max(values))
	}
	lo, hi := bins[0].Lo, bins[len(bins)-1].Hi
	// Bars are placed on bin positions rather than data values so the axis never
	// spans more than float64 can hold; tick labels carry the real edges.
	n := float64(len(bins))
	xs := make([]float64, len(bins))
	ys := make([]float64, len(bins))
	peak := 1.0
	for i, b := range bins {
		xs[i] = float64(i) + 0.5
		ys[i] = float64(b.Count)
		if ys[i] > peak {
			peak = ys[i]
		}
	}

	ch := chart.Chart{
		Width:  w,
		Height: h,
		DPI:    opt.DPI,
		Background: chart.Style{
			Padding:   chart.Box{Top: 4, Left: 12, Right: 12, Bottom: 2},
			FillColor: drawing.ColorWhite,
		},
		Canvas: chart.Style{FillColor: drawing.ColorWhite},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: n},
			Ticks: []chart.Tick{
				{Value: 0, Label: tickLabel(lo)},
				{Value: n / 2, Label: tickLabel(lo/2 + hi/2)},
				{Value: n, Label: tickLabel(hi)},
			},
			Style: chart.Style{
				FontSize:    5,
				FontColor:   tickColor,
				StrokeColor: tickColor,
				StrokeWidth: 0.5,
			},
		},
		YAxis: chart.YAxis{
			Style: chart.Style{Hidden: true},
			Range: &chart.ContinuousRange{Min: 0, Max: peak},
		},
		Series: []chart.Series{
			chart.HistogramSeries{
				Name: name,
				Style: chart.Style{
					FillColor:   barColor,
					StrokeColor: edgeColor,
					StrokeWidth: 0.5,
				},
				InnerSeries: chart.ContinuousSeries{XValues: xs, YValues: ys},
			},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render histogram %s: %w", name, err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode histogram %s: %w", name, err)
	}
	data, err := encodePNG(cropToContent(img))
	if err != nil {
		return nil, fmt.Errorf("encode histogram %s: %w", name, err)
	}
	return &Image{Name: name, Bins: bins, PNG: data}, nil
}

func tickLabel(v float64) string {
	return strconv.FormatFloat(v, 'g', 3, 64)
}

func blank(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

// cropToContent trims surrounding white margins. A fully white image is returned
// unchanged.
func cropToContent(img image.Image) image.Image {
	b := img.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if isWhite(img.At(x, y)) {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < minX || maxY < minY {
		return img
	}
	rect := image.Rect(minX, minY, maxX+1, maxY+1)
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(out, out.Bounds(), img, rect.Min, draw.Src)
	return out
}

func isWhite(c color.Color) bool {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return true
	}
	const near = 0xfa00
	return r >= near && g >= near && b >= near
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Size decodes the pixel dimensions of a PNG.
func Size(data []byte) (w, h int, err error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

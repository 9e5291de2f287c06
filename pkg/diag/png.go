// 6 Mar 2024

package diag

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"github.com/golang/freetype"
	"golang.org/x/image/font/gofont/goregular"
)

// Sizes for the heat map, in pixels.
const (
	cellSz   = 14
	margin   = 64 // room for labels on the left and the top
	fontSz   = 8  // points
	fontDPI  = 72
	maxLabel = 10 // labels are cut to this many characters
)

var badColor = color.RGBA{R: 220, A: 255} // NaN and infinite values

// DumpPNG draws a labelled matrix as a grey scale heat map to
// Dir/name.png. Small values are dark.
func (c Config) DumpPNG(name string, rows, cols []string, val func(i, j int) float64) error {
	if !c.Dumping() {
		return nil
	}
	img := heatMap(rows, cols, val)
	if err := drawLabels(img, rows, cols); err != nil {
		return fmt.Errorf("debug png labels: %w", err)
	}
	fname := c.path(name + ".png")
	fp, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("debug dump: %w", err)
	}
	if err := png.Encode(fp, img); err != nil {
		fp.Close()
		return fmt.Errorf("encoding %s: %w", fname, err)
	}
	if err := fp.Close(); err != nil {
		return err
	}
	c.Printf("wrote %s", fname)
	return nil
}

// heatMap fills in the cells. The labels go on later.
func heatMap(rows, cols []string, val func(i, j int) float64) *image.RGBA {
	nr, nc := len(rows), len(cols)
	img := image.NewRGBA(image.Rect(0, 0, margin+nc*cellSz, margin+nr*cellSz))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			if v := val(i, j); !math.IsNaN(v) && !math.IsInf(v, 0) {
				lo, hi = math.Min(lo, v), math.Max(hi, v)
			}
		}
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			var col color.Color = badColor
			if v := val(i, j); !math.IsNaN(v) && !math.IsInf(v, 0) {
				g := uint8(255 * (v - lo) / span)
				col = color.Gray{Y: g}
			}
			x0, y0 := margin+j*cellSz, margin+i*cellSz
			r := image.Rect(x0, y0, x0+cellSz-1, y0+cellSz-1)
			draw.Draw(img, r, &image.Uniform{C: col}, image.Point{}, draw.Src)
		}
	}
	return img
}

// drawLabels writes row labels down the left and column labels along
// the top, one per cell.
func drawLabels(img *image.RGBA, rows, cols []string) error {
	f, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return err
	}
	ctx := freetype.NewContext()
	ctx.SetDPI(fontDPI)
	ctx.SetFont(f)
	ctx.SetFontSize(fontSz)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.Black)

	for i, r := range rows {
		pt := freetype.Pt(2, margin+i*cellSz+cellSz-3)
		if _, err := ctx.DrawString(cut(r), pt); err != nil {
			return err
		}
	}
	for j, s := range cols { // stagger column labels so they do not overlap
		y := margin/2 - 4
		if j%2 == 1 {
			y = margin - 4
		}
		if _, err := ctx.DrawString(cut(s), freetype.Pt(margin+j*cellSz, y)); err != nil {
			return err
		}
	}
	return nil
}

func cut(s string) string {
	if len(s) > maxLabel {
		return s[:maxLabel]
	}
	return s
}

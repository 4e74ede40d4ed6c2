// Package demo holds the renderer shown by the lumiwin command.
package demo

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	BorderColor = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
	BarColor    = color.RGBA{R: 0xff, G: 0xd0, B: 0x40, A: 0xff}
	TextColor   = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

const (
	borderWidth = 2
	barSpeed    = 4 // pixels per frame
)

// Pattern draws a test card: a gradient, a bar sweeping across it, a border
// and a caption with the title and framebuffer size.
type Pattern struct {
	Title string
}

func (p Pattern) Render(dst draw.Image, frame int) {
	b := dst.Bounds()
	if b.Empty() {
		return
	}
	w, h := b.Dx(), b.Dy()

	if rgba, ok := dst.(*image.RGBA); ok {
		gradientRGBA(rgba)
	} else {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				dst.Set(x, y, gradientAt(x-b.Min.X, y-b.Min.Y, w, h))
			}
		}
	}

	barW := max(w/10, 1)
	x0 := b.Min.X + (frame*barSpeed)%(w+barW) - barW
	bar := image.Rect(x0, b.Min.Y, x0+barW, b.Max.Y).Intersect(b)
	draw.Draw(dst, bar, image.NewUniform(BarColor), image.Point{}, draw.Src)

	border := image.NewUniform(BorderColor)
	bw := min(borderWidth, w, h)
	for _, r := range []image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+bw),
		image.Rect(b.Min.X, b.Max.Y-bw, b.Max.X, b.Max.Y),
		image.Rect(b.Min.X, b.Min.Y, b.Min.X+bw, b.Max.Y),
		image.Rect(b.Max.X-bw, b.Min.Y, b.Max.X, b.Max.Y),
	} {
		draw.Draw(dst, r, border, image.Point{}, draw.Src)
	}

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(TextColor),
		Face: basicfont.Face7x13,
	}
	lineHeight := basicfont.Face7x13.Metrics().Height
	d.Dot = fixed.P(b.Min.X+8, b.Min.Y+8).Add(fixed.Point26_6{Y: basicfont.Face7x13.Metrics().Ascent})
	d.DrawString(p.Title)
	d.Dot = fixed.Point26_6{X: fixed.I(b.Min.X + 8), Y: d.Dot.Y + lineHeight}
	d.DrawString(fmt.Sprintf("%dx%d frame %d", w, h, frame))
}

func gradientAt(x, y, w, h int) color.RGBA {
	return color.RGBA{
		R: uint8(x * 0xff / max(w-1, 1)),
		G: uint8(y * 0xff / max(h-1, 1)),
		B: 0x60,
		A: 0xff,
	}
}

func gradientRGBA(img *image.RGBA) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			c := gradientAt(x, y, w, h)
			row[x*4+0] = c.R
			row[x*4+1] = c.G
			row[x*4+2] = c.B
			row[x*4+3] = c.A
		}
	}
}

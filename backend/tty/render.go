package tty

import (
	"image"
	"image/color"
	"image/draw"
	"io"
	"strings"

	"github.com/muesli/termenv"
	xdraw "golang.org/x/image/draw"
)

const halfBlock = "▀"

// fitRect returns the largest rectangle with the aspect ratio of src that
// fits centered inside dst.
func fitRect(dst, src image.Rectangle) image.Rectangle {
	dw, dh := dst.Dx(), dst.Dy()
	sw, sh := src.Dx(), src.Dy()
	if dw <= 0 || dh <= 0 || sw <= 0 || sh <= 0 {
		return image.Rectangle{}
	}
	w, h := dw, sh*dw/sw
	if h > dh {
		w, h = sw*dh/sh, dh
	}
	w, h = max(w, 1), max(h, 1)
	x := dst.Min.X + (dw-w)/2
	y := dst.Min.Y + (dh-h)/2
	return image.Rect(x, y, x+w, y+h)
}

// fit scales src into dst keeping its aspect ratio; the uncovered border
// is black.
func fit(dst *image.RGBA, src *image.RGBA) {
	if dst.Bounds().Eq(src.Bounds()) {
		copy(dst.Pix, src.Pix)
		return
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	r := fitRect(dst.Bounds(), src.Bounds())
	if r.Empty() {
		return
	}
	xdraw.ApproxBiLinear.Scale(dst, r, src, src.Bounds(), xdraw.Src, nil)
}

// encodeCells writes cells as rows of half blocks; cells has twice as many
// pixel rows as the terminal has lines.
func encodeCells(w io.Writer, p termenv.Profile, cells *image.RGBA) {
	b := cells.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteString("\r\n")
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			top := cells.RGBAAt(x, y)
			bottom := color.RGBA{A: 0xff}
			if y+1 < b.Max.Y {
				bottom = cells.RGBAAt(x, y+1)
			}
			sb.WriteString(p.String(halfBlock).
				Foreground(p.FromColor(top)).
				Background(p.FromColor(bottom)).
				String())
		}
	}
	io.WriteString(w, sb.String())
}

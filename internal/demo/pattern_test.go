package demo

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func TestPattern_Border(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 120, 60))
	Pattern{Title: "hello"}.Render(img, 0)

	for _, p := range []image.Point{{0, 0}, {119, 59}, {1, 30}, {60, 58}} {
		if got := img.RGBAAt(p.X, p.Y); got != BorderColor {
			t.Fatalf("expected border at %v, got %v", p, got)
		}
	}
}

func TestPattern_DrawsText(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 60))
	Pattern{Title: "hello"}.Render(img, 0)

	found := false
	for y := 8; y < 40 && !found; y++ {
		for x := 8; x < 60; x++ {
			if img.RGBAAt(x, y) == TextColor {
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatalf("expected caption pixels near the top left corner")
	}
}

func TestPattern_BarMoves(t *testing.T) {
	a := image.NewRGBA(image.Rect(0, 0, 100, 50))
	b := image.NewRGBA(image.Rect(0, 0, 100, 50))
	Pattern{}.Render(a, 5)
	Pattern{}.Render(b, 6)

	if bytes.Equal(a.Pix, b.Pix) {
		t.Fatalf("expected consecutive frames to differ")
	}
	// frame 5: bar covers x in [10, 20)
	if got := a.RGBAAt(15, 45); got != BarColor {
		t.Fatalf("expected bar at x=15, got %v", got)
	}
}

func TestPattern_GenericImageMatchesRGBA(t *testing.T) {
	fast := image.NewRGBA(image.Rect(0, 0, 40, 30))
	slow := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	Pattern{Title: "x"}.Render(fast, 3)
	Pattern{Title: "x"}.Render(slow, 3)

	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			if color.RGBAModel.Convert(slow.At(x, y)) != fast.At(x, y) {
				t.Fatalf("pixel %d,%d differs: %v vs %v", x, y, slow.At(x, y), fast.At(x, y))
			}
		}
	}
}

func TestPattern_TinyAndEmpty(t *testing.T) {
	Pattern{Title: "tiny"}.Render(image.NewRGBA(image.Rect(0, 0, 1, 1)), 7)
	Pattern{}.Render(image.NewRGBA(image.Rect(0, 0, 0, 0)), 0)
}

package compare

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/fpang/property-photo-studio/internal/studio"
)

var (
	red  = color.RGBA{R: 200, A: 255}
	blue = color.RGBA{B: 200, A: 255}
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func near(got color.RGBA, want color.RGBA) bool {
	d := func(a, b uint8) int {
		if a > b {
			return int(a - b)
		}
		return int(b - a)
	}
	return d(got.R, want.R) <= 2 && d(got.G, want.G) <= 2 && d(got.B, want.B) <= 2
}

func TestRender_Split(t *testing.T) {
	c := NewCanvas(solid(20, 10, red), solid(40, 20, blue), 0, 0)
	if _, w := c.Bounds(); w != 40 {
		t.Fatalf("width = %v, want after-image width 40", w)
	}

	img, err := c.Render()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		x    int
		want color.RGBA
	}{
		{5, red},
		{15, red},
		{20, DividerColor},
		{25, blue},
		{39, blue},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, 10); !near(got, tt.want) {
			t.Errorf("pixel %d = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestRender_DrivenBySlider(t *testing.T) {
	c := NewCanvas(solid(40, 20, red), solid(40, 20, blue), 0, 0)
	s := studio.NewComparisonSlider(c)

	s.PointerDown(10)
	s.PointerUp()
	if c.Split() != 0.25 || c.SplitX() != 10 {
		t.Fatalf("split = %v (x %d), want 0.25 (x 10)", c.Split(), c.SplitX())
	}

	img, err := c.Render()
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(5, 5); !near(got, red) {
		t.Errorf("left pixel = %v, want red", got)
	}
	if got := img.RGBAAt(20, 5); !near(got, blue) {
		t.Errorf("right pixel = %v, want blue", got)
	}

	s.PointerDown(-100)
	if c.SplitX() != 2 {
		t.Errorf("clamped split x = %d, want 2", c.SplitX())
	}
}

func TestWritePNG(t *testing.T) {
	c := NewCanvas(solid(8, 8, red), solid(8, 8, blue), 0, 0)
	var buf bytes.Buffer
	if err := c.WritePNG(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 8 {
		t.Errorf("bounds = %v, want 8x8", b)
	}
}

func TestRender_MissingImage(t *testing.T) {
	c := NewCanvas(nil, nil, 1024, 768)
	if _, w := c.Bounds(); w != 1024 {
		t.Errorf("width = %v, want 1024", w)
	}
	if _, err := c.Render(); !errors.Is(err, ErrMissingImage) {
		t.Errorf("Render() error = %v, want ErrMissingImage", err)
	}
}

func TestDecode(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(3, 2, red)); err != nil {
		t.Fatal(err)
	}
	img, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 3 {
		t.Errorf("width = %d, want 3", img.Bounds().Dx())
	}
	if _, err := Decode([]byte("nope")); err == nil {
		t.Error("Decode(garbage) error = nil")
	}
}

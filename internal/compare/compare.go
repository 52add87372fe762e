// Package compare renders the before/after comparison as a still image.
//
// A Canvas is a studio.SliderSurface: the comparison slider sets its split
// and Render composites the before-image left of the boundary and the
// after-image right of it, with a divider line at the boundary.
package compare

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"math"
	"sync"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DividerWidth is the width of the boundary line in pixels.
const DividerWidth = 2

// DividerColor is the colour of the boundary line.
var DividerColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// ErrMissingImage is returned by Render when either side is unavailable.
var ErrMissingImage = errors.New("comparison needs both images")

// Decode decodes an image in any registered format.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Canvas holds both sides of a comparison at the after-image's size.
type Canvas struct {
	before, after image.Image
	width, height int

	mu    sync.Mutex
	split float64
}

// NewCanvas creates a canvas sized to after, or to width×height when after
// is nil. Either image may be nil; Render then fails.
func NewCanvas(before, after image.Image, width, height int) *Canvas {
	if after != nil {
		b := after.Bounds()
		width, height = b.Dx(), b.Dy()
	}
	return &Canvas{
		before: before,
		after:  after,
		width:  width,
		height: height,
		split:  0.5,
	}
}

// Bounds reports the canvas in pixel units starting at zero.
func (c *Canvas) Bounds() (left, width float64) {
	return 0, float64(c.width)
}

// SetSplit moves the boundary.
func (c *Canvas) SetSplit(fraction float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.split = fraction
}

// Split returns the current boundary fraction.
func (c *Canvas) Split() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.split
}

// SplitX returns the boundary column.
func (c *Canvas) SplitX() int {
	return int(math.Round(c.Split() * float64(c.width)))
}

// Render composites both images at the current split.
func (c *Canvas) Render() (*image.RGBA, error) {
	if c.before == nil || c.after == nil {
		return nil, ErrMissingImage
	}
	if c.width <= 0 || c.height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", c.width, c.height)
	}

	rect := image.Rect(0, 0, c.width, c.height)
	dst := image.NewRGBA(rect)
	draw.CatmullRom.Scale(dst, rect, c.before, c.before.Bounds(), draw.Src, nil)

	// The after-image is already canvas-sized; only its right part is shown.
	x := c.SplitX()
	after := image.Rectangle{Min: image.Pt(x, 0), Max: rect.Max}
	draw.Draw(dst, after, c.after, c.after.Bounds().Min.Add(image.Pt(x, 0)), draw.Src)

	line := image.Rect(x-DividerWidth/2, 0, x-DividerWidth/2+DividerWidth, c.height).Intersect(rect)
	draw.Draw(dst, line, image.NewUniform(DividerColor), image.Point{}, draw.Src)
	return dst, nil
}

// WritePNG renders the composite and encodes it as PNG.
func (c *Canvas) WritePNG(w io.Writer) error {
	img, err := c.Render()
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode comparison: %w", err)
	}
	return nil
}

package studio

import (
	"math"
	"sync"
)

// Slider bounds. The boundary never reaches either edge so a sliver of
// each image always stays visible.
const (
	MinFraction     = 0.05
	MaxFraction     = 0.95
	InitialFraction = 0.5
)

// SliderSurface is the container the comparison slider drives.
type SliderSurface interface {
	// Bounds returns the container's left edge and width in pointer units.
	Bounds() (left, width float64)
	// SetSplit clips the after-image to the region right of fraction and
	// moves the divider to the same offset.
	SetSplit(fraction float64)
}

// ComputeFraction maps a pointer position to a boundary fraction clamped
// to [MinFraction, MaxFraction]. A container without width yields
// InitialFraction.
func ComputeFraction(pointerX, left, width float64) float64 {
	if width <= 0 || math.IsNaN(pointerX) {
		return InitialFraction
	}
	f := (pointerX - left) / width
	return math.Max(MinFraction, math.Min(MaxFraction, f))
}

// ComparisonSlider maps pointer and touch drags to the reveal boundary of
// one displayed enhancement. It is idle until a press inside the container
// and dragging until a release anywhere.
type ComparisonSlider struct {
	surface SliderSurface

	mu       sync.Mutex
	dragging bool
	position float64
}

// NewComparisonSlider creates an idle slider and applies InitialFraction.
// A nil surface is allowed; the slider then only tracks state.
func NewComparisonSlider(surface SliderSurface) *ComparisonSlider {
	s := &ComparisonSlider{surface: surface, position: InitialFraction}
	if surface != nil {
		surface.SetSplit(InitialFraction)
	}
	return s
}

// PointerDown starts a drag and applies the position under the pointer.
func (s *ComparisonSlider) PointerDown(x float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dragging = true
	s.apply(x)
}

// PointerMove updates the boundary while dragging.
func (s *ComparisonSlider) PointerMove(x float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dragging {
		s.apply(x)
	}
}

// PointerUp ends a drag. It is observed globally, so it has no position.
func (s *ComparisonSlider) PointerUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dragging = false
}

// TouchStart is PointerDown for touch input.
func (s *ComparisonSlider) TouchStart(x float64) {
	s.PointerDown(x)
}

// TouchMove updates the boundary while dragging and reports whether the
// default scroll behavior must be suppressed.
func (s *ComparisonSlider) TouchMove(x float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dragging {
		return false
	}
	s.apply(x)
	return true
}

// TouchEnd is PointerUp for touch input.
func (s *ComparisonSlider) TouchEnd() {
	s.PointerUp()
}

// Dragging reports whether a drag is in progress.
func (s *ComparisonSlider) Dragging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dragging
}

// Position returns the current boundary fraction.
func (s *ComparisonSlider) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// apply must be called with s.mu held.
func (s *ComparisonSlider) apply(x float64) {
	if s.surface == nil || math.IsNaN(x) {
		return
	}
	left, width := s.surface.Bounds()
	if width <= 0 {
		return
	}
	s.position = ComputeFraction(x, left, width)
	s.surface.SetSplit(s.position)
}

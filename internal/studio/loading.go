package studio

import "sync"

// LoadingIndicator tracks which controls are busy and who holds the
// blocking overlay. The overlay is hidden when its last holder releases it.
type LoadingIndicator struct {
	r Renderer

	mu      sync.Mutex
	busy    map[Control]bool
	overlay map[Control]bool
}

// NewLoadingIndicator creates an idle indicator.
func NewLoadingIndicator(r Renderer) *LoadingIndicator {
	return &LoadingIndicator{
		r:       r,
		busy:    make(map[Control]bool),
		overlay: make(map[Control]bool),
	}
}

// Begin marks c busy and shows the overlay with message. It returns false,
// changing nothing, if c is already busy.
func (l *LoadingIndicator) Begin(c Control, message string) bool {
	l.mu.Lock()
	if l.busy[c] {
		l.mu.Unlock()
		return false
	}
	l.busy[c] = true
	l.overlay[c] = true
	l.mu.Unlock()

	l.r.SetBusy(c, true)
	l.r.ShowOverlay(message)
	return true
}

// EndOverlay releases c's hold on the overlay. Idempotent.
func (l *LoadingIndicator) EndOverlay(c Control) {
	l.mu.Lock()
	if !l.overlay[c] {
		l.mu.Unlock()
		return
	}
	delete(l.overlay, c)
	last := len(l.overlay) == 0
	l.mu.Unlock()

	if last {
		l.r.HideOverlay()
	}
}

// EndBusy re-enables c. Idempotent.
func (l *LoadingIndicator) EndBusy(c Control) {
	l.mu.Lock()
	if !l.busy[c] {
		l.mu.Unlock()
		return
	}
	delete(l.busy, c)
	l.mu.Unlock()

	l.r.SetBusy(c, false)
}

// End releases both the overlay and the busy state of c.
func (l *LoadingIndicator) End(c Control) {
	l.EndOverlay(c)
	l.EndBusy(c)
}

// Busy reports whether c is busy.
func (l *LoadingIndicator) Busy(c Control) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.busy[c]
}

// OverlayVisible reports whether any control holds the overlay.
func (l *LoadingIndicator) OverlayVisible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.overlay) > 0
}

package studio

import (
	"mime"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// UploadState is the visible state of the upload area.
type UploadState string

const (
	UploadEmpty      UploadState = "empty"
	UploadPreviewing UploadState = "previewing"
)

// ImageHandle is a user-selected image.
type ImageHandle struct {
	Name      string
	MediaType string
	Data      []byte
	// Caption is an optional one-line description shown under the preview.
	Caption string
}

// IsImage reports whether the declared media type is an image type.
func (h ImageHandle) IsImage() bool {
	mt, _, err := mime.ParseMediaType(h.MediaType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mt, "image/")
}

// UploadSession owns the current image. Changing it notifies reset observers.
type UploadSession struct {
	r Renderer

	mu        sync.Mutex
	current   *ImageHandle
	id        string
	observers []func()
}

// NewUploadSession creates an empty session.
func NewUploadSession(r Renderer) *UploadSession {
	return &UploadSession{r: r}
}

// OnReset registers fn to run whenever the image is replaced or removed.
func (s *UploadSession) OnReset(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Select makes img the current image. Non-image media types are ignored and
// Select returns false.
func (s *UploadSession) Select(img ImageHandle) bool {
	if !img.IsImage() {
		log.Debug().
			Str("name", img.Name).
			Str("media_type", img.MediaType).
			Msg("Ignoring non-image selection")
		return false
	}

	s.mu.Lock()
	s.current = &img
	s.id = uuid.NewString()
	id := s.id
	s.mu.Unlock()

	log.Info().
		Str("session_id", id).
		Str("name", img.Name).
		Str("media_type", img.MediaType).
		Int("bytes", len(img.Data)).
		Msg("Image selected")

	s.r.ShowUpload(UploadPreviewing, &img)
	s.reset()
	return true
}

// Drop handles files dropped on the upload area. Only the first file is
// considered; anything else, and non-image files, are silently ignored.
func (s *UploadSession) Drop(files []ImageHandle) bool {
	if len(files) == 0 {
		return false
	}
	return s.Select(files[0])
}

// Remove clears the current image.
func (s *UploadSession) Remove() {
	s.mu.Lock()
	s.current = nil
	s.id = ""
	s.mu.Unlock()

	log.Info().Msg("Image removed")

	s.r.ClearFileInput()
	s.r.ShowUpload(UploadEmpty, nil)
	s.reset()
}

// Current returns the current image, or nil.
func (s *UploadSession) Current() *ImageHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// State returns the visible upload state.
func (s *UploadSession) State() UploadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return UploadEmpty
	}
	return UploadPreviewing
}

// ID identifies the current selection in logs. Empty when no image is set.
func (s *UploadSession) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *UploadSession) reset() {
	s.mu.Lock()
	observers := append([]func(){}, s.observers...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn()
	}
}

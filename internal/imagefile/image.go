// Package imagefile turns files on disk into studio image handles.
//
// The media type comes from the extension table, falling back to content
// sniffing. EXIF camera and date are read with evanoberholster/imagemeta
// and shown as the preview caption.
package imagefile

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/fpang/property-photo-studio/internal/studio"
	"github.com/rs/zerolog/log"
)

// MaxFileSize caps how much of a file is read into memory.
const MaxFileSize = 50 << 20

// SupportedImageExtensions maps known image extensions to media types.
var SupportedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
}

// MediaTypeFor returns the media type for name, sniffing data when the
// extension is unknown.
func MediaTypeFor(name string, data []byte) string {
	if mt, ok := SupportedImageExtensions[strings.ToLower(filepath.Ext(name))]; ok {
		return mt
	}
	return http.DetectContentType(data)
}

// Metadata is the EXIF subset shown with the preview.
type Metadata struct {
	CameraMake  string
	CameraModel string
	DateTaken   time.Time
	HasDate     bool
}

// Caption formats the metadata as a single preview line, e.g.
// "Canon EOS R5 · Jan 2, 2024". Empty when nothing is known.
func (m Metadata) Caption() string {
	var parts []string
	camera := strings.TrimSpace(m.CameraMake + " " + m.CameraModel)
	if camera != "" {
		parts = append(parts, camera)
	}
	if m.HasDate {
		parts = append(parts, m.DateTaken.Format("Jan 2, 2006"))
	}
	return strings.Join(parts, " · ")
}

// ExtractMetadata decodes EXIF from an in-memory image.
func ExtractMetadata(data []byte) (Metadata, error) {
	exifData, err := imagemeta.Decode(bytes.NewReader(data))
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to decode EXIF metadata: %w", err)
	}

	m := Metadata{
		CameraMake:  strings.TrimSpace(exifData.Make),
		CameraModel: strings.TrimSpace(exifData.Model),
	}
	// Priority: DateTimeOriginal > CreateDate
	if t := exifData.DateTimeOriginal(); !t.IsZero() {
		m.DateTaken, m.HasDate = t, true
	} else if t := exifData.CreateDate(); !t.IsZero() {
		m.DateTaken, m.HasDate = t, true
	}
	return m, nil
}

// Load reads path into an image handle. Files that are not images still
// load; the upload session decides whether to accept them.
func Load(path string) (studio.ImageHandle, error) {
	log.Debug().Str("path", path).Msg("Loading image file")

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return studio.ImageHandle{}, fmt.Errorf("file not found: %s", path)
		}
		return studio.ImageHandle{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return studio.ImageHandle{}, fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if info.Size() > MaxFileSize {
		return studio.ImageHandle{}, fmt.Errorf("file too large: %s (%d bytes)", path, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return studio.ImageHandle{}, fmt.Errorf("failed to read file: %w", err)
	}

	h := studio.ImageHandle{
		Name:      filepath.Base(path),
		MediaType: MediaTypeFor(path, data),
		Data:      data,
	}
	if h.IsImage() {
		meta, err := ExtractMetadata(data)
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("No EXIF metadata, continuing without it")
		} else {
			h.Caption = meta.Caption()
		}
	}

	log.Info().
		Str("path", path).
		Str("media_type", h.MediaType).
		Int64("size_bytes", info.Size()).
		Msg("Image file loaded")
	return h, nil
}

// LoadAll loads every path in order, as a multi-file drop delivers them.
func LoadAll(paths []string) ([]studio.ImageHandle, error) {
	handles := make([]studio.ImageHandle, 0, len(paths))
	for _, p := range paths {
		h, err := Load(p)
		if err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}
	return handles, nil
}

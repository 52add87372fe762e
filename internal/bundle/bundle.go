// Package bundle exports a studio session as a ZIP archive compressed with
// Zstandard (ZIP method 93).
package bundle

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fpang/property-photo-studio/internal/api"
	"github.com/fpang/property-photo-studio/internal/studio"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// ZipMethodZstd is the ZIP compression method ID for Zstandard (APPNOTE 6.3.7).
const ZipMethodZstd uint16 = 93

// Entry names inside the archive.
const (
	AnalysisName = "analysis.json"
	ManifestName = "session.json"
)

func init() {
	// Level 12 maps to SpeedBestCompression in klauspost/compress.
	zip.RegisterCompressor(ZipMethodZstd, func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(12)))
	})
}

// Session is everything a finished run produced. Nil parts are skipped.
type Session struct {
	ID       string
	Original *studio.ImageHandle
	Analysis *studio.AnalysisResult

	Enhancement *studio.EnhancementResult
	Enhanced    *api.Asset

	Staging *studio.StagingResult
	Staged  *api.Asset
}

// Manifest describes the archive contents.
type Manifest struct {
	SessionID     string    `json:"session_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	Original      string    `json:"original,omitempty"`
	EnhancePrompt string    `json:"enhance_prompt,omitempty"`
	EnhancedURL   string    `json:"enhanced_url,omitempty"`
	RoomType      string    `json:"room_type,omitempty"`
	Style         string    `json:"style,omitempty"`
	StagePrompt   string    `json:"stage_prompt,omitempty"`
	StagedURL     string    `json:"staged_url,omitempty"`
	Files         []string  `json:"files"`
}

type entry struct {
	name string
	data []byte
}

// Write streams the session archive to w and returns the manifest.
func Write(w io.Writer, s Session) (*Manifest, error) {
	now := time.Now().UTC()
	m := &Manifest{SessionID: s.ID, CreatedAt: now}

	var entries []entry
	if s.Original != nil {
		name := "original" + strings.ToLower(filepath.Ext(s.Original.Name))
		m.Original = s.Original.Name
		entries = append(entries, entry{name, s.Original.Data})
	}
	if s.Analysis != nil {
		data, err := json.MarshalIndent(s.Analysis, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode analysis: %w", err)
		}
		entries = append(entries, entry{AnalysisName, data})
	}
	if s.Enhancement != nil {
		m.EnhancePrompt = s.Enhancement.Prompt
		m.EnhancedURL = s.Enhancement.AfterURL
	}
	if s.Enhanced != nil {
		entries = append(entries, entry{assetName("enhanced", s.Enhanced), s.Enhanced.Data})
	}
	if s.Staging != nil {
		m.RoomType = s.Staging.RoomType
		m.Style = s.Staging.Style
		m.StagePrompt = s.Staging.Prompt
		m.StagedURL = s.Staging.ImageURL
	}
	if s.Staged != nil {
		entries = append(entries, entry{assetName("staged", s.Staged), s.Staged.Data})
	}

	for _, e := range entries {
		m.Files = append(m.Files, e.name)
	}
	manifest, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	entries = append(entries, entry{ManifestName, manifest})

	zw := zip.NewWriter(w)
	for _, e := range entries {
		header := &zip.FileHeader{
			Name:   e.name,
			Method: ZipMethodZstd,
		}
		header.SetModTime(now)

		fw, err := zw.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("create ZIP entry for %s: %w", e.name, err)
		}
		if _, err := fw.Write(e.data); err != nil {
			return nil, fmt.Errorf("write to ZIP for %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close ZIP writer: %w", err)
	}

	log.Info().
		Str("session", s.ID).
		Strs("files", m.Files).
		Msg("Session bundle written")
	return m, nil
}

func assetName(base string, a *api.Asset) string {
	ext := a.Format
	if ext == "jpeg" {
		ext = "jpg"
	}
	if ext == "" {
		return base
	}
	return base + "." + ext
}

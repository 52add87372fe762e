// Package console is a terminal studio.Renderer.
//
// Panels are printed as blocks as they are revealed. The comparison panel
// is also composited off-screen on a compare.Canvas, which the comparison
// slider drives and the CLI can save as a PNG.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/fpang/property-photo-studio/internal/api"
	"github.com/fpang/property-photo-studio/internal/compare"
	"github.com/fpang/property-photo-studio/internal/studio"
	"github.com/rs/zerolog/log"
)

const rule = "============================================"

var _ studio.Renderer = (*Console)(nil)

// AssetSource returns previously loaded generated images.
type AssetSource interface {
	Get(ref string) (*api.Asset, bool)
}

// Console prints studio state to a writer.
type Console struct {
	out    io.Writer
	assets AssetSource

	mu     sync.Mutex
	canvas *compare.Canvas
}

// New creates a console renderer. assets may be nil, in which case the
// comparison canvas has no after-image.
func New(out io.Writer, assets AssetSource) *Console {
	return &Console{out: out, assets: assets}
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) SetBusy(ctl studio.Control, busy bool) {
	log.Debug().Str("control", string(ctl)).Bool("busy", busy).Msg("Control state changed")
}

func (c *Console) ShowOverlay(message string) {
	c.printf("⏳ %s\n", message)
}

func (c *Console) HideOverlay() {}

func (c *Console) Alert(message string) {
	c.printf("⚠️  %s\n", message)
}

func (c *Console) ShowUpload(state studio.UploadState, img *studio.ImageHandle) {
	if state != studio.UploadPreviewing || img == nil {
		c.printf("Upload cleared\n")
		return
	}
	line := fmt.Sprintf("📷 %s (%s)", img.Name, humanize.Bytes(uint64(len(img.Data))))
	if img.Caption != "" {
		line += " · " + img.Caption
	}
	c.printf("%s\n", line)
}

func (c *Console) ClearFileInput() {}

func (c *Console) ShowAnalysis(v studio.AnalysisView) {
	var sb strings.Builder
	sb.WriteString("\n" + rule + "\n")
	sb.WriteString("🔍 Photo Analysis\n")
	sb.WriteString(rule + "\n")
	sb.WriteString(v.Badge)
	if v.Tier != studio.TierNone {
		sb.WriteString(" [" + string(v.Tier) + "]")
	}
	sb.WriteString("\n")

	if len(v.Issues) > 0 {
		sb.WriteString("\nIssues:\n")
		for _, issue := range v.Issues {
			sb.WriteString("  • " + issue + "\n")
		}
	}

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  Lighting: " + v.Suggestions.Lighting + "\n")
	sb.WriteString("  Removal:  " + v.Suggestions.Removal + "\n")
	sb.WriteString("  Staging:  " + v.Suggestions.Staging + "\n")
	c.printf("%s", sb.String())
}

// ShowComparison prints the panel and returns a canvas holding both images.
func (c *Console) ShowComparison(v studio.ComparisonView) studio.SliderSurface {
	before := "(none)"
	if v.Before != nil {
		before = v.Before.Name
	}
	c.printf("\n%s\n✨ Before / After\n%s\nBefore:   %s\nAfter:    %s\nDownload: %s\n",
		rule, rule, before, v.AfterURL, v.DownloadURL)

	canvas := c.buildCanvas(v)
	c.mu.Lock()
	c.canvas = canvas
	c.mu.Unlock()
	return canvas
}

func (c *Console) buildCanvas(v studio.ComparisonView) *compare.Canvas {
	return compare.NewCanvas(decodeHandle(v.Before), decodeAsset(c.assets, v.AfterURL), api.DefaultWidth, api.DefaultHeight)
}

func (c *Console) ShowStaging(v studio.StagingView) {
	c.printf("\n%s\n🛋️  Virtual Staging\n%s\n%s\nImage:    %s\nDownload: %s\n",
		rule, rule, v.Caption, v.ImageURL, v.DownloadURL)
}

func (c *Console) HidePanel(p studio.Panel) {
	if p == studio.PanelComparison {
		c.mu.Lock()
		c.canvas = nil
		c.mu.Unlock()
	}
	log.Debug().Str("panel", string(p)).Msg("Panel hidden")
}

func (c *Console) ScrollIntoView(p studio.Panel) {}

// Canvas returns the comparison canvas currently displayed, or nil.
func (c *Console) Canvas() *compare.Canvas {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canvas
}

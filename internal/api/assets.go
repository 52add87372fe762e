package api

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"
)

// maxAssetBytes caps a single generated image download.
const maxAssetBytes = 50 * 1024 * 1024

// Asset is a fetched image that decoded successfully.
type Asset struct {
	URL       string
	MediaType string
	Format    string
	Width     int
	Height    int
	Data      []byte
}

// Assets fetches generated images and keeps the most recent copy of each
// URL so that drivers can save or composite what was displayed.
type Assets struct {
	client *Client

	mu    sync.Mutex
	cache map[string]*Asset
}

// NewAssets creates an asset loader that resolves relative URLs against
// the client's base URL.
func NewAssets(client *Client) *Assets {
	return &Assets{
		client: client,
		cache:  make(map[string]*Asset),
	}
}

// Load fetches ref and verifies it decodes as an image. It is the
// equivalent of an <img> load event: nil means the image is paintable.
func (a *Assets) Load(ctx context.Context, ref string) error {
	_, err := a.Fetch(ctx, ref)
	return err
}

// Fetch is Load returning the asset.
func (a *Assets) Fetch(ctx context.Context, ref string) (*Asset, error) {
	resolved, err := a.client.ResolveURL(ref)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved, nil)
	if err != nil {
		return nil, fmt.Errorf("build asset request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := a.client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch asset: %s", statusText(resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read asset: %w", err)
	}
	if len(data) > maxAssetBytes {
		return nil, fmt.Errorf("asset exceeds %d bytes", maxAssetBytes)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode asset: %w", err)
	}

	asset := &Asset{
		URL:       ref,
		MediaType: "image/" + format,
		Format:    format,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Data:      data,
	}

	a.mu.Lock()
	a.cache[ref] = asset
	a.mu.Unlock()

	log.Debug().
		Str("url", resolved).
		Str("format", format).
		Int("width", cfg.Width).
		Int("height", cfg.Height).
		Int("bytes", len(data)).
		Msg("Asset loaded")
	return asset, nil
}

// Get returns the cached asset for ref, if it was loaded.
func (a *Assets) Get(ref string) (*Asset, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	asset, ok := a.cache[ref]
	return asset, ok
}

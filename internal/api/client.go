// Package api is the HTTP client for the studio backend: the analyze,
// enhance and stage endpoints plus fetching the generated images they
// point at.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fpang/property-photo-studio/internal/jsonutil"
	"github.com/fpang/property-photo-studio/internal/metrics"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog/log"
)

// Endpoint paths.
const (
	PathAnalyze = "/api/analyze"
	PathEnhance = "/api/enhance"
	PathStage   = "/api/stage"
)

// maxErrorBody caps how much of a failed response is read for its detail.
const maxErrorBody = 64 * 1024

// Client talks to one studio backend.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	metricsOut io.Writer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default gzip-aware HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMetrics enables per-request EMF metrics written to w.
func WithMetrics(w io.Writer) Option {
	return func(c *Client) {
		c.metricsOut = w
	}
}

// NewClient creates a client for the backend rooted at baseURL.
// Request deadlines come from the caller's context.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		base: base,
		httpClient: &http.Client{
			Transport: gzhttp.Transport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// ResolveURL resolves an image reference returned by the backend. Absolute
// references are returned unchanged; relative ones are resolved against the
// base URL.
func (c *Client) ResolveURL(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid image URL %q: %w", ref, err)
	}
	// The trailing slash keeps a path prefix such as /studio as the base
	// directory for relative references.
	return c.base.JoinPath("/").ResolveReference(u).String(), nil
}

// Analyze uploads an image as multipart field "image".
func (c *Client) Analyze(ctx context.Context, filename, mediaType string, data []byte) (*AnalyzeResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if mediaType == "" {
		mediaType = "image/jpeg"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(filename)))
	header.Set("Content-Type", mediaType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, &Error{Type: ErrTypeTransport, Endpoint: PathAnalyze, Err: err}
	}
	if _, err := part.Write(data); err != nil {
		return nil, &Error{Type: ErrTypeTransport, Endpoint: PathAnalyze, Err: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &Error{Type: ErrTypeTransport, Endpoint: PathAnalyze, Err: err}
	}

	raw, err := c.post(ctx, PathAnalyze, mw.FormDataContentType(), body.Bytes())
	if err != nil {
		return nil, err
	}

	resp, err := jsonutil.Decode[AnalyzeResponse](raw)
	if err != nil {
		return nil, &Error{Type: ErrTypeDecode, Endpoint: PathAnalyze, Status: http.StatusOK, Err: err}
	}
	return &resp, nil
}

// Enhance requests an enhanced rendition generated from prompt.
func (c *Client) Enhance(ctx context.Context, req EnhanceRequest) (*EnhanceResponse, error) {
	var resp EnhanceResponse
	if err := c.postJSON(ctx, PathEnhance, req, &resp); err != nil {
		return nil, err
	}
	if resp.ImageURL == "" {
		return nil, &Error{Type: ErrTypeDecode, Endpoint: PathEnhance, Status: http.StatusOK, Err: fmt.Errorf("response has no image_url")}
	}
	return &resp, nil
}

// Stage requests a virtually staged room.
func (c *Client) Stage(ctx context.Context, req StageRequest) (*StageResponse, error) {
	var resp StageResponse
	if err := c.postJSON(ctx, PathStage, req, &resp); err != nil {
		return nil, err
	}
	if resp.ImageURL == "" {
		return nil, &Error{Type: ErrTypeDecode, Endpoint: PathStage, Status: http.StatusOK, Err: fmt.Errorf("response has no image_url")}
	}
	return &resp, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return &Error{Type: ErrTypeTransport, Endpoint: path, Err: fmt.Errorf("encode request: %w", err)}
	}

	raw, err := c.post(ctx, path, "application/json", payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Type: ErrTypeDecode, Endpoint: path, Status: http.StatusOK, Err: err}
	}
	return nil
}

// post sends one request and returns the body of a 2xx response.
func (c *Client) post(ctx context.Context, path, contentType string, payload []byte) ([]byte, error) {
	requestID := uuid.NewString()
	endpoint := c.base.JoinPath(path).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Type: ErrTypeTransport, Endpoint: path, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	log.Debug().
		Str("endpoint", path).
		Str("request_id", requestID).
		Int("body_bytes", len(payload)).
		Msg("Sending request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.record(path, requestID, 0, elapsed)
		return nil, &Error{Type: ErrTypeTransport, Endpoint: path, Err: err}
	}
	defer resp.Body.Close()
	c.record(path, requestID, resp.StatusCode, elapsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &Error{
			Type:     ErrTypeServer,
			Endpoint: path,
			Status:   resp.StatusCode,
			Detail:   parseDetail(body),
		}
		log.Warn().
			Str("endpoint", path).
			Str("request_id", requestID).
			Int("status", resp.StatusCode).
			Str("detail", apiErr.Detail).
			Msg("Request failed")
		return nil, apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Type: ErrTypeTransport, Endpoint: path, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	log.Debug().
		Str("endpoint", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", elapsed).
		Msg("Request complete")
	return body, nil
}

func (c *Client) record(path, requestID string, status int, elapsed time.Duration) {
	if c.metricsOut == nil {
		return
	}
	rec := metrics.New(c.metricsOut, metrics.Namespace).
		Dimension("Endpoint", path).
		Metric("RequestLatencyMs", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
		Count("Requests").
		Property("requestId", requestID).
		Property("status", status)
	if status < 200 || status > 299 {
		rec.Count("RequestErrors")
	}
	rec.Flush()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// statusText formats a status code for error messages.
func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return strconv.Itoa(code) + " " + text
	}
	return strconv.Itoa(code)
}

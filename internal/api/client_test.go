package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestNewClient_RejectsBadScheme(t *testing.T) {
	for _, raw := range []string{"ftp://example.com", "localhost:8000", ""} {
		if _, err := NewClient(raw); err == nil {
			t.Errorf("NewClient(%q) succeeded, want error", raw)
		}
	}
}

func TestAnalyze_SendsMultipartImage(t *testing.T) {
	imageBytes := []byte("\xff\xd8\xff\xe0fake-jpeg")

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != PathAnalyze {
			t.Errorf("got %s %s, want POST %s", r.Method, r.URL.Path, PathAnalyze)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID header")
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			t.Errorf("FormFile(image) error = %v", err)
			return
		}
		defer file.Close()
		got, _ := io.ReadAll(file)
		if !bytes.Equal(got, imageBytes) {
			t.Errorf("uploaded bytes = %q, want %q", got, imageBytes)
		}
		if header.Filename != "kitchen.jpg" {
			t.Errorf("filename = %q, want kitchen.jpg", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("part Content-Type = %q, want image/jpeg", ct)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"quality_score": 85, "issues": ["dark corners"], "suggestions": {"lighting": "open blinds"}, "enhance_prompt": "brighten room", "room_type": "kitchen"}`))
	})

	resp, err := c.Analyze(context.Background(), "kitchen.jpg", "image/jpeg", imageBytes)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if resp.QualityScore == nil || *resp.QualityScore != 85 {
		t.Errorf("QualityScore = %v, want 85", resp.QualityScore)
	}
	if len(resp.Issues) != 1 || resp.Issues[0] != "dark corners" {
		t.Errorf("Issues = %v, want [dark corners]", resp.Issues)
	}
	if resp.Suggestions == nil || resp.Suggestions.Lighting == nil || *resp.Suggestions.Lighting != "open blinds" {
		t.Errorf("Suggestions.Lighting = %+v, want open blinds", resp.Suggestions)
	}
	if resp.Suggestions.Removal != nil {
		t.Errorf("Suggestions.Removal = %v, want nil", *resp.Suggestions.Removal)
	}
	if resp.EnhancePrompt == nil || *resp.EnhancePrompt != "brighten room" {
		t.Errorf("EnhancePrompt = %v, want brighten room", resp.EnhancePrompt)
	}
	if resp.RoomType != "kitchen" {
		t.Errorf("RoomType = %q, want kitchen", resp.RoomType)
	}
}

func TestAnalyze_ToleratesFencedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("```json\n{\"quality_score\": 41}\n```"))
	})

	resp, err := c.Analyze(context.Background(), "a.png", "image/png", []byte("png"))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if resp.QualityScore == nil || *resp.QualityScore != 41 {
		t.Errorf("QualityScore = %v, want 41", resp.QualityScore)
	}
}

func TestEnhance_SendsJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathEnhance {
			t.Errorf("path = %s, want %s", r.URL.Path, PathEnhance)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}
		want := map[string]any{"prompt": "brighten room", "width": 1024.0, "height": 768.0}
		for k, v := range want {
			if body[k] != v {
				t.Errorf("body[%s] = %v, want %v", k, body[k], v)
			}
		}
		if len(body) != len(want) {
			t.Errorf("body has %d keys, want %d: %v", len(body), len(want), body)
		}
		w.Write([]byte(`{"image_url": "x.png", "prompt": "brighten room"}`))
	})

	resp, err := c.Enhance(context.Background(), EnhanceRequest{Prompt: "brighten room", Width: DefaultWidth, Height: DefaultHeight})
	if err != nil {
		t.Fatalf("Enhance() error = %v", err)
	}
	if resp.ImageURL != "x.png" {
		t.Errorf("ImageURL = %q, want x.png", resp.ImageURL)
	}
}

func TestStage_SendsJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req StageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}
		want := StageRequest{RoomType: "Living Room", Style: "Modern", Width: 1024, Height: 768}
		if req != want {
			t.Errorf("request = %+v, want %+v", req, want)
		}
		w.Write([]byte(`{"image_url": "y.png", "room_type": "Living Room", "style": "Modern"}`))
	})

	resp, err := c.Stage(context.Background(), StageRequest{RoomType: "Living Room", Style: "Modern", Width: 1024, Height: 768})
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if resp.ImageURL != "y.png" || resp.RoomType != "Living Room" || resp.Style != "Modern" {
		t.Errorf("response = %+v", resp)
	}
}

func TestPost_ServerErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{"string detail", http.StatusBadRequest, `{"detail":"bad file"}`, "bad file"},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","prompt"],"msg":"field required"}]}`, ""},
		{"no body", http.StatusInternalServerError, ``, ""},
		{"html body", http.StatusBadGateway, `<html>bad gateway</html>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.Enhance(context.Background(), EnhanceRequest{Prompt: "p"})
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *Error", err)
			}
			if apiErr.Type != ErrTypeServer {
				t.Errorf("Type = %v, want server", apiErr.Type)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tt.status)
			}
			if got := Detail(err); got != tt.wantDetail {
				t.Errorf("Detail() = %q, want %q", got, tt.wantDetail)
			}
		})
	}
}

func TestPost_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewClient(url)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Stage(context.Background(), StageRequest{RoomType: "Bedroom", Style: "Coastal"})
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Type != ErrTypeTransport {
		t.Fatalf("error = %v, want transport *Error", err)
	}
	if Detail(err) != "" {
		t.Errorf("Detail() = %q, want empty", Detail(err))
	}
}

func TestEnhance_MissingImageURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"prompt": "p"}`))
	})

	_, err := c.Enhance(context.Background(), EnhanceRequest{Prompt: "p"})
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Type != ErrTypeDecode {
		t.Fatalf("error = %v, want decode *Error", err)
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base string
		ref  string
		want string
	}{
		{"http://localhost:8000/", "https://image.example.com/prompt/room?width=1024", "https://image.example.com/prompt/room?width=1024"},
		{"http://localhost:8000/", "/static/x.png", "http://localhost:8000/static/x.png"},
		{"http://localhost:8000/", "x.png", "http://localhost:8000/x.png"},
		{"http://localhost:8000", "x.png", "http://localhost:8000/x.png"},
		{"http://h/studio", "x.png", "http://h/studio/x.png"},
		{"http://h/studio/", "static/x.png", "http://h/studio/static/x.png"},
		{"http://h/studio", "/static/x.png", "http://h/static/x.png"},
	}
	for _, tt := range tests {
		c, err := NewClient(tt.base)
		if err != nil {
			t.Fatal(err)
		}
		got, err := c.ResolveURL(tt.ref)
		if err != nil {
			t.Fatalf("ResolveURL(%q) error = %v", tt.ref, err)
		}
		if got != tt.want {
			t.Errorf("base %q: ResolveURL(%q) = %q, want %q", tt.base, tt.ref, got, tt.want)
		}
	}
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestAssets_Load(t *testing.T) {
	pngBytes := encodePNG(t, 4, 3)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/x.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(pngBytes)
		case "/broken.png":
			w.Write([]byte("not an image"))
		default:
			http.NotFound(w, r)
		}
	})
	assets := NewAssets(c)

	if err := assets.Load(context.Background(), "x.png"); err != nil {
		t.Fatalf("Load(x.png) error = %v", err)
	}
	asset, ok := assets.Get("x.png")
	if !ok {
		t.Fatal("Get(x.png) not cached")
	}
	if asset.Width != 4 || asset.Height != 3 || asset.MediaType != "image/png" {
		t.Errorf("asset = %dx%d %s, want 4x3 image/png", asset.Width, asset.Height, asset.MediaType)
	}
	if !bytes.Equal(asset.Data, pngBytes) {
		t.Error("cached data differs from served bytes")
	}

	for _, ref := range []string{"broken.png", "missing.png"} {
		err := assets.Load(context.Background(), ref)
		if err == nil {
			t.Errorf("Load(%s) succeeded, want error", ref)
		}
		if _, ok := assets.Get(ref); ok {
			t.Errorf("Get(%s) cached after failure", ref)
		}
	}

	if err := assets.Load(context.Background(), "missing.png"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Load(missing.png) error = %v, want 404", err)
	}
}

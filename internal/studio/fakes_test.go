package studio

import (
	"context"
	"sync"
	"testing"

	"github.com/fpang/property-photo-studio/internal/api"
)

type fakeSurface struct {
	left, width float64
	splits      []float64
}

func (f *fakeSurface) Bounds() (float64, float64) { return f.left, f.width }

func (f *fakeSurface) SetSplit(fraction float64) { f.splits = append(f.splits, fraction) }

func (f *fakeSurface) last() float64 {
	if len(f.splits) == 0 {
		return -1
	}
	return f.splits[len(f.splits)-1]
}

type fakeRenderer struct {
	mu sync.Mutex

	busy        map[Control]bool
	busyToggles int
	overlay     bool
	overlayMsg  string
	alerts      []string
	upload      UploadState
	uploadImg   *ImageHandle
	inputClears int
	visible     map[Panel]bool
	hides       map[Panel]int
	scrolled    []Panel
	analysis    *AnalysisView
	comparison  *ComparisonView
	staging     *StagingView
	surface     *fakeSurface
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{
		busy:    make(map[Control]bool),
		upload:  UploadEmpty,
		visible: make(map[Panel]bool),
		hides:   make(map[Panel]int),
		surface: &fakeSurface{left: 100, width: 400},
	}
}

func (f *fakeRenderer) SetBusy(c Control, busy bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy[c] = busy
	f.busyToggles++
}

func (f *fakeRenderer) ShowOverlay(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overlay = true
	f.overlayMsg = message
}

func (f *fakeRenderer) HideOverlay() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overlay = false
}

func (f *fakeRenderer) Alert(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, message)
}

func (f *fakeRenderer) ShowUpload(state UploadState, img *ImageHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upload = state
	f.uploadImg = img
}

func (f *fakeRenderer) ClearFileInput() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputClears++
}

func (f *fakeRenderer) ShowAnalysis(v AnalysisView) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analysis = &v
	f.visible[PanelAnalysis] = true
}

func (f *fakeRenderer) ShowComparison(v ComparisonView) SliderSurface {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comparison = &v
	f.visible[PanelComparison] = true
	return f.surface
}

func (f *fakeRenderer) ShowStaging(v StagingView) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.staging = &v
	f.visible[PanelStaging] = true
}

func (f *fakeRenderer) HidePanel(p Panel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visible[p] = false
	f.hides[p]++
}

func (f *fakeRenderer) ScrollIntoView(p Panel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scrolled = append(f.scrolled, p)
}

func (f *fakeRenderer) isBusy(c Control) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy[c]
}

func (f *fakeRenderer) overlayShown() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overlay
}

func (f *fakeRenderer) panelVisible(p Panel) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible[p]
}

func (f *fakeRenderer) lastAlert() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.alerts) == 0 {
		return ""
	}
	return f.alerts[len(f.alerts)-1]
}

type fakeBackend struct {
	mu sync.Mutex

	analyzeCalls int
	enhanceCalls int
	stageCalls   int
	enhanceReqs  []api.EnhanceRequest
	stageReqs    []api.StageRequest
	uploads      []string

	analyzeResp *api.AnalyzeResponse
	analyzeErr  error
	enhanceResp *api.EnhanceResponse
	enhanceErr  error
	stageResp   *api.StageResponse
	stageErr    error

	// block, when set, is waited on (or ctx) before answering analyze.
	block chan struct{}
}

func (b *fakeBackend) Analyze(ctx context.Context, filename, mediaType string, data []byte) (*api.AnalyzeResponse, error) {
	b.mu.Lock()
	b.analyzeCalls++
	b.uploads = append(b.uploads, filename)
	block := b.block
	resp, err := b.analyzeResp, b.analyzeErr
	b.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return resp, err
}

func (b *fakeBackend) Enhance(ctx context.Context, req api.EnhanceRequest) (*api.EnhanceResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enhanceCalls++
	b.enhanceReqs = append(b.enhanceReqs, req)
	return b.enhanceResp, b.enhanceErr
}

func (b *fakeBackend) Stage(ctx context.Context, req api.StageRequest) (*api.StageResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stageCalls++
	b.stageReqs = append(b.stageReqs, req)
	return b.stageResp, b.stageErr
}

func (b *fakeBackend) requests() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.analyzeCalls + b.enhanceCalls + b.stageCalls
}

type fakeAssets struct {
	mu     sync.Mutex
	loaded []string
	err    error
	// during runs inside Load, before it returns.
	during func(url string)
}

func (a *fakeAssets) Load(ctx context.Context, url string) error {
	a.mu.Lock()
	a.loaded = append(a.loaded, url)
	during, err := a.during, a.err
	a.mu.Unlock()

	if during != nil {
		during(url)
	}
	return err
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func testImage(name string) ImageHandle {
	return ImageHandle{Name: name, MediaType: "image/jpeg", Data: []byte("jpeg-bytes-" + name)}
}

type harness struct {
	wb      *Workbench
	r       *fakeRenderer
	backend *fakeBackend
	assets  *fakeAssets
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	r := newFakeRenderer()
	backend := &fakeBackend{
		analyzeResp: &api.AnalyzeResponse{QualityScore: floatPtr(62), EnhancePrompt: strPtr("brighten room")},
		enhanceResp: &api.EnhanceResponse{ImageURL: "x.png"},
		stageResp:   &api.StageResponse{ImageURL: "y.png", RoomType: "Living Room", Style: "Modern"},
	}
	assets := &fakeAssets{}
	return &harness{
		wb:      New(backend, assets, r, DefaultOptions()),
		r:       r,
		backend: backend,
		assets:  assets,
	}
}

// assertIdle checks that no control is busy and the overlay is hidden.
func (h *harness) assertIdle(t *testing.T) {
	t.Helper()
	for _, c := range []Control{ControlAnalyze, ControlEnhance, ControlStage} {
		if h.r.isBusy(c) {
			t.Errorf("control %s still busy", c)
		}
		if h.wb.Loading.Busy(c) {
			t.Errorf("indicator reports %s busy", c)
		}
	}
	if h.r.overlayShown() {
		t.Error("overlay still shown")
	}
}

// Package studio is the workflow controller of the property photo studio:
// the upload session, the analysis, enhancement and staging stages, and the
// before/after comparison slider.
//
// Stages are state machines driven by explicit calls. Every visible effect
// goes through a Renderer, so the same controller drives a terminal, a test
// double, or any other surface. Network work goes through a Backend and
// generated images become displayable through an AssetLoader.
package studio

import (
	"context"
	"errors"
	"time"

	"github.com/fpang/property-photo-studio/internal/api"
)

// State is the lifecycle state of a stage.
type State string

const (
	StateIdle   State = "idle"
	StateBusy   State = "busy"
	StateDone   State = "done"
	StateFailed State = "failed"
)

// Control identifies a triggering control that can be put in a busy state.
type Control string

const (
	ControlAnalyze Control = "analyze"
	ControlEnhance Control = "enhance"
	ControlStage   Control = "stage"
)

// Panel identifies a result panel.
type Panel string

const (
	PanelAnalysis   Panel = "analysis"
	PanelComparison Panel = "comparison"
	PanelStaging    Panel = "staging"
)

// User-facing messages.
const (
	MsgAnalyzing = "Analyzing your property photo with AI..."
	MsgEnhancing = "Generating enhanced image. This can take up to a minute..."
	MsgStaging   = "Creating your virtually staged room..."

	MsgAnalyzeFailed     = "Analysis failed. Please try again."
	MsgEnhanceFailed     = "Enhancement failed. Please try again."
	MsgStageFailed       = "Staging failed. Please try again."
	MsgEnhanceLoadFailed = "Failed to load the enhanced image. Please try again."
	MsgStageLoadFailed   = "Failed to load the staged image. Please try again."
	MsgTimedOut          = "The request timed out. Please try again."

	MsgNeedAnalysis  = "Please analyze the image first."
	MsgNeedSelection = "Please choose a room type and a style."
)

// Validation errors. They are returned before any request is sent.
var (
	ErrNoImage     = errors.New("no image selected")
	ErrNoAnalysis  = errors.New("no analysis with an enhancement prompt")
	ErrNoSelection = errors.New("room type and style are required")
	ErrBusy        = errors.New("operation already in progress")
)

// AssetError reports a generated image that could not be displayed.
type AssetError struct {
	URL string
	Err error
}

func (e *AssetError) Error() string {
	return "load asset " + e.URL + ": " + e.Err.Error()
}

func (e *AssetError) Unwrap() error {
	return e.Err
}

// Backend performs the remote analysis and generation requests.
type Backend interface {
	Analyze(ctx context.Context, filename, mediaType string, data []byte) (*api.AnalyzeResponse, error)
	Enhance(ctx context.Context, req api.EnhanceRequest) (*api.EnhanceResponse, error)
	Stage(ctx context.Context, req api.StageRequest) (*api.StageResponse, error)
}

// AssetLoader makes a generated image paintable. A nil return is the
// image's load event; an error is its error event.
type AssetLoader interface {
	Load(ctx context.Context, url string) error
}

// Options bound the time spent waiting on the backend.
type Options struct {
	// RequestTimeout bounds each backend request. Zero disables it.
	RequestTimeout time.Duration
	// AssetTimeout bounds each generated image load. Zero disables it.
	AssetTimeout time.Duration
}

// DefaultOptions returns the timeouts used when none are configured.
func DefaultOptions() Options {
	return Options{
		RequestTimeout: 90 * time.Second,
		AssetTimeout:   60 * time.Second,
	}
}

// Workbench wires the session and the stages to one renderer.
type Workbench struct {
	Loading     *LoadingIndicator
	Session     *UploadSession
	Analysis    *AnalysisStage
	Enhancement *EnhancementStage
	Staging     *StagingStage
}

// New builds a Workbench. Selecting or removing an image resets every
// stage's displayed result.
func New(backend Backend, assets AssetLoader, r Renderer, opts Options) *Workbench {
	loading := NewLoadingIndicator(r)
	session := NewUploadSession(r)
	analysis := NewAnalysisStage(session, backend, loading, r, opts)
	enhancement := NewEnhancementStage(session, analysis, backend, assets, loading, r, opts)
	staging := NewStagingStage(backend, assets, loading, r, opts)

	session.OnReset(analysis.Reset)
	session.OnReset(enhancement.Reset)
	session.OnReset(staging.Reset)

	return &Workbench{
		Loading:     loading,
		Session:     session,
		Analysis:    analysis,
		Enhancement: enhancement,
		Staging:     staging,
	}
}

// advisory picks the message shown for a failed request.
func advisory(err error, fallback string) string {
	if detail := api.Detail(err); detail != "" {
		return detail
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return MsgTimedOut
	}
	return fallback
}

// withTimeout applies d to ctx when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// Completion tracks the two phases of a generation request: the backend
// answered, then the generated image became paintable. Busy state is
// released only after both, or on failure.
type Completion struct {
	RequestCompleted bool
	AssetReady       bool
}

// Done reports whether both phases completed.
func (c Completion) Done() bool {
	return c.RequestCompleted && c.AssetReady
}

// awaitAsset waits for url to become paintable.
func awaitAsset(ctx context.Context, assets AssetLoader, timeout time.Duration, url string) error {
	if assets == nil {
		return nil
	}
	assetCtx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	if err := assets.Load(assetCtx, url); err != nil {
		return &AssetError{URL: url, Err: err}
	}
	return nil
}

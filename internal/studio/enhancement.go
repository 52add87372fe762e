package studio

import (
	"context"
	"fmt"
	"sync"

	"github.com/fpang/property-photo-studio/internal/api"
	"github.com/rs/zerolog/log"
)

// EnhancementResult is a displayed enhancement.
type EnhancementResult struct {
	Before   *ImageHandle
	AfterURL string
	// Prompt is the generation prompt echoed by the backend.
	Prompt string
}

// EnhancementStage runs the enhance request. It requires an analysis with
// an enhancement prompt and shows its result in a comparison view.
type EnhancementStage struct {
	session  *UploadSession
	analysis *AnalysisStage
	backend  Backend
	assets   AssetLoader
	loading  *LoadingIndicator
	r        Renderer
	opts     Options

	mu         sync.Mutex
	state      State
	completion Completion
	result     *EnhancementResult
	slider     *ComparisonSlider
}

// NewEnhancementStage creates an idle enhancement stage.
func NewEnhancementStage(session *UploadSession, analysis *AnalysisStage, backend Backend, assets AssetLoader, loading *LoadingIndicator, r Renderer, opts Options) *EnhancementStage {
	return &EnhancementStage{
		session:  session,
		analysis: analysis,
		backend:  backend,
		assets:   assets,
		loading:  loading,
		r:        r,
		opts:     opts,
		state:    StateIdle,
	}
}

// Enhance requests an enhanced rendition from the latest analysis prompt.
// Without one it alerts and returns ErrNoAnalysis before sending anything.
//
// The comparison view is revealed only once the generated image has
// loaded; until then the control stays busy and the overlay stays up.
func (s *EnhancementStage) Enhance(ctx context.Context) error {
	analysis := s.analysis.Result()
	if analysis == nil || analysis.EnhancePrompt == "" {
		s.r.Alert(MsgNeedAnalysis)
		return ErrNoAnalysis
	}
	before := s.session.Current()

	if !s.loading.Begin(ControlEnhance, MsgEnhancing) {
		return ErrBusy
	}
	defer s.loading.End(ControlEnhance)
	s.begin()

	reqCtx, cancel := withTimeout(ctx, s.opts.RequestTimeout)
	resp, err := s.backend.Enhance(reqCtx, api.EnhanceRequest{
		Prompt: analysis.EnhancePrompt,
		Width:  api.DefaultWidth,
		Height: api.DefaultHeight,
	})
	cancel()
	if err != nil {
		s.fail()
		log.Error().Err(err).Str("session_id", s.session.ID()).Msg("Enhancement request failed")
		s.loading.End(ControlEnhance)
		s.r.Alert(advisory(err, MsgEnhanceFailed))
		return fmt.Errorf("enhance: %w", err)
	}

	s.mu.Lock()
	s.completion.RequestCompleted = true
	s.mu.Unlock()
	log.Debug().Str("image_url", resp.ImageURL).Str("prompt", resp.Prompt).Msg("Enhancement generated, loading image")

	if err := awaitAsset(ctx, s.assets, s.opts.AssetTimeout, resp.ImageURL); err != nil {
		s.fail()
		log.Error().Err(err).Msg("Enhanced image failed to load")
		s.loading.EndOverlay(ControlEnhance)
		s.r.Alert(MsgEnhanceLoadFailed)
		return err
	}

	result := &EnhancementResult{Before: before, AfterURL: resp.ImageURL, Prompt: resp.Prompt}

	s.loading.EndOverlay(ControlEnhance)
	surface := s.r.ShowComparison(ComparisonView{
		Before:      before,
		AfterURL:    result.AfterURL,
		DownloadURL: result.AfterURL,
	})
	s.r.ScrollIntoView(PanelComparison)
	slider := NewComparisonSlider(surface)

	s.mu.Lock()
	s.completion.AssetReady = true
	s.result = result
	s.slider = slider
	s.state = StateDone
	s.mu.Unlock()

	log.Info().Str("session_id", s.session.ID()).Str("image_url", result.AfterURL).Msg("Enhancement displayed")
	return nil
}

// Result returns the displayed enhancement, or nil.
func (s *EnhancementStage) Result() *EnhancementResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Slider returns the slider of the displayed enhancement, or nil.
func (s *EnhancementStage) Slider() *ComparisonSlider {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slider
}

// State returns the stage state.
func (s *EnhancementStage) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Completion returns the progress of the latest request.
func (s *EnhancementStage) Completion() Completion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completion
}

// Reset clears the displayed enhancement and hides the panel.
func (s *EnhancementStage) Reset() {
	s.mu.Lock()
	s.result = nil
	s.slider = nil
	s.state = StateIdle
	s.completion = Completion{}
	s.mu.Unlock()

	s.r.HidePanel(PanelComparison)
}

func (s *EnhancementStage) begin() {
	s.mu.Lock()
	s.state = StateBusy
	s.completion = Completion{}
	s.mu.Unlock()
}

func (s *EnhancementStage) fail() {
	s.mu.Lock()
	s.state = StateFailed
	s.mu.Unlock()
}

package studio

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fpang/property-photo-studio/internal/api"
	"github.com/rs/zerolog/log"
)

// RoomTypes are the values offered by the room type selector.
var RoomTypes = []string{
	"Living Room",
	"Bedroom",
	"Kitchen",
	"Dining Room",
	"Bathroom",
	"Home Office",
}

// Styles are the values offered by the style selector.
var Styles = []string{
	"Modern",
	"Scandinavian",
	"Minimalist",
	"Industrial",
	"Mid-Century Modern",
	"Traditional",
	"Coastal",
	"Farmhouse",
}

// StagingResult is a displayed staged room.
type StagingResult struct {
	ImageURL string
	RoomType string
	Style    string
	Prompt   string
}

// Caption returns the metadata line, e.g. "Living Room · Modern style".
func (r *StagingResult) Caption() string {
	return fmt.Sprintf("%s · %s style", r.RoomType, r.Style)
}

// StagingStage runs the staging request for the selected room type and
// style. It does not depend on analysis.
type StagingStage struct {
	backend Backend
	assets  AssetLoader
	loading *LoadingIndicator
	r       Renderer
	opts    Options

	mu         sync.Mutex
	roomType   string
	style      string
	state      State
	completion Completion
	result     *StagingResult
}

// NewStagingStage creates an idle staging stage with the first room type
// and style preselected.
func NewStagingStage(backend Backend, assets AssetLoader, loading *LoadingIndicator, r Renderer, opts Options) *StagingStage {
	return &StagingStage{
		backend:  backend,
		assets:   assets,
		loading:  loading,
		r:        r,
		opts:     opts,
		roomType: RoomTypes[0],
		style:    Styles[0],
		state:    StateIdle,
	}
}

// SetSelection sets the selector values used by Stage and Regenerate.
func (s *StagingStage) SetSelection(roomType, style string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomType = strings.TrimSpace(roomType)
	s.style = strings.TrimSpace(style)
}

// Selection returns the current selector values.
func (s *StagingStage) Selection() (roomType, style string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomType, s.style
}

// Stage requests a staged room for the current selection. The result is
// revealed only once its image has loaded.
func (s *StagingStage) Stage(ctx context.Context) error {
	roomType, style := s.Selection()
	if roomType == "" || style == "" {
		s.r.Alert(MsgNeedSelection)
		return ErrNoSelection
	}

	if !s.loading.Begin(ControlStage, MsgStaging) {
		return ErrBusy
	}
	defer s.loading.End(ControlStage)
	s.begin()

	reqCtx, cancel := withTimeout(ctx, s.opts.RequestTimeout)
	resp, err := s.backend.Stage(reqCtx, api.StageRequest{
		RoomType: roomType,
		Style:    style,
		Width:    api.DefaultWidth,
		Height:   api.DefaultHeight,
	})
	cancel()
	if err != nil {
		s.fail()
		log.Error().Err(err).Str("room_type", roomType).Str("style", style).Msg("Staging request failed")
		s.loading.End(ControlStage)
		s.r.Alert(advisory(err, MsgStageFailed))
		return fmt.Errorf("stage: %w", err)
	}

	s.mu.Lock()
	s.completion.RequestCompleted = true
	s.mu.Unlock()

	if err := awaitAsset(ctx, s.assets, s.opts.AssetTimeout, resp.ImageURL); err != nil {
		s.fail()
		log.Error().Err(err).Msg("Staged image failed to load")
		s.loading.EndOverlay(ControlStage)
		s.r.Alert(MsgStageLoadFailed)
		return err
	}

	result := &StagingResult{
		ImageURL: resp.ImageURL,
		RoomType: firstNonEmpty(resp.RoomType, roomType),
		Style:    firstNonEmpty(resp.Style, style),
		Prompt:   resp.Prompt,
	}

	s.loading.EndOverlay(ControlStage)
	s.r.ShowStaging(StagingView{
		ImageURL:    result.ImageURL,
		Caption:     result.Caption(),
		DownloadURL: result.ImageURL,
	})
	s.r.ScrollIntoView(PanelStaging)

	s.mu.Lock()
	s.completion.AssetReady = true
	s.result = result
	s.state = StateDone
	s.mu.Unlock()

	log.Info().
		Str("room_type", result.RoomType).
		Str("style", result.Style).
		Str("image_url", result.ImageURL).
		Msg("Staging displayed")
	return nil
}

// Regenerate hides the current staged room and stages again with the same
// selection.
func (s *StagingStage) Regenerate(ctx context.Context) error {
	if s.loading.Busy(ControlStage) {
		return ErrBusy
	}
	s.r.HidePanel(PanelStaging)
	return s.Stage(ctx)
}

// Result returns the displayed staged room, or nil.
func (s *StagingStage) Result() *StagingResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// State returns the stage state.
func (s *StagingStage) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Completion returns the progress of the latest request.
func (s *StagingStage) Completion() Completion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completion
}

// Reset clears the displayed staged room and hides the panel. The
// selection is kept.
func (s *StagingStage) Reset() {
	s.mu.Lock()
	s.result = nil
	s.state = StateIdle
	s.completion = Completion{}
	s.mu.Unlock()

	s.r.HidePanel(PanelStaging)
}

func (s *StagingStage) begin() {
	s.mu.Lock()
	s.state = StateBusy
	s.completion = Completion{}
	s.mu.Unlock()
}

func (s *StagingStage) fail() {
	s.mu.Lock()
	s.state = StateFailed
	s.mu.Unlock()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package studio

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/fpang/property-photo-studio/internal/api"
	"github.com/rs/zerolog/log"
)

// Analysis defaults.
const (
	DefaultQualityScore = 50
	NoRecommendation    = "No specific recommendations."
)

// QualityTier classifies a quality score for the badge.
type QualityTier string

const (
	TierLow    QualityTier = "low"
	TierMedium QualityTier = "medium"
	TierNone   QualityTier = ""
)

// ClassifyScore maps a score to its badge tier: below 40 is low, below 70
// medium, anything else has no tier.
func ClassifyScore(score int) QualityTier {
	switch {
	case score < 40:
		return TierLow
	case score < 70:
		return TierMedium
	default:
		return TierNone
	}
}

// Suggestions is per-category advice with placeholders filled in.
type Suggestions struct {
	Lighting string `json:"lighting"`
	Removal  string `json:"removal"`
	Staging  string `json:"staging"`
}

// AnalysisResult is a stored analysis with defaults applied.
type AnalysisResult struct {
	QualityScore  int         `json:"quality_score"`
	Issues        []string    `json:"issues"`
	Suggestions   Suggestions `json:"suggestions"`
	EnhancePrompt string      `json:"enhance_prompt,omitempty"`
	RoomType      string      `json:"room_type,omitempty"`
}

// NewAnalysisResult applies defaults to a backend response: score 50,
// no issues, and a placeholder for each missing suggestion category.
// Scores are rounded and clamped to 0-100.
func NewAnalysisResult(resp *api.AnalyzeResponse) *AnalysisResult {
	r := &AnalysisResult{
		QualityScore: DefaultQualityScore,
		Issues:       []string{},
		Suggestions: Suggestions{
			Lighting: NoRecommendation,
			Removal:  NoRecommendation,
			Staging:  NoRecommendation,
		},
	}
	if resp == nil {
		return r
	}

	if resp.QualityScore != nil && !math.IsNaN(*resp.QualityScore) {
		score := math.Round(*resp.QualityScore)
		r.QualityScore = int(math.Max(0, math.Min(100, score)))
	}
	if resp.Issues != nil {
		r.Issues = append([]string{}, resp.Issues...)
	}
	if s := resp.Suggestions; s != nil {
		r.Suggestions.Lighting = orPlaceholder(s.Lighting)
		r.Suggestions.Removal = orPlaceholder(s.Removal)
		r.Suggestions.Staging = orPlaceholder(s.Staging)
	}
	if resp.EnhancePrompt != nil {
		r.EnhancePrompt = strings.TrimSpace(*resp.EnhancePrompt)
	}
	r.RoomType = resp.RoomType
	return r
}

func orPlaceholder(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return NoRecommendation
	}
	return *s
}

// Tier returns the badge tier of the score.
func (r *AnalysisResult) Tier() QualityTier {
	return ClassifyScore(r.QualityScore)
}

// Badge returns the badge text, e.g. "Quality: 85/100".
func (r *AnalysisResult) Badge() string {
	return fmt.Sprintf("Quality: %d/100", r.QualityScore)
}

// View returns the panel contents for r.
func (r *AnalysisResult) View() AnalysisView {
	return AnalysisView{
		Badge:       r.Badge(),
		Tier:        r.Tier(),
		Score:       r.QualityScore,
		Issues:      append([]string{}, r.Issues...),
		Suggestions: r.Suggestions,
	}
}

// AnalysisStage runs the analyze request and owns its latest result.
type AnalysisStage struct {
	session *UploadSession
	backend Backend
	loading *LoadingIndicator
	r       Renderer
	opts    Options

	mu     sync.Mutex
	state  State
	result *AnalysisResult
}

// NewAnalysisStage creates an idle analysis stage.
func NewAnalysisStage(session *UploadSession, backend Backend, loading *LoadingIndicator, r Renderer, opts Options) *AnalysisStage {
	return &AnalysisStage{
		session: session,
		backend: backend,
		loading: loading,
		r:       r,
		opts:    opts,
		state:   StateIdle,
	}
}

// Analyze sends the current image for analysis. Without an image it does
// nothing and returns ErrNoImage. A successful call replaces any previous
// result; a failed one leaves it untouched.
func (s *AnalysisStage) Analyze(ctx context.Context) error {
	img := s.session.Current()
	if img == nil {
		return ErrNoImage
	}
	if !s.loading.Begin(ControlAnalyze, MsgAnalyzing) {
		return ErrBusy
	}
	defer s.loading.End(ControlAnalyze)
	s.setState(StateBusy)

	reqCtx, cancel := withTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	start := time.Now()
	resp, err := s.backend.Analyze(reqCtx, img.Name, img.MediaType, img.Data)
	if err != nil {
		s.setState(StateFailed)
		log.Error().Err(err).Str("session_id", s.session.ID()).Msg("Analysis failed")
		s.loading.End(ControlAnalyze)
		s.r.Alert(advisory(err, MsgAnalyzeFailed))
		return fmt.Errorf("analyze: %w", err)
	}

	result := NewAnalysisResult(resp)
	s.mu.Lock()
	s.result = result
	s.state = StateDone
	s.mu.Unlock()

	log.Info().
		Str("session_id", s.session.ID()).
		Int("quality_score", result.QualityScore).
		Int("issues", len(result.Issues)).
		Bool("has_enhance_prompt", result.EnhancePrompt != "").
		Dur("duration", time.Since(start)).
		Msg("Analysis complete")

	s.r.ShowAnalysis(result.View())
	s.r.ScrollIntoView(PanelAnalysis)
	return nil
}

// Result returns the latest analysis, or nil.
func (s *AnalysisStage) Result() *AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// State returns the stage state.
func (s *AnalysisStage) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reset clears the stored result and hides the panel.
func (s *AnalysisStage) Reset() {
	s.mu.Lock()
	s.result = nil
	s.state = StateIdle
	s.mu.Unlock()

	s.r.HidePanel(PanelAnalysis)
}

func (s *AnalysisStage) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

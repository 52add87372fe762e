package studio

// Renderer is the side-effect boundary of the controller. Implementations
// draw state; they never call back into a stage synchronously.
type Renderer interface {
	// SetBusy disables (busy) or re-enables a triggering control.
	SetBusy(c Control, busy bool)
	// ShowOverlay shows the blocking overlay with a status message.
	ShowOverlay(message string)
	// HideOverlay hides the blocking overlay.
	HideOverlay()
	// Alert shows a blocking advisory message.
	Alert(message string)

	// ShowUpload switches between the empty drop zone and the preview.
	// img is nil when state is UploadEmpty.
	ShowUpload(state UploadState, img *ImageHandle)
	// ClearFileInput forgets the picker's retained value so the same file
	// can be selected again.
	ClearFileInput()

	ShowAnalysis(v AnalysisView)
	// ShowComparison reveals the before/after panel and returns the surface
	// the comparison slider drives. It may return nil.
	ShowComparison(v ComparisonView) SliderSurface
	ShowStaging(v StagingView)
	HidePanel(p Panel)
	ScrollIntoView(p Panel)
}

// AnalysisView is what the analysis panel displays.
type AnalysisView struct {
	Badge       string
	Tier        QualityTier
	Score       int
	Issues      []string
	Suggestions Suggestions
}

// ComparisonView is what the before/after panel displays.
type ComparisonView struct {
	Before      *ImageHandle
	AfterURL    string
	DownloadURL string
}

// StagingView is what the staging panel displays.
type StagingView struct {
	ImageURL    string
	Caption     string
	DownloadURL string
}

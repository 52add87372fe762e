package api

// Default output dimensions for generated images.
const (
	DefaultWidth  = 1024
	DefaultHeight = 768
)

// Suggestions holds the per-category advice of an analysis. Absent
// categories decode as nil.
type Suggestions struct {
	Lighting *string `json:"lighting,omitempty"`
	Removal  *string `json:"removal,omitempty"`
	Staging  *string `json:"staging,omitempty"`
}

// AnalyzeResponse is the body of a successful POST /api/analyze. Every
// field is optional; callers apply their own defaults.
type AnalyzeResponse struct {
	QualityScore  *float64     `json:"quality_score,omitempty"`
	Issues        []string     `json:"issues,omitempty"`
	Suggestions   *Suggestions `json:"suggestions,omitempty"`
	EnhancePrompt *string      `json:"enhance_prompt,omitempty"`
	RoomType      string       `json:"room_type,omitempty"`
}

// EnhanceRequest is the body of POST /api/enhance.
type EnhanceRequest struct {
	Prompt string `json:"prompt"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// EnhanceResponse is the body of a successful POST /api/enhance.
type EnhanceResponse struct {
	ImageURL string `json:"image_url"`
	Prompt   string `json:"prompt,omitempty"`
}

// StageRequest is the body of POST /api/stage.
type StageRequest struct {
	RoomType string `json:"room_type"`
	Style    string `json:"style"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// StageResponse is the body of a successful POST /api/stage.
type StageResponse struct {
	ImageURL string `json:"image_url"`
	Prompt   string `json:"prompt,omitempty"`
	RoomType string `json:"room_type"`
	Style    string `json:"style"`
}

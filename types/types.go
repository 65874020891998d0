package types

// Scene is one narration+image+audio unit of the program. Scenes play in
// Index order; the pipeline never reorders them, it can only drop them.
type Scene struct {
	Index       int     `json:"index"`
	Narration   string  `json:"narration"`
	ImagePrompt string  `json:"image_prompt,omitempty"`
	ImageFile   string  `json:"image_file,omitempty"`
	AudioFile   string  `json:"audio_file,omitempty"`
	DurationSec float64 `json:"duration_sec,omitempty"`
}

// Script is the full storyboard for one video.
type Script struct {
	Topic    string  `json:"topic"`
	Title    string  `json:"title"`
	Persona  string  `json:"persona,omitempty"`
	Scenes   []Scene `json:"scenes"`
	TotalSec float64 `json:"total_sec,omitempty"`
}

// RenderResult describes the finished artifacts of one assembly run.
type RenderResult struct {
	VideoFile    string  `json:"video_file"`
	SubtitleFile string  `json:"subtitle_file,omitempty"`
	DurationSec  float64 `json:"duration_sec"`
	SceneCount   int     `json:"scene_count"`
}

// Topic is one trending topic candidate.
type Topic struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	Score  int    `json:"score"`
}

// PipelineState tracks the full state of one pipeline run.
type PipelineState struct {
	RunID       string        `json:"run_id"`
	Topic       string        `json:"topic"`
	StartedAt   string        `json:"started_at"`
	CompletedAt string        `json:"completed_at,omitempty"`
	Script      *Script       `json:"script,omitempty"`
	Result      *RenderResult `json:"result,omitempty"`
	UploadURL   string        `json:"upload_url,omitempty"`
	Error       string        `json:"error,omitempty"`
}

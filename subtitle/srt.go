// Package subtitle emits SubRip transcripts derived from the same scene
// timings the renderer uses, so subtitle cues and on-screen audio can
// never drift apart.
package subtitle

import (
	"fmt"
	"math"
	"os"
	"strings"

	"reelforge/types"
)

// Cue is one subtitle block: a numbered time window with its text.
type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// FormatTime renders seconds as the SubRip timestamp HH:MM:SS,mmm.
// Sub-millisecond remainders round to the nearest millisecond.
func FormatTime(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	ms := int64(math.Round(sec * 1000))
	h := ms / 3600000
	ms -= h * 3600000
	m := ms / 60000
	ms -= m * 60000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// FromScenes lays scenes end to end on the timeline and returns one cue
// per narrated scene. Scenes with empty narration produce no cue but
// still advance the clock, so later cues stay aligned with the video.
func FromScenes(scenes []types.Scene, durations []float64) []Cue {
	var cues []Cue
	var clock float64
	for i, scene := range scenes {
		if i >= len(durations) {
			break
		}
		start := clock
		clock += durations[i]
		text := strings.TrimSpace(scene.Narration)
		if text == "" {
			continue
		}
		cues = append(cues, Cue{
			Index: len(cues) + 1,
			Start: start,
			End:   clock,
			Text:  text,
		})
	}
	return cues
}

// Render serializes cues as a SubRip document: numbered blocks separated
// by blank lines, UTF-8 throughout.
func Render(cues []Cue) string {
	var b strings.Builder
	for _, cue := range cues {
		fmt.Fprintf(&b, "%d\n", cue.Index)
		fmt.Fprintf(&b, "%s --> %s\n", FormatTime(cue.Start), FormatTime(cue.End))
		fmt.Fprintf(&b, "%s\n\n", cue.Text)
	}
	return b.String()
}

// WriteFile writes the cues to path as a SubRip file.
func WriteFile(path string, cues []Cue) error {
	if err := os.WriteFile(path, []byte(Render(cues)), 0644); err != nil {
		return fmt.Errorf("write subtitles: %w", err)
	}
	return nil
}

package render

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Compositor binds one animated clip to one narration clip. The audio is
// the authoritative timing source: the visual was already rendered to the
// audio's duration, and the composed clip is trimmed to it as well.
type Compositor struct {
	CrossfadeSec float64
	Preset       string
	CRF          int
}

// DefaultCrossfadeSec is the transition length between adjacent scenes.
const DefaultCrossfadeSec = 0.3

// fadeSpec decides which fades scene i of n carries. The program's first
// and last frames stay at full brightness: the opening scene only fades
// out into its successor and the closing scene only fades in.
func fadeSpec(i, n int) (fadeIn, fadeOut bool) {
	if n <= 1 {
		return false, false
	}
	switch i {
	case 0:
		return false, true
	case n - 1:
		return true, false
	default:
		return true, true
	}
}

// fadeFilter builds the ffmpeg video filter for the fades absorbed inside
// a clip of the given duration. Empty when no fade applies.
func (c *Compositor) fadeFilter(fadeIn, fadeOut bool, duration float64) string {
	fade := c.CrossfadeSec
	if fade <= 0 || fade*2 > duration {
		// A clip shorter than its two fades would never reach full
		// brightness; skip the transition for it.
		return ""
	}
	var parts []string
	if fadeIn {
		parts = append(parts, fmt.Sprintf("fade=t=in:st=0:d=%.3f", fade))
	}
	if fadeOut {
		parts = append(parts, fmt.Sprintf("fade=t=out:st=%.3f:d=%.3f", duration-fade, fade))
	}
	return strings.Join(parts, ",")
}

// ComposeScene merges a silent clip with its narration audio, applying the
// scene's fades, and trims the result to exactly duration seconds.
func (c *Compositor) ComposeScene(ctx context.Context, clipFile, audioFile string, position, total int, duration float64, outFile string) error {
	fadeIn, fadeOut := fadeSpec(position, total)

	args := []string{"-y",
		"-i", clipFile,
		"-i", audioFile,
	}
	if filter := c.fadeFilter(fadeIn, fadeOut, duration); filter != "" {
		args = append(args, "-vf", filter,
			"-c:v", "libx264",
			"-preset", c.Preset,
			"-crf", fmt.Sprintf("%d", c.CRF),
			"-pix_fmt", "yuv420p",
		)
	} else {
		args = append(args, "-c:v", "copy")
	}
	args = append(args,
		"-c:a", "aac",
		"-b:a", "192k",
		"-t", fmt.Sprintf("%.3f", duration),
		"-map", "0:v:0",
		"-map", "1:a:0",
		outFile,
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg compose scene: %w\n%s", err, tail(out))
	}
	return nil
}

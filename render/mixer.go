package render

import (
	"context"
	"fmt"
	"math"
	"os/exec"

	"reelforge/media"
)

// DefaultBGMGain keeps background music well under the narration.
const DefaultBGMGain = 0.12

// MixSpec is the background-music configuration for one program.
type MixSpec struct {
	Path string
	Gain float64 // linear gain in [0, 1]; narration always stays at 1.0
}

// NormalGain clamps the configured gain into [0, 1], falling back to the
// default when unset.
func (m MixSpec) NormalGain() float64 {
	switch {
	case m.Gain <= 0:
		return DefaultBGMGain
	case m.Gain > 1:
		return 1
	default:
		return m.Gain
	}
}

// LoopCount returns how many times a BGM asset of native duration must be
// played back-to-back to cover the program before trimming.
func LoopCount(totalDuration, nativeDuration float64) int {
	if nativeDuration <= 0 || totalDuration <= 0 {
		return 0
	}
	return int(math.Ceil(totalDuration / nativeDuration))
}

// Mixer lays the background-music bed under an assembled program.
type Mixer struct {
	Prober media.Prober
}

// MixIn loops/trims the BGM to exactly totalDuration, attenuates it, and
// additively composites it with the program's narration track. The video
// stream is copied untouched. Any BGM-side failure, unreadable asset or
// failed mix, returns ErrBGMUnavailable; callers keep the narration-only
// program.
func (m *Mixer) MixIn(ctx context.Context, programFile string, spec MixSpec, totalDuration float64, outFile string) error {
	native, err := m.Prober.Duration(ctx, spec.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBGMUnavailable, spec.Path, err)
	}

	loops := LoopCount(totalDuration, native)
	if loops == 0 {
		return fmt.Errorf("%w: %s: zero-length asset", ErrBGMUnavailable, spec.Path)
	}

	args := []string{"-y", "-i", programFile}
	if loops > 1 {
		// -stream_loop counts extra plays, not total plays.
		args = append(args, "-stream_loop", fmt.Sprintf("%d", loops-1))
	}
	args = append(args, "-i", spec.Path)

	filter := fmt.Sprintf(
		"[1:a]atrim=0:%.3f,volume=%.3f[bgm];[0:a][bgm]amix=inputs=2:duration=first:normalize=0[aout]",
		totalDuration, spec.NormalGain(),
	)
	args = append(args,
		"-filter_complex", filter,
		"-map", "0:v:0",
		"-map", "[aout]",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		outFile,
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		// A BGM asset that probes fine can still fail to decode in amix.
		// The bed stays optional either way: callers keep the
		// narration-only program.
		return fmt.Errorf("%w: %s: mix: %v\n%s", ErrBGMUnavailable, spec.Path, err, tail(out))
	}
	return nil
}

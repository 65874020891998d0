package render

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"reelforge/media"
	"reelforge/types"
)

// Plan is the derived per-run timing data driving both video assembly and
// subtitle generation. Both consumers read the same duration values, so the
// two artifacts can never drift apart.
type Plan struct {
	Scenes    []types.Scene // surviving scenes, original order
	Durations []float64     // seconds per surviving scene
	Offsets   []float64     // len(Scenes)+1 start times; Offsets[0] == 0
	Total     float64
}

// PlanOptions tune scene validation.
type PlanOptions struct {
	// SubtitleOnly keeps scenes without audio and assigns FallbackSec to
	// them instead of dropping them. Used when only a transcript is needed.
	SubtitleOnly bool
	FallbackSec  float64
}

const defaultFallbackSec = 3.0

// BuildPlan probes every scene's assets and derives the master timeline.
// Scenes with missing or unreadable assets are dropped with a warning; the
// remaining scenes keep their relative order. All scenes dropped is a fatal
// ErrNoRenderableScenes.
func BuildPlan(ctx context.Context, prober media.Prober, scenes []types.Scene, opts PlanOptions) (*Plan, error) {
	fallback := opts.FallbackSec
	if fallback <= 0 {
		fallback = defaultFallbackSec
	}

	var (
		kept      []types.Scene
		durations []float64
	)
	for _, scene := range scenes {
		if !opts.SubtitleOnly {
			if scene.ImageFile == "" || !fileExists(scene.ImageFile) {
				log.Warn().Int("scene", scene.Index).Str("image", scene.ImageFile).
					Msg("scene image missing, dropping scene")
				continue
			}
		}

		dur := fallback
		switch {
		case scene.AudioFile != "":
			d, err := prober.Duration(ctx, scene.AudioFile)
			if err != nil {
				if opts.SubtitleOnly {
					log.Warn().Int("scene", scene.Index).Err(err).
						Msgf("scene audio unreadable, using %.1fs fallback", fallback)
					break
				}
				log.Warn().Int("scene", scene.Index).Err(err).
					Msg("scene audio unreadable, dropping scene")
				continue
			}
			dur = d
		case opts.SubtitleOnly:
			// silent scene still consumes timeline space
		default:
			log.Warn().Int("scene", scene.Index).Msg("scene has no audio, dropping scene")
			continue
		}

		scene.DurationSec = dur
		kept = append(kept, scene)
		durations = append(durations, dur)
	}

	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: %d scene(s) supplied, none survived asset validation",
			ErrNoRenderableScenes, len(scenes))
	}
	return NewPlan(kept, durations)
}

// NewPlan assembles a Plan from already-validated scenes and their
// durations, computing the cumulative offsets.
func NewPlan(scenes []types.Scene, durations []float64) (*Plan, error) {
	if len(scenes) != len(durations) {
		return nil, fmt.Errorf("%w: %d scenes but %d durations", ErrInputMismatch, len(scenes), len(durations))
	}
	offsets := make([]float64, len(durations)+1)
	for i, d := range durations {
		if d <= 0 {
			return nil, fmt.Errorf("%w: scene %d has non-positive duration %.3f", ErrInputMismatch, scenes[i].Index, d)
		}
		offsets[i+1] = offsets[i] + d
	}
	return &Plan{
		Scenes:    scenes,
		Durations: durations,
		Offsets:   offsets,
		Total:     offsets[len(offsets)-1],
	}, nil
}

// PairScenes zips parallel narration/image/audio lists into a scene list.
// The image and audio lists must agree in length with the narrations.
func PairScenes(narrations, images, audios []string) ([]types.Scene, error) {
	if len(images) != len(audios) || len(narrations) != len(images) {
		return nil, fmt.Errorf("%w: %d narrations, %d images, %d audios",
			ErrInputMismatch, len(narrations), len(images), len(audios))
	}
	scenes := make([]types.Scene, len(narrations))
	for i := range narrations {
		scenes[i] = types.Scene{
			Index:     i + 1, // scene indexes are 1-based everywhere
			Narration: narrations[i],
			ImageFile: images[i],
			AudioFile: audios[i],
		}
	}
	return scenes, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"reelforge/config"
	"reelforge/media"
	"reelforge/types"
)

// SynthesizeAll generates narration audio for every scene with bounded
// concurrency, then measures each file's real duration. A failed scene
// keeps an empty AudioFile and a warning; the renderer drops it later.
func SynthesizeAll(ctx context.Context, synth Synthesizer, prober media.Prober, cfg *config.Config, scenes []types.Scene, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create audio dir: %w", err)
	}

	limiter := rate.NewLimiter(rate.Limit(float64(cfg.Audio.RequestsPerMin)/60.0), 1)
	timeout := time.Duration(cfg.Audio.TimeoutSec * float64(time.Second))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Audio.MaxConcurrent)

	for i := range scenes {
		i := i
		g.Go(func() error {
			if scenes[i].Narration == "" {
				return nil
			}
			if err := limiter.Wait(gctx); err != nil {
				return err
			}
			callCtx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()

			outFile := filepath.Join(outputDir, fmt.Sprintf("scene_%03d.mp3", scenes[i].Index))
			if err := synth.Synthesize(callCtx, scenes[i].Narration, outFile); err != nil {
				log.Warn().Int("scene", scenes[i].Index).Err(err).
					Msg("narration synthesis failed, scene will be dropped at render")
				return nil
			}
			scenes[i].AudioFile = outFile
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Replace the reading-pace estimates with measured durations.
	for i := range scenes {
		if scenes[i].AudioFile == "" {
			continue
		}
		dur, err := prober.Duration(ctx, scenes[i].AudioFile)
		if err != nil {
			log.Warn().Int("scene", scenes[i].Index).Err(err).
				Msg("could not measure narration duration, keeping estimate")
			continue
		}
		scenes[i].DurationSec = dur
	}
	return nil
}

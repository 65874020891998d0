package visuals

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"reelforge/config"
	"reelforge/types"
)

// FetchAll generates images for every scene with bounded concurrency and a
// request-rate ceiling. A failed scene keeps an empty ImageFile and a
// warning; the renderer drops it later. Results land on the scenes slice
// in place, keyed by position, never by completion order.
func FetchAll(ctx context.Context, provider Provider, cfg *config.Config, scenes []types.Scene, outputDir string) error {
	limiter := rate.NewLimiter(rate.Limit(float64(cfg.Visuals.RequestsPerMin)/60.0), 1)
	timeout := time.Duration(cfg.Visuals.TimeoutSec * float64(time.Second))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Visuals.MaxConcurrent)

	for i := range scenes {
		i := i
		g.Go(func() error {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			callCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			path, err := provider.Fetch(callCtx, &scenes[i], outputDir)
			if err != nil {
				log.Warn().Int("scene", scenes[i].Index).Err(err).
					Msg("scene image generation failed, scene will be dropped at render")
				return nil
			}
			scenes[i].ImageFile = path
			return nil
		})
	}
	return g.Wait()
}

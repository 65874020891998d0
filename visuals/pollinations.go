// Package visuals generates one still image per scene from the scene's
// image prompt.
package visuals

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"reelforge/config"
	"reelforge/types"
)

// Provider produces an image file for one scene.
type Provider interface {
	Fetch(ctx context.Context, scene *types.Scene, outputDir string) (string, error)
}

// Pollinations generates images via Pollinations.ai (free, no key needed).
type Pollinations struct {
	cfg        *config.Config
	httpClient *http.Client
}

// NewPollinations creates a Pollinations image provider.
func NewPollinations(cfg *config.Config) *Pollinations {
	return &Pollinations{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Fetch generates the scene's image and saves it under outputDir. The seed
// is derived from the scene index, so reruns reproduce the same image.
func (p *Pollinations) Fetch(ctx context.Context, scene *types.Scene, outputDir string) (string, error) {
	if scene.ImagePrompt == "" {
		return "", fmt.Errorf("scene %d has no image prompt", scene.Index)
	}

	imageURL := fmt.Sprintf(
		"https://image.pollinations.ai/prompt/%s?width=%d&height=%d&nologo=true&model=%s&seed=%d",
		url.PathEscape(enhancePrompt(scene.ImagePrompt)),
		p.cfg.Visuals.ImageWidth,
		p.cfg.Visuals.ImageHeight,
		p.cfg.Visuals.Model,
		sceneSeed(scene.Index),
	)

	outFile := filepath.Join(outputDir, fmt.Sprintf("scene_%03d.jpg", scene.Index))
	log.Info().Int("scene", scene.Index).Str("prompt", truncate(scene.ImagePrompt, 60)).
		Msg("generating scene image")

	// Pollinations occasionally times out; retry with backoff.
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		err = p.downloadImage(ctx, imageURL, outFile)
		if err == nil {
			return outFile, nil
		}
		log.Warn().Int("scene", scene.Index).Int("attempt", attempt).Err(err).
			Msg("image fetch attempt failed")
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * 3 * time.Second):
		}
	}
	return "", fmt.Errorf("pollinations fetch failed after 3 attempts: %w", err)
}

func (p *Pollinations) downloadImage(ctx context.Context, imageURL, outFile string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; ReelForge/1.0)")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from Pollinations", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	// An error page is far smaller than any real image.
	if len(data) < 100 {
		return fmt.Errorf("response too small (%d bytes)", len(data))
	}
	return os.WriteFile(outFile, data, 0644)
}

// sceneSeed maps a scene index to a stable generation seed.
func sceneSeed(index int) int {
	return index*42 + 7
}

// enhancePrompt appends framing and quality modifiers suited to a vertical
// slideshow still.
func enhancePrompt(base string) string {
	return base + ", vertical composition, rich detail, soft cinematic lighting, no text, no watermark"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

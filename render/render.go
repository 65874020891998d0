// Package render is the media assembly core: it turns an ordered scene
// list (narration text + still image + narration audio) into a finished
// vertical video with Ken Burns motion, scene transitions, a background
// music bed, and a matching SRT transcript.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"reelforge/config"
	"reelforge/media"
	"reelforge/subtitle"
	"reelforge/types"
)

// Renderer assembles the final video from resolved scene assets. Each
// invocation is a pure function of its scene list and options; the
// Renderer keeps no per-run state.
type Renderer struct {
	cfg    *config.Config
	prober media.Prober
}

// New creates a Renderer using ffprobe for duration measurement.
func New(cfg *config.Config) *Renderer {
	return &Renderer{cfg: cfg, prober: media.FFProbe{}}
}

// NewWithProber creates a Renderer with a custom duration source.
func NewWithProber(cfg *config.Config, prober media.Prober) *Renderer {
	return &Renderer{cfg: cfg, prober: prober}
}

// Options configure one assembly run.
type Options struct {
	// OutputPath is the target video path. Required; a pre-existing file
	// there fails the run rather than being overwritten.
	OutputPath string

	// BGM configures the background-music bed. Empty path disables it.
	BGM MixSpec

	// Subtitles controls whether the sibling .srt file is written.
	Subtitles bool
}

// CreateVideo runs the full assembly: timing plan, per-scene animation,
// audio binding with transitions, concatenation, BGM mix, and the sibling
// subtitle file. Scene-level asset failures drop the scene; encode-stage
// failures abort with ErrEncodeFailed and leave no partial artifact.
func (r *Renderer) CreateVideo(ctx context.Context, scenes []types.Scene, opts Options) (*types.RenderResult, error) {
	if opts.OutputPath == "" {
		return nil, fmt.Errorf("%w: empty output path", ErrInputMismatch)
	}

	plan, err := BuildPlan(ctx, r.prober, scenes, PlanOptions{FallbackSec: r.cfg.Subtitles.FallbackSec})
	if err != nil {
		return nil, err
	}
	log.Info().Int("scenes", len(plan.Scenes)).Float64("total_sec", plan.Total).
		Msg("render plan ready")

	workDir, err := r.makeWorkDir()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	defer os.RemoveAll(workDir)

	// Pass 1: animate every surviving scene. An undecodable image drops
	// the scene here so the fade roles below see the final scene count.
	animator := &Animator{
		Width:     r.cfg.Render.Width,
		Height:    r.cfg.Render.Height,
		FPS:       r.cfg.Render.FPS,
		ZoomRatio: r.cfg.Render.ZoomRatio,
		Preset:    r.cfg.Render.Preset,
		CRF:       r.cfg.Render.CRF,
	}
	type renderedScene struct {
		scene    types.Scene
		duration float64
		clip     string
	}
	var rendered []renderedScene
	for i, scene := range plan.Scenes {
		clip := filepath.Join(workDir, fmt.Sprintf("kenburns_%03d.mp4", scene.Index))
		if err := animator.RenderClip(ctx, scene.ImageFile, plan.Durations[i], clip); err != nil {
			if isSceneLocal(err) {
				log.Warn().Int("scene", scene.Index).Err(err).Msg("scene animation failed, dropping scene")
				continue
			}
			return nil, fmt.Errorf("%w: scene %d: %v", ErrEncodeFailed, scene.Index, err)
		}
		rendered = append(rendered, renderedScene{scene, plan.Durations[i], clip})
	}
	if len(rendered) == 0 {
		return nil, fmt.Errorf("%w: all %d planned scene(s) failed to animate",
			ErrNoRenderableScenes, len(plan.Scenes))
	}

	// Rebuild the timeline over the scenes that actually rendered. The
	// subtitle file is generated from this same plan, never recomputed.
	finalScenes := make([]types.Scene, len(rendered))
	finalDurations := make([]float64, len(rendered))
	for i, rs := range rendered {
		finalScenes[i] = rs.scene
		finalDurations[i] = rs.duration
	}
	plan, err = NewPlan(finalScenes, finalDurations)
	if err != nil {
		return nil, err
	}

	// Pass 2: bind narration audio and transitions.
	compositor := &Compositor{
		CrossfadeSec: r.cfg.Render.CrossfadeSec,
		Preset:       r.cfg.Render.Preset,
		CRF:          r.cfg.Render.CRF,
	}
	clips := make([]string, len(rendered))
	for i, rs := range rendered {
		composed := filepath.Join(workDir, fmt.Sprintf("scene_%03d.mp4", rs.scene.Index))
		if err := compositor.ComposeScene(ctx, rs.clip, rs.scene.AudioFile, i, len(rendered), rs.duration, composed); err != nil {
			return nil, fmt.Errorf("%w: scene %d: %v", ErrEncodeFailed, rs.scene.Index, err)
		}
		clips[i] = composed
	}

	program := filepath.Join(workDir, "program.mp4")
	if err := concatClips(ctx, clips, workDir, program); err != nil {
		return nil, err
	}

	if opts.BGM.Path != "" {
		mixed := filepath.Join(workDir, "program_bgm.mp4")
		mixer := &Mixer{Prober: r.prober}
		switch err := mixer.MixIn(ctx, program, opts.BGM, plan.Total, mixed); {
		case err == nil:
			program = mixed
		case isSceneLocal(err):
			log.Warn().Err(err).Msg("background music unavailable, exporting narration only")
		default:
			return nil, err
		}
	}

	if err := finalize(program, opts.OutputPath); err != nil {
		return nil, err
	}
	log.Info().Str("video", opts.OutputPath).Float64("duration", plan.Total).
		Msg("video exported")

	result := &types.RenderResult{
		VideoFile:   opts.OutputPath,
		DurationSec: plan.Total,
		SceneCount:  len(plan.Scenes),
	}

	if opts.Subtitles {
		srtPath := subtitlePath(opts.OutputPath)
		cues := subtitle.FromScenes(plan.Scenes, plan.Durations)
		if len(cues) == 0 {
			log.Warn().Msg("no narrated scenes, skipping subtitle file")
		} else if err := subtitle.WriteFile(srtPath, cues); err != nil {
			log.Warn().Err(err).Msg("subtitle write failed, video kept")
		} else {
			result.SubtitleFile = srtPath
			log.Info().Str("subtitles", srtPath).Int("cues", len(cues)).Msg("subtitles written")
		}
	}

	return result, nil
}

// EstimateDuration computes the program duration without rendering
// anything, so callers can show an ETA before committing to the encode.
func (r *Renderer) EstimateDuration(ctx context.Context, scenes []types.Scene) (float64, error) {
	plan, err := BuildPlan(ctx, r.prober, scenes, PlanOptions{FallbackSec: r.cfg.Subtitles.FallbackSec})
	if err != nil {
		return 0, err
	}
	return plan.Total, nil
}

// GenerateSubtitles writes only the SRT transcript, tolerating missing
// audio assets with the configured fallback duration.
func (r *Renderer) GenerateSubtitles(ctx context.Context, scenes []types.Scene, outPath string) error {
	plan, err := BuildPlan(ctx, r.prober, scenes, PlanOptions{
		SubtitleOnly: true,
		FallbackSec:  r.cfg.Subtitles.FallbackSec,
	})
	if err != nil {
		return err
	}
	cues := subtitle.FromScenes(plan.Scenes, plan.Durations)
	if len(cues) == 0 {
		return fmt.Errorf("%w: no narrated scenes", ErrNoRenderableScenes)
	}
	return subtitle.WriteFile(outPath, cues)
}

func (r *Renderer) makeWorkDir() (string, error) {
	base := r.cfg.Paths.Work
	if base == "" {
		base = os.TempDir()
	}
	if err := os.MkdirAll(base, 0755); err != nil {
		return "", err
	}
	return os.MkdirTemp(base, "render_")
}

// isSceneLocal reports whether an error is recoverable at scene or track
// granularity rather than fatal for the whole call.
func isSceneLocal(err error) bool {
	return errors.Is(err, media.ErrAssetUnreadable) || errors.Is(err, ErrBGMUnavailable)
}

func subtitlePath(videoPath string) string {
	ext := filepath.Ext(videoPath)
	return strings.TrimSuffix(videoPath, ext) + ".srt"
}

// Package pipeline chains the stages from topic to published video: script,
// narration audio, scene images, assembly, and optional upload. Stage
// artifacts are saved under the run directory after every stage, so a
// failed run leaves enough behind to diagnose or resume by hand.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"reelforge/audio"
	"reelforge/config"
	"reelforge/media"
	"reelforge/publish"
	"reelforge/render"
	"reelforge/script"
	"reelforge/types"
	"reelforge/visuals"
	"reelforge/workspace"
)

// Runner executes full pipeline runs.
type Runner struct {
	cfg    *config.Config
	writer script.Storyboarder
	images visuals.Provider
	prober media.Prober
}

// New wires a Runner with the default providers.
func New(cfg *config.Config) *Runner {
	return &Runner{
		cfg:    cfg,
		writer: script.New(cfg),
		images: visuals.NewPollinations(cfg),
		prober: media.FFProbe{},
	}
}

// Options tune one run.
type Options struct {
	Persona string
	Upload  bool
}

// Run takes a topic through every stage and returns the final state. The
// returned error is also recorded in the state file under the run dir.
func (r *Runner) Run(ctx context.Context, topic string, opts Options) (*types.PipelineState, error) {
	runDir, err := workspace.UniqueDir(r.cfg.Paths.Output, topic)
	if err != nil {
		return nil, err
	}

	state := &types.PipelineState{
		RunID:     uuid.NewString()[:8],
		Topic:     topic,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
	log.Info().Str("run_id", state.RunID).Str("topic", topic).Str("dir", runDir).
		Msg("pipeline starting")

	err = r.run(ctx, topic, runDir, opts, state)
	state.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	if err != nil {
		state.Error = err.Error()
	}
	if saveErr := saveJSON(filepath.Join(runDir, "state.json"), state); saveErr != nil {
		log.Warn().Err(saveErr).Msg("could not save run state")
	}
	return state, err
}

func (r *Runner) run(ctx context.Context, topic, runDir string, opts Options, state *types.PipelineState) error {
	// Stage 1: storyboard.
	sc, err := r.writer.Storyboard(ctx, topic, opts.Persona)
	if err != nil {
		return fmt.Errorf("storyboard stage: %w", err)
	}
	state.Script = sc
	if err := saveJSON(filepath.Join(runDir, "script.json"), sc); err != nil {
		return err
	}

	// Stage 2: narration audio, with durations measured off the files.
	synth, err := audio.NewEdgeTTS(r.cfg)
	if err != nil {
		return fmt.Errorf("audio stage: %w", err)
	}
	if err := audio.SynthesizeAll(ctx, synth, r.prober, r.cfg, sc.Scenes, filepath.Join(runDir, "audio")); err != nil {
		return fmt.Errorf("audio stage: %w", err)
	}
	if err := saveJSON(filepath.Join(runDir, "script.json"), sc); err != nil {
		return err
	}

	// Stage 3: scene images.
	imageDir := filepath.Join(runDir, "images")
	if err := os.MkdirAll(imageDir, 0755); err != nil {
		return fmt.Errorf("visuals stage: %w", err)
	}
	if err := visuals.FetchAll(ctx, r.images, r.cfg, sc.Scenes, imageDir); err != nil {
		return fmt.Errorf("visuals stage: %w", err)
	}
	if err := saveJSON(filepath.Join(runDir, "script.json"), sc); err != nil {
		return err
	}

	// Stage 4: assembly.
	renderer := render.New(r.cfg)
	result, err := renderer.CreateVideo(ctx, sc.Scenes, render.Options{
		OutputPath: filepath.Join(runDir, workspace.SanitizeName(sc.Title)+".mp4"),
		BGM:        render.MixSpec{Path: r.cfg.Render.BGMFile, Gain: r.cfg.Render.BGMVolume},
		Subtitles:  r.cfg.Subtitles.Enabled,
	})
	if err != nil {
		return fmt.Errorf("render stage: %w", err)
	}
	state.Result = result

	// Stage 5: upload, only when asked for.
	if opts.Upload && r.cfg.Upload.Enabled {
		meta := publish.NewMetadataGenerator(r.cfg).Generate(ctx, sc)
		url, err := publish.New(r.cfg).Upload(ctx, result, meta)
		if err != nil {
			return fmt.Errorf("upload stage: %w", err)
		}
		state.UploadURL = url
	}

	log.Info().Str("video", result.VideoFile).Float64("duration", result.DurationSec).
		Int("scenes", result.SceneCount).Msg("pipeline complete")
	return nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	return nil
}

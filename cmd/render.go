package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"reelforge/render"
	"reelforge/types"
	"reelforge/workspace"
)

var (
	renderOutput   string
	renderBGM      string
	renderBGMGain  float64
	renderSRTOnly  bool
	renderEstimate bool
)

var renderCmd = &cobra.Command{
	Use:   "render <script.json>",
	Short: "Assemble a video from an existing script manifest",
	Long: `Assemble the final video from a script.json produced by an earlier run.
The manifest's scenes must already point at their image and audio files.
Use --srt-only to regenerate just the subtitle file, or --estimate to
print the program duration without rendering.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sc, err := loadScript(args[0])
		if err != nil {
			return err
		}

		renderer := render.New(cfg)

		if renderEstimate {
			total, err := renderer.EstimateDuration(ctx, sc.Scenes)
			if err != nil {
				return err
			}
			fmt.Printf("%.3f\n", total)
			return nil
		}

		out := renderOutput
		if out == "" {
			out = filepath.Join(filepath.Dir(args[0]), workspace.SanitizeName(sc.Title)+".mp4")
		}

		if renderSRTOnly {
			srt := strings.TrimSuffix(out, filepath.Ext(out)) + ".srt"
			return renderer.GenerateSubtitles(ctx, sc.Scenes, srt)
		}

		bgm := render.MixSpec{Path: cfg.Render.BGMFile, Gain: cfg.Render.BGMVolume}
		if renderBGM != "" {
			bgm = render.MixSpec{Path: renderBGM, Gain: renderBGMGain}
		}

		result, err := renderer.CreateVideo(ctx, sc.Scenes, render.Options{
			OutputPath: out,
			BGM:        bgm,
			Subtitles:  cfg.Subtitles.Enabled,
		})
		if err != nil {
			return err
		}
		fmt.Println(result.VideoFile)
		return nil
	},
}

func loadScript(path string) (*types.Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script manifest: %w", err)
	}
	var sc types.Script
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse script manifest: %w", err)
	}
	return &sc, nil
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output video path (default: beside the manifest)")
	renderCmd.Flags().StringVar(&renderBGM, "bgm", "", "background music file (overrides config)")
	renderCmd.Flags().Float64Var(&renderBGMGain, "bgm-gain", 0, "background music gain in [0,1] (0 uses the default)")
	renderCmd.Flags().BoolVar(&renderSRTOnly, "srt-only", false, "write only the subtitle file")
	renderCmd.Flags().BoolVar(&renderEstimate, "estimate", false, "print the program duration and exit")
	rootCmd.AddCommand(renderCmd)
}

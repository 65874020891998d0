// Package audio synthesizes narration speech for each scene.
package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"reelforge/config"
)

// Synthesizer renders one narration string to an audio file.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outFile string) error
}

// EdgeTTS drives the edge-tts CLI (free Microsoft neural voices). A
// custom engine can be substituted via TTS_COMMAND, which must accept
// --text "..." --output path.
type EdgeTTS struct {
	cfg *config.Config
}

// NewEdgeTTS creates the TTS engine after verifying one is installed.
func NewEdgeTTS(cfg *config.Config) (*EdgeTTS, error) {
	if os.Getenv("TTS_COMMAND") == "" {
		if _, err := exec.LookPath("edge-tts"); err != nil {
			return nil, fmt.Errorf("no TTS engine found: set TTS_COMMAND or install edge-tts (pip install edge-tts)")
		}
	}
	return &EdgeTTS{cfg: cfg}, nil
}

// Synthesize renders text to outFile, retrying transient failures.
func (e *EdgeTTS) Synthesize(ctx context.Context, text, outFile string) error {
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		err = e.run(ctx, text, outFile)
		if err == nil {
			return nil
		}
		log.Warn().Int("attempt", attempt).Err(err).Msg("tts attempt failed")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 2 * time.Second):
		}
	}
	return fmt.Errorf("tts failed after 3 attempts: %w", err)
}

func (e *EdgeTTS) run(ctx context.Context, text, outFile string) error {
	var cmd *exec.Cmd

	ttsCmd := strings.TrimSpace(os.Getenv("TTS_COMMAND"))
	switch {
	case ttsCmd == "":
		cmd = exec.CommandContext(ctx,
			"edge-tts",
			"--voice", e.cfg.Audio.Voice,
			"--rate", e.cfg.Audio.Rate,
			"--text", text,
			"--write-media", outFile,
		)
	case strings.HasSuffix(ttsCmd, ".py"):
		cmd = exec.CommandContext(ctx,
			"python3", ttsCmd,
			"--text", text,
			"--output", outFile,
		)
	default:
		cmd = exec.CommandContext(ctx,
			ttsCmd,
			"--text", text,
			"--output", outFile,
		)
	}

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w\n%s", cmd.Path, err, strings.TrimSpace(string(out)))
	}
	return nil
}

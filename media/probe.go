// Package media reads playback metadata from audio and video assets via
// ffprobe. Asset problems surface as ErrAssetUnreadable so callers can
// distinguish a bad scene asset from a broken pipeline.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/rs/zerolog/log"
)

// ErrAssetUnreadable marks an asset that is missing, empty, or not a
// decodable media container. Callers drop the affected scene and continue.
var ErrAssetUnreadable = errors.New("asset unreadable")

// Prober reports the playback duration of a media asset in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// FFProbe probes assets with the ffprobe binary.
type FFProbe struct{}

// Available reports whether ffprobe is on the PATH.
func (FFProbe) Available() bool {
	_, err := exec.LookPath("ffprobe")
	return err == nil
}

// Duration returns the asset's playback duration in seconds. Missing,
// zero-length, and undecodable files return ErrAssetUnreadable.
func (FFProbe) Duration(ctx context.Context, path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrAssetUnreadable, path, err)
	}
	if info.Size() == 0 {
		return 0, fmt.Errorf("%w: %s: empty file", ErrAssetUnreadable, path)
	}

	cmd := exec.CommandContext(ctx,
		"ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("%w: %s: ffprobe: %v", ErrAssetUnreadable, path, err)
	}

	dur, err := parseProbeDuration(out)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrAssetUnreadable, path, err)
	}
	return dur, nil
}

// probeOutput mirrors the ffprobe JSON structure.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func parseProbeDuration(data []byte) (float64, error) {
	var probe probeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %v", err)
	}
	if probe.Format.Duration == "" {
		return 0, fmt.Errorf("no duration in ffprobe output")
	}
	dur, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %v", probe.Format.Duration, err)
	}
	if dur <= 0 {
		return 0, fmt.Errorf("non-positive duration %.3f", dur)
	}
	return dur, nil
}

// TotalDuration sums the durations of the given assets. Unreadable entries
// contribute zero; the caller has already dropped their scenes.
func TotalDuration(ctx context.Context, p Prober, paths []string) float64 {
	var total float64
	for _, path := range paths {
		dur, err := p.Duration(ctx, path)
		if err != nil {
			log.Warn().Str("asset", path).Err(err).Msg("skipping unreadable asset in total")
			continue
		}
		total += dur
	}
	return total
}

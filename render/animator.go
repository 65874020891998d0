package render

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // storyboard images may arrive as PNG
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"reelforge/media"
)

// Animator turns still images into silent Ken Burns clips at the target
// resolution and frame rate.
type Animator struct {
	Width     int
	Height    int
	FPS       int
	ZoomRatio float64
	Preset    string
	CRF       int
}

// RenderClip animates imagePath into a silent video of exactly duration
// seconds, written to outFile. Frames are rendered in-process and handed to
// ffmpeg as an image sequence.
func (a *Animator) RenderClip(ctx context.Context, imagePath string, duration float64, outFile string) error {
	src, err := loadImage(imagePath)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", media.ErrAssetUnreadable, imagePath, err)
	}

	anim, err := NewAnimation(src, AnimationOptions{
		Width:     a.Width,
		Height:    a.Height,
		ZoomRatio: a.ZoomRatio,
		Duration:  duration,
		FPS:       a.FPS,
	})
	if err != nil {
		return err
	}

	framesDir, err := os.MkdirTemp(filepath.Dir(outFile), "frames_")
	if err != nil {
		return fmt.Errorf("create frames dir: %w", err)
	}
	defer os.RemoveAll(framesDir)

	count, err := writeFrames(anim, framesDir)
	if err != nil {
		return err
	}
	log.Debug().Str("image", filepath.Base(imagePath)).Int("frames", count).
		Float64("duration", duration).Msg("frames rendered")

	return a.encodeFrames(ctx, framesDir, anim.FPS, duration, outFile)
}

// writeFrames drains the animation's frame stream into numbered JPEGs.
func writeFrames(anim *Animation, dir string) (int, error) {
	stream := anim.Frames()
	n := 0
	for {
		_, frame, ok := stream.Next()
		if !ok {
			break
		}
		path := filepath.Join(dir, fmt.Sprintf("fr%05d.jpg", n))
		if err := writeJPEG(path, frame); err != nil {
			return n, fmt.Errorf("write frame %d: %w", n, err)
		}
		n++
	}
	return n, nil
}

func writeJPEG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *Animator) encodeFrames(ctx context.Context, framesDir string, fps int, duration float64, outFile string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", filepath.Join(framesDir, "fr%05d.jpg"),
		"-t", fmt.Sprintf("%.3f", duration),
		"-c:v", "libx264",
		"-preset", a.Preset,
		"-crf", fmt.Sprintf("%d", a.CRF),
		"-pix_fmt", "yuv420p",
		"-an",
		outFile,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg frame encode: %w\n%s", err, tail(out))
	}
	return nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// tail trims ffmpeg output to the last few hundred bytes, which is where
// the actual error message lives.
func tail(out []byte) []byte {
	const keep = 400
	if len(out) <= keep {
		return out
	}
	return out[len(out)-keep:]
}

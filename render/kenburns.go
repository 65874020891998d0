package render

import (
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// DefaultZoomRatio is the fraction the visible window grows over the life
// of a clip (0.15 reads as a slow push toward the subject).
const DefaultZoomRatio = 0.15

// Animation turns one still image into a timed Ken Burns zoom. The zoom is
// a pure function of t, so frame geometry can be tested without an encoder.
//
// The source is pre-scaled so that at maximum zoom the crop window still
// lies fully inside the buffered frame: no frame ever exposes an edge.
type Animation struct {
	Width     int     // output frame width
	Height    int     // output frame height
	ZoomRatio float64 // 0 means a static clip
	Duration  float64 // seconds, > 0
	FPS       int

	buffered *image.RGBA // pre-scaled, center-cropped to buffer*target
}

// AnimationOptions configure NewAnimation.
type AnimationOptions struct {
	Width     int
	Height    int
	ZoomRatio float64
	Duration  float64
	FPS       int
}

// PrescaleFactor returns the scale to apply to a srcW×srcH image so that a
// (1+zoomRatio)-buffered target frame can be cropped from it at any zoom
// level without revealing edges.
func PrescaleFactor(srcW, srcH, dstW, dstH int, zoomRatio float64) float64 {
	buffer := 1 + zoomRatio
	return math.Max(
		float64(dstW)*buffer/float64(srcW),
		float64(dstH)*buffer/float64(srcH),
	)
}

// NewAnimation prepares the buffered frame for a zoom of the given duration.
// A non-positive duration is a caller contract violation.
func NewAnimation(src image.Image, opts AnimationOptions) (*Animation, error) {
	if opts.Duration <= 0 {
		return nil, fmt.Errorf("%w: animation duration %.3f must be positive", ErrInputMismatch, opts.Duration)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: target size %dx%d", ErrInputMismatch, opts.Width, opts.Height)
	}
	if opts.ZoomRatio < 0 {
		return nil, fmt.Errorf("%w: negative zoom ratio %.3f", ErrInputMismatch, opts.ZoomRatio)
	}
	if opts.FPS <= 0 {
		opts.FPS = 24
	}

	srcBounds := src.Bounds()
	srcW, srcH := srcBounds.Dx(), srcBounds.Dy()
	if srcW == 0 || srcH == 0 {
		return nil, fmt.Errorf("%w: empty source image", ErrInputMismatch)
	}

	buffer := 1 + opts.ZoomRatio
	bufW := int(math.Round(float64(opts.Width) * buffer))
	bufH := int(math.Round(float64(opts.Height) * buffer))

	factor := PrescaleFactor(srcW, srcH, opts.Width, opts.Height, opts.ZoomRatio)
	scaledW := int(math.Ceil(float64(srcW) * factor))
	scaledH := int(math.Ceil(float64(srcH) * factor))
	if scaledW < bufW {
		scaledW = bufW
	}
	if scaledH < bufH {
		scaledH = bufH
	}

	scaled := image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), src, srcBounds, xdraw.Src, nil)

	// Center-crop the slack off, keeping exactly the animation margin.
	left := (scaledW - bufW) / 2
	top := (scaledH - bufH) / 2
	buffered := image.NewRGBA(image.Rect(0, 0, bufW, bufH))
	xdraw.Copy(buffered, image.Point{}, scaled, image.Rect(left, top, left+bufW, top+bufH), xdraw.Src, nil)

	return &Animation{
		Width:     opts.Width,
		Height:    opts.Height,
		ZoomRatio: opts.ZoomRatio,
		Duration:  opts.Duration,
		FPS:       opts.FPS,
		buffered:  buffered,
	}, nil
}

// Scale returns the zoom scale factor at time t: monotonically decreasing
// from 1.0 toward 1/(1+zoomRatio). t outside [0, Duration] is clamped.
func (a *Animation) Scale(t float64) float64 {
	progress := clamp(t/a.Duration, 0, 1)
	return 1 / (1 + a.ZoomRatio*progress)
}

// CropWindow returns the centered source window sampled at time t. The
// window starts at exactly the target size and grows to the full buffered
// frame; it never leaves the buffer's bounds.
func (a *Animation) CropWindow(t float64) image.Rectangle {
	bounds := a.buffered.Bounds()
	w := int(math.Round(float64(a.Width) / a.Scale(t)))
	h := int(math.Round(float64(a.Height) / a.Scale(t)))
	if w > bounds.Dx() {
		w = bounds.Dx()
	}
	if h > bounds.Dy() {
		h = bounds.Dy()
	}
	x := (bounds.Dx() - w) / 2
	y := (bounds.Dy() - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

// FrameAt renders the output frame for time t at exactly Width×Height.
func (a *Animation) FrameAt(t float64) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, a.Width, a.Height))
	window := a.CropWindow(t)
	if window.Dx() == a.Width && window.Dy() == a.Height {
		xdraw.Copy(dst, image.Point{}, a.buffered, window, xdraw.Src, nil)
		return dst
	}
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), a.buffered, window, xdraw.Src, nil)
	return dst
}

// FrameCount is the number of frames in the clip at the configured rate.
func (a *Animation) FrameCount() int {
	n := int(math.Round(a.Duration * float64(a.FPS)))
	if n < 1 {
		n = 1
	}
	return n
}

// FrameStream iterates the clip's frames once, in order. It is not
// restartable; the assembler consumes it exactly once.
type FrameStream struct {
	anim *Animation
	next int
}

// Frames returns a one-shot stream over the clip's frames.
func (a *Animation) Frames() *FrameStream {
	return &FrameStream{anim: a}
}

// Next returns the next frame and its timestamp. ok is false once the
// stream is exhausted.
func (s *FrameStream) Next() (t float64, frame *image.RGBA, ok bool) {
	if s.next >= s.anim.FrameCount() {
		return 0, nil, false
	}
	t = float64(s.next) / float64(s.anim.FPS)
	frame = s.anim.FrameAt(t)
	s.next++
	return t, frame, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package render

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func gradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}
	return img
}

func TestPrescaleFactorCoversBufferedFrame(t *testing.T) {
	tests := []struct {
		name                     string
		srcW, srcH, dstW, dstH   int
		zoomRatio                float64
	}{
		{"landscape source portrait target", 1920, 1080, 108, 192, 0.15},
		{"square source", 500, 500, 108, 192, 0.15},
		{"source smaller than target", 50, 50, 108, 192, 0.15},
		{"zero zoom", 400, 300, 108, 192, 0},
		{"aggressive zoom", 800, 600, 108, 192, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := PrescaleFactor(tt.srcW, tt.srcH, tt.dstW, tt.dstH, tt.zoomRatio)
			buffer := 1 + tt.zoomRatio
			if float64(tt.srcW)*f < float64(tt.dstW)*buffer-1e-9 {
				t.Errorf("scaled width %.2f below buffered target %.2f",
					float64(tt.srcW)*f, float64(tt.dstW)*buffer)
			}
			if float64(tt.srcH)*f < float64(tt.dstH)*buffer-1e-9 {
				t.Errorf("scaled height %.2f below buffered target %.2f",
					float64(tt.srcH)*f, float64(tt.dstH)*buffer)
			}
		})
	}
}

func TestScaleMonotonicallyDecreasing(t *testing.T) {
	anim, err := NewAnimation(gradientImage(400, 300), AnimationOptions{
		Width: 108, Height: 192, ZoomRatio: 0.15, Duration: 2.0, FPS: 24,
	})
	if err != nil {
		t.Fatalf("NewAnimation: %v", err)
	}

	if got := anim.Scale(0); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Scale(0) = %v, want 1.0", got)
	}
	want := 1 / 1.15
	if got := anim.Scale(2.0); math.Abs(got-want) > 1e-9 {
		t.Errorf("Scale(Duration) = %v, want %v", got, want)
	}

	prev := anim.Scale(0)
	for i := 1; i <= 48; i++ {
		cur := anim.Scale(float64(i) / 24)
		if cur > prev {
			t.Fatalf("scale increased at frame %d: %v > %v", i, cur, prev)
		}
		prev = cur
	}

	// Clamping outside the clip window.
	if anim.Scale(-1) != anim.Scale(0) {
		t.Error("negative t must clamp to start")
	}
	if anim.Scale(99) != anim.Scale(2.0) {
		t.Error("t past the end must clamp to Duration")
	}
}

func TestCropWindowStaysInsideBuffer(t *testing.T) {
	for _, zoom := range []float64{0, 0.1, 0.15, 0.3, 0.5} {
		anim, err := NewAnimation(gradientImage(640, 480), AnimationOptions{
			Width: 108, Height: 192, ZoomRatio: zoom, Duration: 1.0, FPS: 24,
		})
		if err != nil {
			t.Fatalf("zoom %v: %v", zoom, err)
		}
		bounds := anim.buffered.Bounds()
		for i := 0; i <= 24; i++ {
			window := anim.CropWindow(float64(i) / 24)
			if !window.In(bounds) {
				t.Fatalf("zoom %v frame %d: window %v leaves buffer %v", zoom, i, window, bounds)
			}
			if window.Dx() < anim.Width || window.Dy() < anim.Height {
				t.Fatalf("zoom %v frame %d: window %v smaller than target", zoom, i, window)
			}
		}
	}
}

func TestFrameAtExactOutputSize(t *testing.T) {
	anim, err := NewAnimation(gradientImage(300, 300), AnimationOptions{
		Width: 108, Height: 192, ZoomRatio: 0.15, Duration: 1.0, FPS: 24,
	})
	if err != nil {
		t.Fatalf("NewAnimation: %v", err)
	}
	for _, tm := range []float64{0, 0.5, 1.0} {
		frame := anim.FrameAt(tm)
		if frame.Bounds().Dx() != 108 || frame.Bounds().Dy() != 192 {
			t.Errorf("FrameAt(%v) bounds %v, want 108x192", tm, frame.Bounds())
		}
	}
}

func TestZeroZoomIsStatic(t *testing.T) {
	anim, err := NewAnimation(gradientImage(300, 300), AnimationOptions{
		Width: 108, Height: 192, ZoomRatio: 0, Duration: 1.0, FPS: 24,
	})
	if err != nil {
		t.Fatalf("NewAnimation: %v", err)
	}
	first := anim.CropWindow(0)
	last := anim.CropWindow(1.0)
	if first != last {
		t.Errorf("zero zoom must not move the window: %v vs %v", first, last)
	}
	if anim.Scale(0.5) != 1.0 {
		t.Errorf("zero zoom scale = %v, want 1.0", anim.Scale(0.5))
	}
}

func TestNewAnimationRejectsBadInput(t *testing.T) {
	src := gradientImage(100, 100)
	cases := []AnimationOptions{
		{Width: 108, Height: 192, Duration: 0},
		{Width: 108, Height: 192, Duration: -2},
		{Width: 0, Height: 192, Duration: 1},
		{Width: 108, Height: 192, ZoomRatio: -0.1, Duration: 1},
	}
	for _, opts := range cases {
		if _, err := NewAnimation(src, opts); err == nil {
			t.Errorf("NewAnimation(%+v) accepted invalid options", opts)
		}
	}
}

func TestFrameStreamYieldsAllFramesOnce(t *testing.T) {
	anim, err := NewAnimation(gradientImage(200, 200), AnimationOptions{
		Width: 54, Height: 96, ZoomRatio: 0.15, Duration: 0.5, FPS: 24,
	})
	if err != nil {
		t.Fatalf("NewAnimation: %v", err)
	}
	want := anim.FrameCount()
	if want != 12 {
		t.Fatalf("FrameCount = %d, want 12 for 0.5s at 24fps", want)
	}

	stream := anim.Frames()
	var count int
	var lastT float64 = -1
	for {
		tm, frame, ok := stream.Next()
		if !ok {
			break
		}
		if frame == nil {
			t.Fatal("stream returned nil frame")
		}
		if tm <= lastT {
			t.Fatalf("timestamps must strictly increase, got %v after %v", tm, lastT)
		}
		lastT = tm
		count++
	}
	if count != want {
		t.Errorf("stream yielded %d frames, want %d", count, want)
	}
	if _, _, ok := stream.Next(); ok {
		t.Error("exhausted stream must stay exhausted")
	}
}

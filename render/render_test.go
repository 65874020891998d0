package render

import (
	"errors"
	"fmt"
	"testing"

	"reelforge/media"
)

func TestSubtitlePath(t *testing.T) {
	tests := []struct {
		video string
		want  string
	}{
		{"out/video.mp4", "out/video.srt"},
		{"clip.mkv", "clip.srt"},
		{"noext", "noext.srt"},
	}
	for _, tt := range tests {
		if got := subtitlePath(tt.video); got != tt.want {
			t.Errorf("subtitlePath(%q) = %q, want %q", tt.video, got, tt.want)
		}
	}
}

func TestIsSceneLocal(t *testing.T) {
	if !isSceneLocal(fmt.Errorf("scene 3: %w", media.ErrAssetUnreadable)) {
		t.Error("wrapped asset errors are scene-local")
	}
	if !isSceneLocal(fmt.Errorf("mix: %w", ErrBGMUnavailable)) {
		t.Error("bgm errors are track-local")
	}
	if isSceneLocal(ErrEncodeFailed) {
		t.Error("encode failures are fatal, not scene-local")
	}
	if isSceneLocal(errors.New("plain")) {
		t.Error("unknown errors are fatal")
	}
}

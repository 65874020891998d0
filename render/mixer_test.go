package render

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestLoopCount(t *testing.T) {
	tests := []struct {
		name   string
		total  float64
		native float64
		want   int
	}{
		{"bgm shorter than program", 10.0, 4.0, 3},
		{"exact multiple", 8.0, 4.0, 2},
		{"bgm longer than program", 3.0, 4.0, 1},
		{"equal lengths", 4.0, 4.0, 1},
		{"zero native", 10.0, 0, 0},
		{"zero total", 0, 4.0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LoopCount(tt.total, tt.native); got != tt.want {
				t.Errorf("LoopCount(%v, %v) = %d, want %d", tt.total, tt.native, got, tt.want)
			}
		})
	}
}

func TestMixInUnreadableBGMIsRecoverable(t *testing.T) {
	dir := t.TempDir()
	m := &Mixer{Prober: stubProber{durations: map[string]float64{}}}

	err := m.MixIn(context.Background(), filepath.Join(dir, "program.mp4"),
		MixSpec{Path: filepath.Join(dir, "missing.mp3")}, 10.0, filepath.Join(dir, "out.mp4"))
	if !errors.Is(err, ErrBGMUnavailable) {
		t.Errorf("unreadable bgm: err = %v, want ErrBGMUnavailable", err)
	}
}

func TestMixInFailedMixIsRecoverable(t *testing.T) {
	dir := t.TempDir()
	bgm := writeAsset(t, dir, "bgm.mp3")
	program := writeAsset(t, dir, "program.mp4")

	// The asset probes fine but is not a real media file, so the mix
	// itself fails. That failure must stay track-local.
	m := &Mixer{Prober: stubProber{durations: map[string]float64{bgm: 4.0}}}
	err := m.MixIn(context.Background(), program, MixSpec{Path: bgm}, 10.0, filepath.Join(dir, "out.mp4"))
	if err == nil {
		t.Fatal("mixing undecodable inputs must fail")
	}
	if !errors.Is(err, ErrBGMUnavailable) {
		t.Errorf("failed mix: err = %v, want ErrBGMUnavailable", err)
	}
}

func TestNormalGain(t *testing.T) {
	tests := []struct {
		name string
		gain float64
		want float64
	}{
		{"unset takes default", 0, DefaultBGMGain},
		{"negative takes default", -0.5, DefaultBGMGain},
		{"in range passes through", 0.25, 0.25},
		{"above one clamps", 1.8, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := MixSpec{Path: "bgm.mp3", Gain: tt.gain}
			if got := spec.NormalGain(); got != tt.want {
				t.Errorf("NormalGain() with %v = %v, want %v", tt.gain, got, tt.want)
			}
		})
	}
}

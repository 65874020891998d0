package subtitle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelforge/types"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		name string
		sec  float64
		want string
	}{
		{"zero", 0, "00:00:00,000"},
		{"sub second", 0.5, "00:00:00,500"},
		{"whole seconds", 6.5, "00:00:06,500"},
		{"minute rollover", 61.25, "00:01:01,250"},
		{"hour rollover", 3661.007, "01:01:01,007"},
		{"millisecond rounding", 1.0004, "00:00:01,000"},
		{"millisecond rounding up", 1.0006, "00:00:01,001"},
		{"negative clamps to zero", -3, "00:00:00,000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTime(tt.sec); got != tt.want {
				t.Errorf("FormatTime(%v) = %q, want %q", tt.sec, got, tt.want)
			}
		})
	}
}

func TestFromScenesTimeline(t *testing.T) {
	scenes := []types.Scene{
		{Index: 1, Narration: "Opening line."},
		{Index: 2, Narration: "Middle beat."},
		{Index: 3, Narration: "Closing line."},
	}
	durations := []float64{2.0, 3.5, 1.0}

	cues := FromScenes(scenes, durations)
	if len(cues) != 3 {
		t.Fatalf("got %d cues, want 3", len(cues))
	}

	wantWindows := []struct{ start, end string }{
		{"00:00:00,000", "00:00:02,000"},
		{"00:00:02,000", "00:00:05,500"},
		{"00:00:05,500", "00:00:06,500"},
	}
	for i, w := range wantWindows {
		if got := FormatTime(cues[i].Start); got != w.start {
			t.Errorf("cue %d start = %s, want %s", i+1, got, w.start)
		}
		if got := FormatTime(cues[i].End); got != w.end {
			t.Errorf("cue %d end = %s, want %s", i+1, got, w.end)
		}
		if cues[i].Index != i+1 {
			t.Errorf("cue %d index = %d", i+1, cues[i].Index)
		}
	}
}

func TestFromScenesSilentSceneAdvancesClock(t *testing.T) {
	scenes := []types.Scene{
		{Index: 1, Narration: "First."},
		{Index: 2, Narration: "   "},
		{Index: 3, Narration: "Third."},
	}
	durations := []float64{2.0, 1.5, 2.0}

	cues := FromScenes(scenes, durations)
	if len(cues) != 2 {
		t.Fatalf("got %d cues, want 2 (silent scene must not emit one)", len(cues))
	}
	if cues[0].Index != 1 || cues[1].Index != 2 {
		t.Errorf("cue numbering must be sequential over emitted cues, got %d and %d",
			cues[0].Index, cues[1].Index)
	}
	if cues[1].Start != 3.5 {
		t.Errorf("silent scene must advance the clock, cue 2 starts at %v, want 3.5", cues[1].Start)
	}
	if cues[1].End != 5.5 {
		t.Errorf("cue 2 end = %v, want 5.5", cues[1].End)
	}
}

func TestRenderFormat(t *testing.T) {
	cues := []Cue{
		{Index: 1, Start: 0, End: 2, Text: "Hello."},
		{Index: 2, Start: 2, End: 5.5, Text: "World."},
	}
	got := Render(cues)
	want := "1\n00:00:00,000 --> 00:00:02,000\nHello.\n\n" +
		"2\n00:00:02,000 --> 00:00:05,500\nWorld.\n\n"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.srt")
	cues := []Cue{{Index: 1, Start: 0, End: 3, Text: "只有一句话。"}}
	if err := WriteFile(path, cues); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), "只有一句话。") {
		t.Errorf("subtitle text must survive as UTF-8, got %q", data)
	}
	if !strings.HasSuffix(string(data), "\n\n") {
		t.Errorf("blocks must be blank-line separated, got %q", data)
	}
}

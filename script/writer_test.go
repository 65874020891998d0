package script

import (
	"testing"

	"reelforge/config"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare json", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}\n", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSON(tt.input); got != tt.want {
				t.Errorf("cleanJSON(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestConvertSkipsEmptyScenesAndEstimatesTiming(t *testing.T) {
	w := New(config.Default())

	var raw storyboardJSON
	raw.Title = "  Why The Ocean Glows  "
	raw.Scenes = []struct {
		Narration   string `json:"narration"`
		ImagePrompt string `json:"image_prompt"`
	}{
		{Narration: "Plankton light up the waves at night.", ImagePrompt: "glowing blue waves"},
		{Narration: "   ", ImagePrompt: "ignored"},
		{Narration: "The glow is a defense mechanism.", ImagePrompt: "close-up of plankton"},
	}

	script, err := w.convert("ocean glow", "", raw)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if script.Title != "Why The Ocean Glows" {
		t.Errorf("title = %q", script.Title)
	}
	if len(script.Scenes) != 2 {
		t.Fatalf("got %d scenes, want 2 (blank narration skipped)", len(script.Scenes))
	}
	if script.Scenes[0].Index != 1 || script.Scenes[1].Index != 2 {
		t.Errorf("scene indexes must be sequential, got %d,%d",
			script.Scenes[0].Index, script.Scenes[1].Index)
	}
	if script.TotalSec <= 0 {
		t.Errorf("TotalSec = %v, want positive estimate", script.TotalSec)
	}
}

func TestConvertRejectsEmptyStoryboard(t *testing.T) {
	w := New(config.Default())
	if _, err := w.convert("topic", "", storyboardJSON{Title: "t"}); err == nil {
		t.Error("empty storyboard must fail")
	}
}

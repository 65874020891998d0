package render

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"reelforge/media"
	"reelforge/types"
)

// stubProber serves canned durations keyed by path.
type stubProber struct {
	durations map[string]float64
}

func (p stubProber) Duration(_ context.Context, path string) (float64, error) {
	d, ok := p.durations[path]
	if !ok {
		return 0, fmt.Errorf("%w: %s", media.ErrAssetUnreadable, path)
	}
	return d, nil
}

func writeAsset(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testScenes(t *testing.T, durations []float64) ([]types.Scene, stubProber) {
	t.Helper()
	dir := t.TempDir()
	prober := stubProber{durations: map[string]float64{}}
	scenes := make([]types.Scene, len(durations))
	for i, d := range durations {
		img := writeAsset(t, dir, fmt.Sprintf("img%d.jpg", i))
		aud := filepath.Join(dir, fmt.Sprintf("aud%d.mp3", i))
		if err := os.WriteFile(aud, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		prober.durations[aud] = d
		scenes[i] = types.Scene{
			Index:     i + 1,
			Narration: fmt.Sprintf("Scene %d narration.", i+1),
			ImageFile: img,
			AudioFile: aud,
		}
	}
	return scenes, prober
}

func TestBuildPlanOffsets(t *testing.T) {
	scenes, prober := testScenes(t, []float64{2.0, 3.5, 1.0})

	plan, err := BuildPlan(context.Background(), prober, scenes, PlanOptions{})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}

	if len(plan.Scenes) != 3 {
		t.Fatalf("kept %d scenes, want 3", len(plan.Scenes))
	}
	wantOffsets := []float64{0, 2.0, 5.5, 6.5}
	for i, w := range wantOffsets {
		if math.Abs(plan.Offsets[i]-w) > 1e-9 {
			t.Errorf("Offsets[%d] = %v, want %v", i, plan.Offsets[i], w)
		}
	}
	if plan.Offsets[0] != 0 {
		t.Error("first offset must be zero")
	}
	if math.Abs(plan.Total-6.5) > 1e-9 {
		t.Errorf("Total = %v, want 6.5", plan.Total)
	}
}

func TestBuildPlanDropsSceneWithUnreadableAudio(t *testing.T) {
	scenes, prober := testScenes(t, []float64{2.0, 3.5, 1.0})
	delete(prober.durations, scenes[1].AudioFile)

	plan, err := BuildPlan(context.Background(), prober, scenes, PlanOptions{})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}

	if len(plan.Scenes) != 2 {
		t.Fatalf("kept %d scenes, want 2", len(plan.Scenes))
	}
	if plan.Scenes[0].Index != 1 || plan.Scenes[1].Index != 3 {
		t.Errorf("survivors = %d,%d, want 1,3 in original order",
			plan.Scenes[0].Index, plan.Scenes[1].Index)
	}
	if math.Abs(plan.Total-3.0) > 1e-9 {
		t.Errorf("Total = %v, want 3.0", plan.Total)
	}
	if math.Abs(plan.Offsets[1]-2.0) > 1e-9 {
		t.Errorf("second scene must start where the first ends, got %v", plan.Offsets[1])
	}
}

func TestBuildPlanDropsSceneWithMissingImage(t *testing.T) {
	scenes, prober := testScenes(t, []float64{2.0, 3.0})
	scenes[0].ImageFile = filepath.Join(t.TempDir(), "nope.jpg")

	plan, err := BuildPlan(context.Background(), prober, scenes, PlanOptions{})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if len(plan.Scenes) != 1 || plan.Scenes[0].Index != 2 {
		t.Fatalf("want only scene 2 to survive, got %+v", plan.Scenes)
	}
}

func TestBuildPlanAllScenesDropped(t *testing.T) {
	scenes, prober := testScenes(t, []float64{2.0})
	delete(prober.durations, scenes[0].AudioFile)

	_, err := BuildPlan(context.Background(), prober, scenes, PlanOptions{})
	if !errors.Is(err, ErrNoRenderableScenes) {
		t.Errorf("err = %v, want ErrNoRenderableScenes", err)
	}
}

func TestBuildPlanSubtitleOnlyFallback(t *testing.T) {
	scenes, prober := testScenes(t, []float64{2.0, 3.5})
	delete(prober.durations, scenes[1].AudioFile)
	scenes[0].ImageFile = "" // images are irrelevant for a transcript

	plan, err := BuildPlan(context.Background(), prober, scenes, PlanOptions{
		SubtitleOnly: true,
		FallbackSec:  3.0,
	})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if len(plan.Scenes) != 2 {
		t.Fatalf("subtitle-only must keep both scenes, got %d", len(plan.Scenes))
	}
	if plan.Durations[1] != 3.0 {
		t.Errorf("unreadable audio must take the fallback duration, got %v", plan.Durations[1])
	}
	if math.Abs(plan.Total-5.0) > 1e-9 {
		t.Errorf("Total = %v, want 5.0", plan.Total)
	}
}

func TestNewPlanRejectsMismatchedLengths(t *testing.T) {
	_, err := NewPlan([]types.Scene{{Index: 1}}, []float64{1.0, 2.0})
	if !errors.Is(err, ErrInputMismatch) {
		t.Errorf("err = %v, want ErrInputMismatch", err)
	}
}

func TestNewPlanRejectsNonPositiveDuration(t *testing.T) {
	_, err := NewPlan([]types.Scene{{Index: 1}}, []float64{0})
	if !errors.Is(err, ErrInputMismatch) {
		t.Errorf("err = %v, want ErrInputMismatch", err)
	}
}

func TestPairScenes(t *testing.T) {
	scenes, err := PairScenes(
		[]string{"a", "b"},
		[]string{"a.jpg", "b.jpg"},
		[]string{"a.mp3", "b.mp3"},
	)
	if err != nil {
		t.Fatalf("PairScenes: %v", err)
	}
	if len(scenes) != 2 || scenes[1].ImageFile != "b.jpg" || scenes[1].AudioFile != "b.mp3" {
		t.Errorf("unexpected pairing: %+v", scenes)
	}
	if scenes[0].Index != 1 || scenes[1].Index != 2 {
		t.Errorf("indexes = %d,%d, want 1-based numbering", scenes[0].Index, scenes[1].Index)
	}

	if _, err := PairScenes([]string{"a"}, []string{"a.jpg", "b.jpg"}, []string{"a.mp3"}); !errors.Is(err, ErrInputMismatch) {
		t.Errorf("mismatched lengths must fail with ErrInputMismatch, got %v", err)
	}
}

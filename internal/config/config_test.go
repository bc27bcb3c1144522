package config

import (
	"os"
	"testing"
)

func TestDefaultLimitsMatchOriginal(t *testing.T) {
	limits := DefaultLimits()

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"MaxActors", limits.MaxActors, 448},
		{"MaxPlayerShots", limits.MaxPlayerShots, 6},
		{"MaxEffects", limits.MaxEffects, 18},
		{"MaxMovingMapParts", limits.MaxMovingMapParts, 70},
		{"NumParticleGroups", limits.NumParticleGroups, 5},
		{"ParticlesPerGroup", limits.ParticlesPerGroup, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestGameStep(t *testing.T) {
	timing := DefaultTiming()
	step := timing.GameStep()
	if step.Milliseconds() != 66 {
		t.Errorf("GameStep() = %v, want ~66ms (1/15s)", step)
	}
}

func TestVideoFromEnvOverride(t *testing.T) {
	os.Setenv("VIEWPORT_COLS", "40")
	defer os.Unsetenv("VIEWPORT_COLS")

	cfg := VideoFromEnv()
	if cfg.ViewportCols != 40 {
		t.Errorf("ViewportCols = %d, want 40", cfg.ViewportCols)
	}
	if cfg.ViewportRows != DefaultVideo().ViewportRows {
		t.Errorf("ViewportRows should be unaffected by VIEWPORT_COLS override")
	}
}

func TestDemoSequenceMatchesOriginal(t *testing.T) {
	demo := DefaultDemo()
	want := []int{0, 2, 4, 6}
	if len(demo.LevelSequence) != len(want) {
		t.Fatalf("LevelSequence length = %d, want %d", len(demo.LevelSequence), len(want))
	}
	for i, lvl := range want {
		if demo.LevelSequence[i] != lvl {
			t.Errorf("LevelSequence[%d] = %d, want %d", i, demo.LevelSequence[i], lvl)
		}
	}
}

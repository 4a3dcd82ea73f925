package features

import (
	"math"
	"testing"

	"github.com/xCarter93/lineupiq/domain/core"
	"github.com/xCarter93/lineupiq/domain/gridiron"
)

func weekRecord(playerID string, season, week int, passYards float64) gridiron.PlayerWeekRecord {
	return gridiron.PlayerWeekRecord{
		PlayerID: playerID,
		Position: gridiron.PositionQB,
		Team:     "KC",
		Season:   season,
		Week:     week,
		Stats:    gridiron.StatLine{PassingYards: passYards},
	}
}

func TestComputeRolling_TrailingMeanExcludesCurrentWeek(t *testing.T) {
	// Scenario: weeks 1-3 scored 200, 220, 260. The week 4 feature must
	// average exactly those three games, never the week 4 line itself.
	records := []gridiron.PlayerWeekRecord{
		weekRecord("p1", 2023, 1, 200),
		weekRecord("p1", 2023, 2, 220),
		weekRecord("p1", 2023, 3, 260),
		weekRecord("p1", 2023, 4, 500),
	}

	sets, err := ComputeRolling(records, RollingConfig{Window: 3})
	if err != nil {
		t.Fatalf("ComputeRolling failed: %v", err)
	}

	var week4 *RollingFeatureSet
	for i := range sets {
		if sets[i].Week == 4 {
			week4 = &sets[i]
		}
	}
	if week4 == nil {
		t.Fatal("no feature set for week 4")
	}

	want := (200.0 + 220.0 + 260.0) / 3.0
	got := week4.Means["passing_yards"]
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("week 4 rolling passing_yards = %.4f, want %.4f", got, want)
	}
	if week4.SampleSize != 3 {
		t.Errorf("week 4 sample size = %d, want 3", week4.SampleSize)
	}
}

func TestComputeRolling_WindowCapsHistory(t *testing.T) {
	// Six prior games but a window of 3 only sees the most recent three.
	records := []gridiron.PlayerWeekRecord{
		weekRecord("p1", 2023, 1, 100),
		weekRecord("p1", 2023, 2, 100),
		weekRecord("p1", 2023, 3, 100),
		weekRecord("p1", 2023, 4, 300),
		weekRecord("p1", 2023, 5, 300),
		weekRecord("p1", 2023, 6, 300),
		weekRecord("p1", 2023, 7, 0),
	}

	sets, err := ComputeRolling(records, RollingConfig{Window: 3})
	if err != nil {
		t.Fatalf("ComputeRolling failed: %v", err)
	}

	for _, set := range sets {
		if set.Week != 7 {
			continue
		}
		if got := set.Means["passing_yards"]; got != 300 {
			t.Errorf("week 7 rolling mean = %.2f, want 300 (weeks 4-6 only)", got)
		}
		if set.SampleSize != 3 {
			t.Errorf("week 7 sample size = %d, want 3", set.SampleSize)
		}
	}
}

func TestComputeRolling_FirstCareerWeekHasNoHistory(t *testing.T) {
	records := []gridiron.PlayerWeekRecord{weekRecord("rookie", 2023, 1, 250)}

	sets, err := ComputeRolling(records, DefaultRollingConfig())
	if err != nil {
		t.Fatalf("ComputeRolling failed: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("expected 1 feature set, got %d", len(sets))
	}
	if sets[0].SampleSize != 0 {
		t.Errorf("rookie week sample size = %d, want 0", sets[0].SampleSize)
	}
	if got := sets[0].Means["passing_yards"]; got != 0 {
		t.Errorf("rookie week rolling mean = %.2f, want 0", got)
	}
}

func TestComputeRolling_RejectsDuplicateWeeks(t *testing.T) {
	records := []gridiron.PlayerWeekRecord{
		weekRecord("p1", 2023, 5, 100),
		weekRecord("p1", 2023, 5, 150),
	}

	_, err := ComputeRolling(records, DefaultRollingConfig())
	if err == nil {
		t.Fatal("expected duplicate week error, got nil")
	}
	if !core.IsContractViolation(err) {
		t.Errorf("expected contract violation, got %v", err)
	}
}

func TestRollingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		window  int
		wantErr bool
	}{
		{"default window", 3, false},
		{"single game window", 1, false},
		{"zero window", 0, true},
		{"negative window", -2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RollingConfig{Window: tt.window}.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

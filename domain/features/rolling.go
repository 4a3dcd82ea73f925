package features

import (
	"fmt"

	"github.com/xCarter93/lineupiq/domain/core"
	"github.com/xCarter93/lineupiq/domain/gridiron"
)

// RollingStatNames lists the counters tracked by the rolling window, in
// canonical column order.
var RollingStatNames = []string{
	"passing_yards",
	"passing_tds",
	"rushing_yards",
	"rushing_tds",
	"carries",
	"receiving_yards",
	"receiving_tds",
	"receptions",
}

// RollingConfig controls the trailing-average window.
type RollingConfig struct {
	// Window is the maximum number of prior games averaged. Fewer than
	// Window prior games degrade gracefully to an average over whatever
	// exists, minimum one.
	Window int
}

// DefaultRollingConfig returns the production window of 3 games.
func DefaultRollingConfig() RollingConfig {
	return RollingConfig{Window: 3}
}

// Validate checks the configuration once at construction.
func (c RollingConfig) Validate() error {
	if c.Window < 1 {
		return fmt.Errorf("rolling window must be >= 1, got %d", c.Window)
	}
	return nil
}

// RollingFeatureSet is the trailing-average form for one player-week.
// Values at a player's k-th career game are computed from games 1..k-1
// only; the game's own stats never contribute to its features.
//
// For a player's first career game every value is 0. This is a
// deliberate policy, not missing data: rookies are treated as having
// zero prior production rather than unknown production. Downstream
// consumers must not reinterpret these zeros as nulls.
type RollingFeatureSet struct {
	PlayerID string
	Season   int
	Week     int

	// Means keyed by stat name, in RollingStatNames order.
	Means map[string]float64

	// SampleSize is the number of prior games actually averaged
	// (0 for a first career game, at most Window otherwise).
	SampleSize int
}

// ComputeRolling derives one RollingFeatureSet per input record. The
// input may cover many players; it is partitioned by player id and
// walked in (season, week) order internally. Duplicate
// (player, season, week) keys fail with core.ErrDuplicateRecord.
func ComputeRolling(records []gridiron.PlayerWeekRecord, cfg RollingConfig) ([]RollingFeatureSet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sorted := make([]gridiron.PlayerWeekRecord, len(records))
	copy(sorted, records)
	gridiron.SortRecords(sorted)

	out := make([]RollingFeatureSet, 0, len(sorted))

	// After SortRecords each player's games are contiguous and
	// chronological, so a single pass with a trailing slice suffices.
	start := 0
	for i := range sorted {
		if sorted[i].PlayerID != sorted[start].PlayerID {
			start = i
		}
		if i > start {
			prev := sorted[i-1]
			if prev.Season == sorted[i].Season && prev.Week == sorted[i].Week {
				return nil, core.NewDuplicateRecordError(sorted[i].PlayerID, sorted[i].Season, sorted[i].Week)
			}
		}

		prior := sorted[start:i]
		if len(prior) > cfg.Window {
			prior = prior[len(prior)-cfg.Window:]
		}

		fs := RollingFeatureSet{
			PlayerID:   sorted[i].PlayerID,
			Season:     sorted[i].Season,
			Week:       sorted[i].Week,
			Means:      make(map[string]float64, len(RollingStatNames)),
			SampleSize: len(prior),
		}
		for _, name := range RollingStatNames {
			fs.Means[name] = trailingMean(prior, name)
		}
		out = append(out, fs)
	}

	return out, nil
}

// trailingMean averages one counter over the given prior games. An empty
// window yields the neutral default of 0.
func trailingMean(prior []gridiron.PlayerWeekRecord, stat string) float64 {
	if len(prior) == 0 {
		return 0
	}
	var sum float64
	for _, r := range prior {
		v, _ := r.Stats.Stat(stat)
		sum += v
	}
	return sum / float64(len(prior))
}

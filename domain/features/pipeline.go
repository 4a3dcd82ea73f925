package features

import (
	"fmt"
	"sort"

	"github.com/xCarter93/lineupiq/domain/core"
	"github.com/xCarter93/lineupiq/domain/gridiron"
)

// FeatureVector is the assembled, ML-ready form of one player-week.
// Values follow the pipeline's column order exactly and are a pure
// function of data available strictly before (Season, Week).
type FeatureVector struct {
	PlayerID string
	Position gridiron.Position
	Season   int
	Week     int

	Values []float64

	// Targets carries the observed stat values for training joins.
	Targets map[string]float64

	// HasDefense is false when no defensive snapshot existed for the
	// opponent (week 1, or no opponent listed). Such rows are excluded
	// from training sets rather than zero-filled.
	HasDefense bool
}

// FeatureTable is the output of one pipeline run.
type FeatureTable struct {
	Version core.PipelineVersion
	Columns []string
	Rows    []FeatureVector
}

// Pipeline joins rolling features, defensive snapshots and game context
// into flat feature vectors under a versioned column contract.
type Pipeline struct {
	rolling RollingConfig
	columns []string
	version core.PipelineVersion
}

// NewPipeline constructs a pipeline for the given rolling window. The
// column order is fixed at construction and fingerprinted: it depends
// only on the version, never on runtime data.
func NewPipeline(rolling RollingConfig) (*Pipeline, error) {
	if err := rolling.Validate(); err != nil {
		return nil, err
	}
	cols := buildColumns(rolling.Window)
	return &Pipeline{
		rolling: rolling,
		columns: cols,
		version: core.ComputePipelineVersion(cols),
	}, nil
}

func buildColumns(window int) []string {
	cols := make([]string, 0, len(RollingStatNames)+9)
	for _, name := range RollingStatNames {
		cols = append(cols, fmt.Sprintf("%s_roll%d", name, window))
	}
	cols = append(cols,
		"opp_pass_defense_strength",
		"opp_rush_defense_strength",
		"opp_pass_yards_allowed_rank",
		"opp_rush_yards_allowed_rank",
		"opp_total_yards_allowed_rank",
		"temp_normalized",
		"wind_normalized",
		"is_home",
		"is_dome",
	)
	return cols
}

// Version returns the pipeline's column-contract fingerprint. Artifacts
// embed it so a mismatched load fails loudly instead of silently
// misaligning inputs.
func (p *Pipeline) Version() core.PipelineVersion { return p.version }

// Columns returns the canonical feature column names in order.
func (p *Pipeline) Columns() []string {
	out := make([]string, len(p.columns))
	copy(out, p.columns)
	return out
}

// positionTargets maps each position to the stats predicted for it.
var positionTargets = map[gridiron.Position][]string{
	gridiron.PositionQB: {"passing_yards", "passing_tds"},
	gridiron.PositionRB: {"rushing_yards", "rushing_tds", "carries", "receiving_yards", "receptions"},
	gridiron.PositionWR: {"receiving_yards", "receiving_tds", "receptions"},
	gridiron.PositionTE: {"receiving_yards", "receiving_tds", "receptions"},
}

// TargetsFor returns the canonical target-stat names for a position.
func TargetsFor(position gridiron.Position) ([]string, error) {
	targets, ok := positionTargets[position]
	if !ok {
		return nil, core.NewSchemaMismatchError(position.String(), nil)
	}
	out := make([]string, len(targets))
	copy(out, targets)
	return out, nil
}

// Build assembles feature vectors for every input record: rolling
// features from the player's own prior games, the opponent's defensive
// snapshot entering that week, and contextual scalars. Output order is
// deterministic: (season, week, player).
func (p *Pipeline) Build(records []gridiron.PlayerWeekRecord) (*FeatureTable, error) {
	rolling, err := ComputeRolling(records, p.rolling)
	if err != nil {
		return nil, err
	}
	rollingByKey := make(map[string]RollingFeatureSet, len(rolling))
	for _, fs := range rolling {
		rollingByKey[fmt.Sprintf("%s:%d:%d", fs.PlayerID, fs.Season, fs.Week)] = fs
	}

	book := RankDefenses(AggregateDefense(records))

	ordered := make([]gridiron.PlayerWeekRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Season != ordered[j].Season {
			return ordered[i].Season < ordered[j].Season
		}
		if ordered[i].Week != ordered[j].Week {
			return ordered[i].Week < ordered[j].Week
		}
		return ordered[i].PlayerID < ordered[j].PlayerID
	})

	rows := make([]FeatureVector, 0, len(ordered))
	for _, r := range ordered {
		fs, ok := rollingByKey[fmt.Sprintf("%s:%d:%d", r.PlayerID, r.Season, r.Week)]
		if !ok {
			return nil, fmt.Errorf("rolling features missing for %s %d/%d", r.PlayerID, r.Season, r.Week)
		}

		var snap DefenseSnapshot
		hasDefense := false
		if r.Opponent != "" {
			snap, hasDefense, err = book.SnapshotFor(r.Opponent, r.Season, r.Week)
			if err != nil {
				return nil, err
			}
		}

		values := make([]float64, 0, len(p.columns))
		for _, name := range RollingStatNames {
			values = append(values, fs.Means[name])
		}
		values = append(values,
			snap.PassStrength,
			snap.RushStrength,
			float64(snap.PassYardsRank),
			float64(snap.RushYardsRank),
			float64(snap.TotalYardsRank),
			r.TempNormalized(),
			r.WindNormalized(),
			boolToFloat(r.IsHome),
			boolToFloat(r.IsDome),
		)

		targets := make(map[string]float64, 5)
		for _, names := range positionTargets {
			for _, name := range names {
				v, _ := r.Stats.Stat(name)
				targets[name] = v
			}
		}

		rows = append(rows, FeatureVector{
			PlayerID:   r.PlayerID,
			Position:   r.Position,
			Season:     r.Season,
			Week:       r.Week,
			Values:     values,
			Targets:    targets,
			HasDefense: hasDefense,
		})
	}

	return &FeatureTable{
		Version: p.version,
		Columns: p.Columns(),
		Rows:    rows,
	}, nil
}

// VectorFromPayload validates a flat name->value payload against the
// column contract and returns values in column order. Any missing
// column fails with core.ErrSchemaMismatch.
func (p *Pipeline) VectorFromPayload(position gridiron.Position, payload map[string]float64) ([]float64, error) {
	if _, ok := positionTargets[position]; !ok {
		return nil, core.NewSchemaMismatchError(position.String(), nil)
	}
	var missing []string
	values := make([]float64, len(p.columns))
	for i, col := range p.columns {
		v, ok := payload[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		values[i] = v
	}
	if len(missing) > 0 {
		return nil, core.NewSchemaMismatchError(position.String(), missing)
	}
	return values, nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

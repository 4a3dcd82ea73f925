package gridiron

import (
	"sort"
)

// Position identifies a skill position eligible for prediction.
type Position string

const (
	PositionQB Position = "QB"
	PositionRB Position = "RB"
	PositionWR Position = "WR"
	PositionTE Position = "TE"
)

// Positions lists all supported positions in a stable order.
func Positions() []Position {
	return []Position{PositionQB, PositionRB, PositionWR, PositionTE}
}

// Valid reports whether the position is one of the supported skill positions.
func (p Position) Valid() bool {
	switch p {
	case PositionQB, PositionRB, PositionWR, PositionTE:
		return true
	}
	return false
}

func (p Position) String() string { return string(p) }

// Team is a normalized team abbreviation.
type Team string

func (t Team) String() string { return string(t) }

// teamMapping maps historical abbreviations to current ones.
// Relocations: STL->LA (2016), SD->LAC (2017), OAK->LV (2020).
var teamMapping = map[Team]Team{
	"STL": "LA",
	"SD":  "LAC",
	"OAK": "LV",
	"PHO": "ARI",
}

// currentTeams holds all 32 current team abbreviations.
var currentTeams = map[Team]struct{}{
	"BUF": {}, "MIA": {}, "NE": {}, "NYJ": {},
	"BAL": {}, "CIN": {}, "CLE": {}, "PIT": {},
	"HOU": {}, "IND": {}, "JAX": {}, "TEN": {},
	"DEN": {}, "KC": {}, "LV": {}, "LAC": {},
	"DAL": {}, "NYG": {}, "PHI": {}, "WAS": {},
	"CHI": {}, "DET": {}, "GB": {}, "MIN": {},
	"ATL": {}, "CAR": {}, "NO": {}, "TB": {},
	"ARI": {}, "LA": {}, "SEA": {}, "SF": {},
}

// NormalizeTeam resolves historical abbreviations to the current one,
// so rows from relocated franchises join correctly across seasons.
func NormalizeTeam(team Team) Team {
	if mapped, ok := teamMapping[team]; ok {
		return mapped
	}
	return team
}

// KnownTeam reports whether the abbreviation is a current franchise.
func KnownTeam(team Team) bool {
	_, ok := currentTeams[team]
	return ok
}

// AllTeams returns the 32 current abbreviations sorted alphabetically.
func AllTeams() []Team {
	teams := make([]Team, 0, len(currentTeams))
	for t := range currentTeams {
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i] < teams[j] })
	return teams
}

// StatLine holds the raw box-score counters for one player-week.
type StatLine struct {
	PassingYards   float64 `json:"passing_yards"`
	PassingTDs     float64 `json:"passing_tds"`
	Interceptions  float64 `json:"interceptions"`
	Attempts       float64 `json:"attempts"`
	RushingYards   float64 `json:"rushing_yards"`
	RushingTDs     float64 `json:"rushing_tds"`
	Carries        float64 `json:"carries"`
	ReceivingYards float64 `json:"receiving_yards"`
	ReceivingTDs   float64 `json:"receiving_tds"`
	Receptions     float64 `json:"receptions"`
}

// Stat returns a counter by its canonical column name.
func (s StatLine) Stat(name string) (float64, bool) {
	switch name {
	case "passing_yards":
		return s.PassingYards, true
	case "passing_tds":
		return s.PassingTDs, true
	case "interceptions":
		return s.Interceptions, true
	case "attempts":
		return s.Attempts, true
	case "rushing_yards":
		return s.RushingYards, true
	case "rushing_tds":
		return s.RushingTDs, true
	case "carries":
		return s.Carries, true
	case "receiving_yards":
		return s.ReceivingYards, true
	case "receiving_tds":
		return s.ReceivingTDs, true
	case "receptions":
		return s.Receptions, true
	}
	return 0, false
}

// PlayerWeekRecord is one row per (player, season, week), produced by the
// external data feed. Immutable once ingested.
type PlayerWeekRecord struct {
	PlayerID   string   `json:"player_id"`
	PlayerName string   `json:"player_name"`
	Position   Position `json:"position"`
	Team       Team     `json:"team"`

	Season int `json:"season"`
	Week   int `json:"week"`

	Opponent Team `json:"opponent"`
	IsHome   bool `json:"is_home"`

	Stats StatLine `json:"stats"`

	// Venue conditions from the schedule feed. Temp and Wind may be
	// absent for dome games; zero is treated as unknown and neutralized
	// during normalization.
	Temp   *float64 `json:"temp,omitempty"`
	Wind   *float64 `json:"wind,omitempty"`
	IsDome bool     `json:"is_dome"`
}

// GameKey orders records chronologically within a player's history.
type GameKey struct {
	Season int
	Week   int
}

// Before reports whether k occurs strictly before other.
func (k GameKey) Before(other GameKey) bool {
	if k.Season != other.Season {
		return k.Season < other.Season
	}
	return k.Week < other.Week
}

// Key returns the record's chronological key.
func (r PlayerWeekRecord) Key() GameKey {
	return GameKey{Season: r.Season, Week: r.Week}
}

// TempNormalized centers temperature on 65F and scales by 20, mapping
// typical game conditions to roughly [-2, 2]. Unknown temperature maps
// to 0 (neutral).
func (r PlayerWeekRecord) TempNormalized() float64 {
	if r.Temp == nil {
		return 0
	}
	return (*r.Temp - 65) / 20
}

// WindNormalized scales wind speed by 15 mph. Unknown wind maps to 0.
func (r PlayerWeekRecord) WindNormalized() float64 {
	if r.Wind == nil {
		return 0
	}
	return *r.Wind / 15
}

// SortRecords orders records by (player, season, week) in place. This is
// the canonical ordering for per-player history walks.
func SortRecords(records []PlayerWeekRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].PlayerID != records[j].PlayerID {
			return records[i].PlayerID < records[j].PlayerID
		}
		if records[i].Season != records[j].Season {
			return records[i].Season < records[j].Season
		}
		return records[i].Week < records[j].Week
	})
}

package gridiron

import (
	"fmt"
)

// ScheduleGame is one game from the external schedule feed.
type ScheduleGame struct {
	GameID   string   `json:"game_id"`
	Season   int      `json:"season"`
	Week     int      `json:"week"`
	HomeTeam Team     `json:"home_team"`
	AwayTeam Team     `json:"away_team"`
	Temp     *float64 `json:"temp,omitempty"`
	Wind     *float64 `json:"wind,omitempty"`
	IsDome   bool     `json:"is_dome"`
}

// AttachGameContext joins player records with the schedule to fill in
// opponent, home/away and venue conditions. Records whose team has no
// scheduled game that week (bye weeks) are returned unchanged with no
// opponent set.
func AttachGameContext(records []PlayerWeekRecord, schedule []ScheduleGame) []PlayerWeekRecord {
	type slot struct {
		game   ScheduleGame
		isHome bool
	}
	index := make(map[string]slot, len(schedule)*2)
	key := func(season, week int, team Team) string {
		return fmt.Sprintf("%d:%d:%s", season, week, team)
	}
	for _, g := range schedule {
		index[key(g.Season, g.Week, NormalizeTeam(g.HomeTeam))] = slot{game: g, isHome: true}
		index[key(g.Season, g.Week, NormalizeTeam(g.AwayTeam))] = slot{game: g, isHome: false}
	}

	out := make([]PlayerWeekRecord, len(records))
	for i, r := range records {
		r.Team = NormalizeTeam(r.Team)
		if s, ok := index[key(r.Season, r.Week, r.Team)]; ok {
			r.IsHome = s.isHome
			if s.isHome {
				r.Opponent = NormalizeTeam(s.game.AwayTeam)
			} else {
				r.Opponent = NormalizeTeam(s.game.HomeTeam)
			}
			r.Temp = s.game.Temp
			r.Wind = s.game.Wind
			r.IsDome = s.game.IsDome
		}
		out[i] = r
	}
	return out
}

package features

import (
	"fmt"
	"sort"

	"github.com/xCarter93/lineupiq/domain/core"
	"github.com/xCarter93/lineupiq/domain/gridiron"
)

// DefenseAggregate sums what one team's defense gave up in one week:
// stats scored against them by every opposing player that game.
type DefenseAggregate struct {
	Team   gridiron.Team
	Season int
	Week   int

	PassYardsAllowed  float64
	RushYardsAllowed  float64
	TotalYardsAllowed float64
	TDsAllowed        float64
}

// DefenseSnapshot ranks one team's defense entering one week, computed
// exclusively from weeks 1..N-1 of the same season. Rank 1 allows the
// fewest yards; strength is (rank-1)/(n-1), so 0 is the hardest matchup
// and 1 the easiest.
type DefenseSnapshot struct {
	Team   gridiron.Team
	Season int
	Week   int

	PassYardsRank  int
	RushYardsRank  int
	TotalYardsRank int

	PassStrength float64
	RushStrength float64
}

// AggregateDefense groups records by (opponent, season, week) and sums
// the stats each defense allowed. Output order is deterministic:
// (season, week, team).
func AggregateDefense(records []gridiron.PlayerWeekRecord) []DefenseAggregate {
	type aggKey struct {
		team   gridiron.Team
		season int
		week   int
	}
	byKey := make(map[aggKey]*DefenseAggregate)
	for _, r := range records {
		if r.Opponent == "" {
			continue
		}
		k := aggKey{team: r.Opponent, season: r.Season, week: r.Week}
		agg, ok := byKey[k]
		if !ok {
			agg = &DefenseAggregate{Team: k.team, Season: k.season, Week: k.week}
			byKey[k] = agg
		}
		agg.PassYardsAllowed += r.Stats.PassingYards
		agg.RushYardsAllowed += r.Stats.RushingYards
		agg.TotalYardsAllowed += r.Stats.PassingYards + r.Stats.RushingYards + r.Stats.ReceivingYards
		agg.TDsAllowed += r.Stats.PassingTDs + r.Stats.RushingTDs + r.Stats.ReceivingTDs
	}

	out := make([]DefenseAggregate, 0, len(byKey))
	for _, agg := range byKey {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Season != out[j].Season {
			return out[i].Season < out[j].Season
		}
		if out[i].Week != out[j].Week {
			return out[i].Week < out[j].Week
		}
		return out[i].Team < out[j].Team
	})
	return out
}

// RankingBook holds defensive snapshots for every (season, week) inside
// the loaded data range.
type RankingBook struct {
	// snapshots[season][week][team]
	snapshots map[int]map[int]map[gridiron.Team]DefenseSnapshot
	// weeks observed per season, for range checks
	weekRange map[int][2]int
}

// RankDefenses builds season-to-date rankings for each week from the
// aggregated allowances. The snapshot entering week N uses weeks 1..N-1
// only; week 1 of every season has no snapshot.
func RankDefenses(aggregates []DefenseAggregate) *RankingBook {
	book := &RankingBook{
		snapshots: make(map[int]map[int]map[gridiron.Team]DefenseSnapshot),
		weekRange: make(map[int][2]int),
	}

	bySeason := make(map[int][]DefenseAggregate)
	for _, agg := range aggregates {
		bySeason[agg.Season] = append(bySeason[agg.Season], agg)
		r, ok := book.weekRange[agg.Season]
		if !ok {
			book.weekRange[agg.Season] = [2]int{agg.Week, agg.Week}
			continue
		}
		if agg.Week < r[0] {
			r[0] = agg.Week
		}
		if agg.Week > r[1] {
			r[1] = agg.Week
		}
		book.weekRange[agg.Season] = r
	}

	for season, aggs := range bySeason {
		weeks := make(map[int]bool)
		for _, agg := range aggs {
			weeks[agg.Week] = true
		}
		weekList := make([]int, 0, len(weeks))
		for w := range weeks {
			weekList = append(weekList, w)
		}
		sort.Ints(weekList)

		for _, week := range weekList {
			totals := make(map[gridiron.Team]*DefenseAggregate)
			for _, agg := range aggs {
				if agg.Week >= week {
					continue
				}
				t, ok := totals[agg.Team]
				if !ok {
					t = &DefenseAggregate{Team: agg.Team, Season: season, Week: week}
					totals[agg.Team] = t
				}
				t.PassYardsAllowed += agg.PassYardsAllowed
				t.RushYardsAllowed += agg.RushYardsAllowed
				t.TotalYardsAllowed += agg.TotalYardsAllowed
				t.TDsAllowed += agg.TDsAllowed
			}
			if len(totals) == 0 {
				// Week 1: no prior data, no snapshot. Callers see
				// (snapshot, false), never a defaulted value.
				continue
			}

			teams := make([]gridiron.Team, 0, len(totals))
			for t := range totals {
				teams = append(teams, t)
			}

			passRanks := rankAscending(teams, func(t gridiron.Team) float64 { return totals[t].PassYardsAllowed })
			rushRanks := rankAscending(teams, func(t gridiron.Team) float64 { return totals[t].RushYardsAllowed })
			totalRanks := rankAscending(teams, func(t gridiron.Team) float64 { return totals[t].TotalYardsAllowed })

			denom := float64(len(teams) - 1)
			if denom < 1 {
				denom = 1
			}

			weekSnaps := make(map[gridiron.Team]DefenseSnapshot, len(teams))
			for _, t := range teams {
				weekSnaps[t] = DefenseSnapshot{
					Team:           t,
					Season:         season,
					Week:           week,
					PassYardsRank:  passRanks[t],
					RushYardsRank:  rushRanks[t],
					TotalYardsRank: totalRanks[t],
					PassStrength:   float64(passRanks[t]-1) / denom,
					RushStrength:   float64(rushRanks[t]-1) / denom,
				}
			}
			if book.snapshots[season] == nil {
				book.snapshots[season] = make(map[int]map[gridiron.Team]DefenseSnapshot)
			}
			book.snapshots[season][week] = weekSnaps
		}
	}

	return book
}

// rankAscending assigns ranks 1..n by ascending value, ties broken
// alphabetically by team so the ordering is stable across runs.
func rankAscending(teams []gridiron.Team, value func(gridiron.Team) float64) map[gridiron.Team]int {
	ordered := make([]gridiron.Team, len(teams))
	copy(ordered, teams)
	sort.Slice(ordered, func(i, j int) bool {
		vi, vj := value(ordered[i]), value(ordered[j])
		if vi != vj {
			return vi < vj
		}
		return ordered[i] < ordered[j]
	})
	ranks := make(map[gridiron.Team]int, len(ordered))
	for i, t := range ordered {
		ranks[t] = i + 1
	}
	return ranks
}

// SnapshotFor returns the defensive snapshot for team entering (season,
// week). ok is false for week 1 (no prior data, expected) while a
// (season, week) outside the loaded range is an error.
func (b *RankingBook) SnapshotFor(team gridiron.Team, season, week int) (DefenseSnapshot, bool, error) {
	r, seasonLoaded := b.weekRange[season]
	if !seasonLoaded || week < r[0] || week > r[1] {
		return DefenseSnapshot{}, false, fmt.Errorf("%w: season=%d week=%d", core.ErrInsufficientHistory, season, week)
	}
	weekSnaps, ok := b.snapshots[season][week]
	if !ok {
		return DefenseSnapshot{}, false, nil
	}
	snap, ok := weekSnaps[team]
	if !ok {
		// Team has no prior-week data this season (e.g. first game
		// after a bye-opening schedule). Treated like week 1.
		return DefenseSnapshot{}, false, nil
	}
	return snap, true, nil
}

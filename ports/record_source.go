package ports

import (
	"context"

	"github.com/xCarter93/lineupiq/domain/gridiron"
)

// RecordSource is the contract with the external data-acquisition
// collaborator: one row per (player, season, week) with box-score
// counters, identity fields and game context.
type RecordSource interface {
	// LoadPlayerWeeks returns every player-week row for the given
	// seasons, in no particular order.
	LoadPlayerWeeks(ctx context.Context, seasons []int) ([]gridiron.PlayerWeekRecord, error)

	// LoadSchedule returns the schedule rows used to derive opponent,
	// home/away and venue context.
	LoadSchedule(ctx context.Context, seasons []int) ([]gridiron.ScheduleGame, error)
}

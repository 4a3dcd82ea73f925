package excel

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/xCarter93/lineupiq/domain/gridiron"
	"github.com/xCarter93/lineupiq/ports"
)

// Sheet names the reader expects inside the workbook.
const (
	playerWeekSheet = "player_weeks"
	scheduleSheet   = "schedule"
)

// DataReader loads player-week stat lines and schedules from a single
// Excel workbook. It implements ports.RecordSource for offline
// training runs where no feed integration exists.
type DataReader struct {
	filePath string
}

// NewDataReader creates a reader for the given workbook path.
func NewDataReader(filePath string) *DataReader {
	return &DataReader{filePath: filePath}
}

// LoadPlayerWeeks reads the player_weeks sheet, keeping only rows in
// the requested seasons. An empty seasons slice keeps everything.
func (r *DataReader) LoadPlayerWeeks(ctx context.Context, seasons []int) ([]gridiron.PlayerWeekRecord, error) {
	rows, err := r.readSheet(playerWeekSheet)
	if err != nil {
		return nil, err
	}

	header := headerIndex(rows[0])
	for _, col := range []string{"player_id", "player_name", "position", "team", "season", "week"} {
		if _, ok := header[col]; !ok {
			return nil, fmt.Errorf("sheet %s missing column %q", playerWeekSheet, col)
		}
	}

	wanted := seasonSet(seasons)
	records := make([]gridiron.PlayerWeekRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parsePlayerWeek(row, header)
		if err != nil {
			return nil, fmt.Errorf("sheet %s row %d: %w", playerWeekSheet, i+2, err)
		}
		if wanted != nil && !wanted[rec.Season] {
			continue
		}
		records = append(records, rec)
	}

	log.Printf("[DataReader] Loaded %d player-week rows from %s", len(records), r.filePath)
	return records, nil
}

// LoadSchedule reads the schedule sheet.
func (r *DataReader) LoadSchedule(ctx context.Context, seasons []int) ([]gridiron.ScheduleGame, error) {
	rows, err := r.readSheet(scheduleSheet)
	if err != nil {
		return nil, err
	}

	header := headerIndex(rows[0])
	for _, col := range []string{"season", "week", "home_team", "away_team"} {
		if _, ok := header[col]; !ok {
			return nil, fmt.Errorf("sheet %s missing column %q", scheduleSheet, col)
		}
	}

	wanted := seasonSet(seasons)
	games := make([]gridiron.ScheduleGame, 0, len(rows)-1)
	for i, row := range rows[1:] {
		game, err := parseScheduleGame(row, header)
		if err != nil {
			return nil, fmt.Errorf("sheet %s row %d: %w", scheduleSheet, i+2, err)
		}
		if wanted != nil && !wanted[game.Season] {
			continue
		}
		games = append(games, game)
	}

	log.Printf("[DataReader] Loaded %d schedule rows from %s", len(games), r.filePath)
	return games, nil
}

func (r *DataReader) readSheet(sheet string) ([][]string, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("Excel file not found: %s", r.filePath)
	}

	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	log.Printf("[DataReader] Sheet %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %s must have a header row and at least one data row", sheet)
	}
	return rows, nil
}

func parsePlayerWeek(row []string, header map[string]int) (gridiron.PlayerWeekRecord, error) {
	rec := gridiron.PlayerWeekRecord{
		PlayerID:   cell(row, header, "player_id"),
		PlayerName: cell(row, header, "player_name"),
		Position:   gridiron.Position(strings.ToUpper(cell(row, header, "position"))),
		Team:       gridiron.NormalizeTeam(gridiron.Team(cell(row, header, "team"))),
	}
	if rec.PlayerID == "" {
		return rec, fmt.Errorf("empty player_id")
	}
	if !rec.Position.Valid() {
		return rec, fmt.Errorf("unsupported position %q", cell(row, header, "position"))
	}

	var err error
	if rec.Season, err = intCell(row, header, "season"); err != nil {
		return rec, err
	}
	if rec.Week, err = intCell(row, header, "week"); err != nil {
		return rec, err
	}

	rec.Stats = gridiron.StatLine{
		PassingYards:   floatCellOrZero(row, header, "passing_yards"),
		PassingTDs:     floatCellOrZero(row, header, "passing_tds"),
		Interceptions:  floatCellOrZero(row, header, "interceptions"),
		Attempts:       floatCellOrZero(row, header, "attempts"),
		RushingYards:   floatCellOrZero(row, header, "rushing_yards"),
		RushingTDs:     floatCellOrZero(row, header, "rushing_tds"),
		Carries:        floatCellOrZero(row, header, "carries"),
		ReceivingYards: floatCellOrZero(row, header, "receiving_yards"),
		ReceivingTDs:   floatCellOrZero(row, header, "receiving_tds"),
		Receptions:     floatCellOrZero(row, header, "receptions"),
	}

	rec.Temp = floatCellOrNil(row, header, "temp")
	rec.Wind = floatCellOrNil(row, header, "wind")
	rec.IsDome = boolCell(row, header, "is_dome")
	return rec, nil
}

func parseScheduleGame(row []string, header map[string]int) (gridiron.ScheduleGame, error) {
	game := gridiron.ScheduleGame{
		HomeTeam: gridiron.NormalizeTeam(gridiron.Team(cell(row, header, "home_team"))),
		AwayTeam: gridiron.NormalizeTeam(gridiron.Team(cell(row, header, "away_team"))),
		IsDome:   boolCell(row, header, "is_dome"),
	}
	if game.HomeTeam == "" || game.AwayTeam == "" {
		return game, fmt.Errorf("empty team")
	}

	var err error
	if game.Season, err = intCell(row, header, "season"); err != nil {
		return game, err
	}
	if game.Week, err = intCell(row, header, "week"); err != nil {
		return game, err
	}

	game.Temp = floatCellOrNil(row, header, "temp")
	game.Wind = floatCellOrNil(row, header, "wind")
	return game, nil
}

// seasonSet builds a membership set, or nil when every season is
// wanted.
func seasonSet(seasons []int) map[int]bool {
	if len(seasons) == 0 {
		return nil
	}
	set := make(map[int]bool, len(seasons))
	for _, s := range seasons {
		set[s] = true
	}
	return set
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}

func cell(row []string, header map[string]int, name string) string {
	i, ok := header[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func intCell(row []string, header map[string]int, name string) (int, error) {
	raw := cell(row, header, name)
	if raw == "" {
		return 0, fmt.Errorf("empty %s", name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q", name, raw)
	}
	return n, nil
}

func floatCellOrZero(row []string, header map[string]int, name string) float64 {
	raw := cell(row, header, name)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func floatCellOrNil(row []string, header map[string]int, name string) *float64 {
	raw := cell(row, header, name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func boolCell(row []string, header map[string]int, name string) bool {
	switch strings.ToLower(cell(row, header, name)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

// Ensure DataReader implements RecordSource
var _ ports.RecordSource = (*DataReader)(nil)

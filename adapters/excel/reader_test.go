package excel

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/xCarter93/lineupiq/domain/gridiron"
)

func TestHeaderIndex_NormalizesNames(t *testing.T) {
	idx := headerIndex([]string{"Player_ID", " season ", "WEEK"})
	for _, want := range []string{"player_id", "season", "week"} {
		if _, ok := idx[want]; !ok {
			t.Errorf("header %q not indexed", want)
		}
	}
}

func TestParsePlayerWeek(t *testing.T) {
	header := headerIndex([]string{
		"player_id", "player_name", "position", "team", "season", "week",
		"passing_yards", "passing_tds", "temp", "wind", "is_dome",
	})
	row := []string{"00-0033873", "P.Mahomes", "qb", "KC", "2023", "5", "281", "3", "52.5", "9", "false"}

	rec, err := parsePlayerWeek(row, header)
	if err != nil {
		t.Fatalf("parsePlayerWeek failed: %v", err)
	}

	if rec.Position != gridiron.PositionQB {
		t.Errorf("position = %s, want QB (case folded)", rec.Position)
	}
	if rec.Season != 2023 || rec.Week != 5 {
		t.Errorf("season/week = %d/%d, want 2023/5", rec.Season, rec.Week)
	}
	if rec.Stats.PassingYards != 281 || rec.Stats.PassingTDs != 3 {
		t.Errorf("stats = %.0f yd %.0f td, want 281/3", rec.Stats.PassingYards, rec.Stats.PassingTDs)
	}
	if rec.Temp == nil || *rec.Temp != 52.5 {
		t.Error("temperature not parsed")
	}
	if rec.IsDome {
		t.Error("is_dome parsed as true")
	}
}

func TestParsePlayerWeek_NormalizesRelocatedTeams(t *testing.T) {
	header := headerIndex([]string{"player_id", "player_name", "position", "team", "season", "week"})
	row := []string{"00-001", "Old Timer", "RB", "SD", "2016", "3"}

	rec, err := parsePlayerWeek(row, header)
	if err != nil {
		t.Fatalf("parsePlayerWeek failed: %v", err)
	}
	if rec.Team != "LAC" {
		t.Errorf("team = %s, want LAC", rec.Team)
	}
}

func TestParsePlayerWeek_Rejections(t *testing.T) {
	header := headerIndex([]string{"player_id", "player_name", "position", "team", "season", "week"})

	tests := []struct {
		name string
		row  []string
	}{
		{"empty player id", []string{"", "X", "QB", "KC", "2023", "1"}},
		{"unsupported position", []string{"00-1", "X", "LS", "KC", "2023", "1"}},
		{"bad season", []string{"00-1", "X", "QB", "KC", "twenty", "1"}},
		{"missing week", []string{"00-1", "X", "QB", "KC", "2023", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parsePlayerWeek(tt.row, header); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestSeasonSet(t *testing.T) {
	if seasonSet(nil) != nil {
		t.Error("empty seasons should return nil (keep everything)")
	}
	set := seasonSet([]int{2022, 2023})
	if !set[2022] || !set[2023] || set[2021] {
		t.Errorf("unexpected membership: %v", set)
	}
}

func TestLoadPlayerWeeks_FiltersSeasons(t *testing.T) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", "player_weeks")
	rows := [][]interface{}{
		{"player_id", "player_name", "position", "team", "season", "week"},
		{"00-1", "A", "QB", "KC", 2022, 1},
		{"00-1", "A", "QB", "KC", 2023, 1},
		{"00-2", "B", "RB", "DET", 2023, 2},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("player_weeks", cell, &row); err != nil {
			t.Fatalf("writing row %d: %v", i+1, err)
		}
	}
	path := filepath.Join(t.TempDir(), "stats.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("saving workbook: %v", err)
	}

	filtered, err := NewDataReader(path).LoadPlayerWeeks(context.Background(), []int{2023})
	if err != nil {
		t.Fatalf("LoadPlayerWeeks failed: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("got %d records, want 2 from 2023", len(filtered))
	}
	for _, rec := range filtered {
		if rec.Season != 2023 {
			t.Errorf("season %d leaked through the filter", rec.Season)
		}
	}

	all, err := NewDataReader(path).LoadPlayerWeeks(context.Background(), nil)
	if err != nil {
		t.Fatalf("LoadPlayerWeeks failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d records without a filter, want 3", len(all))
	}
}

func TestParseScheduleGame(t *testing.T) {
	header := headerIndex([]string{"season", "week", "home_team", "away_team", "temp", "wind", "is_dome"})
	row := []string{"2023", "10", "DET", "OAK", "", "", "1"}

	game, err := parseScheduleGame(row, header)
	if err != nil {
		t.Fatalf("parseScheduleGame failed: %v", err)
	}
	if game.AwayTeam != "LV" {
		t.Errorf("away team = %s, want LV (normalized)", game.AwayTeam)
	}
	if !game.IsDome {
		t.Error("is_dome = false, want true for \"1\"")
	}
	if game.Temp != nil {
		t.Error("blank temperature should stay nil")
	}
}

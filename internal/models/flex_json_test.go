package models

import (
	"encoding/json"
	"testing"
)

func TestFlexUnmarshal_AllStrings(t *testing.T) {
	input := `{"team_id": "bos", "wins": "12", "losses": "3", "ties": "0", "points_for": "1650.5", "points_against": "1480", "home_record": {"wins": 7, "losses": 1, "ties": 0}, "recent_form": "WWLWW", "consistency": "0.72"}`

	var s TeamStats
	if err := json.Unmarshal([]byte(input), &s); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if s.TeamID != "bos" {
		t.Errorf("TeamID = %q, want bos", s.TeamID)
	}
	if s.Wins != 12 {
		t.Errorf("Wins = %d, want 12", s.Wins)
	}
	if s.Losses != 3 {
		t.Errorf("Losses = %d, want 3", s.Losses)
	}
	if s.PointsFor != 1650.5 {
		t.Errorf("PointsFor = %f, want 1650.5", s.PointsFor)
	}
	if s.HomeRecord.Wins != 7 {
		t.Errorf("HomeRecord.Wins = %d, want 7", s.HomeRecord.Wins)
	}
	if len(s.RecentForm) != 5 || s.RecentForm[2] != "L" {
		t.Errorf("RecentForm = %v, want [W W L W W]", s.RecentForm)
	}
	if s.Consistency == nil || *s.Consistency != 0.72 {
		t.Errorf("Consistency = %v, want 0.72", s.Consistency)
	}
}

func TestFlexUnmarshal_NativeTypes(t *testing.T) {
	input := `{"wins": 10, "losses": 0, "ties": 0, "points_for": 1000, "points_against": 800, "recent_form": ["W","W","W","W","W"]}`

	var s TeamStats
	if err := json.Unmarshal([]byte(input), &s); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if s.Wins != 10 {
		t.Errorf("Wins = %d, want 10", s.Wins)
	}
	if s.PointDiffPerGame() != 20 {
		t.Errorf("PointDiffPerGame = %f, want 20", s.PointDiffPerGame())
	}
	if s.Consistency != nil {
		t.Errorf("Consistency = %v, want nil", *s.Consistency)
	}
}

func TestFlexUnmarshal_QuotedNestedRecords(t *testing.T) {
	input := `{"wins": "6", "home_record": {"wins": "6", "losses": "0"}, "away_record": {"wins": 2, "losses": "1", "ties": ""}, "recent_form": "WWW"}`

	var s TeamStats
	if err := json.Unmarshal([]byte(input), &s); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if s.Wins != 6 {
		t.Errorf("Wins = %d, want 6", s.Wins)
	}
	if s.HomeRecord != (Record{Wins: 6}) {
		t.Errorf("HomeRecord = %+v, want {Wins:6}", s.HomeRecord)
	}
	if s.AwayRecord != (Record{Wins: 2, Losses: 1}) {
		t.Errorf("AwayRecord = %+v, want {Wins:2 Losses:1}", s.AwayRecord)
	}
	if len(s.RecentForm) != 3 {
		t.Errorf("RecentForm = %v, want [W W W]", s.RecentForm)
	}
}

func TestFlexUnmarshal_RejectsUnconvertibleFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad nested count", `{"wins": "6", "home_record": {"wins": "six"}}`},
		{"object for number", `{"wins": "6", "points_for": {"value": 10}}`},
		{"bad quoted number", `{"wins": "6", "losses": "many"}`},
		{"number for form", `{"wins": "6", "recent_form": 5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s TeamStats
			if err := json.Unmarshal([]byte(tt.input), &s); err == nil {
				t.Errorf("expected error, got %+v", s)
			}
		})
	}
}

func TestTeamStats_ZeroGames(t *testing.T) {
	var s TeamStats
	if s.WinRate() != 0 || s.PointDiffPerGame() != 0 || s.PointsPerGame() != 0 {
		t.Errorf("zero-game helpers should return 0")
	}
	if got := s.HomeRecord.WinRate(0.5); got != 0.5 {
		t.Errorf("empty record WinRate = %f, want fallback 0.5", got)
	}
	if got := s.ConsistencyOr(0.5); got != 0.5 {
		t.Errorf("ConsistencyOr = %f, want 0.5", got)
	}
}

func TestLastResults(t *testing.T) {
	s := TeamStats{RecentForm: []string{"L", "L", "W", "W", "W", "L", "W"}}
	got := s.LastResults(5)
	want := []string{"W", "W", "W", "L", "W"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("LastResults[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

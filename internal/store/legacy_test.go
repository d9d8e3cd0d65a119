package store

import (
	"database/sql"
	"testing"
	"time"
)

func TestLegacyRow_ToStored(t *testing.T) {
	created := time.Date(2023, 11, 5, 18, 0, 0, 0, time.FixedZone("EST", -5*3600))

	tests := []struct {
		name  string
		row   legacyRow
		check func(t *testing.T, row legacyRow)
	}{
		{
			name: "keeps archive id",
			row: legacyRow{
				ID: sql.NullString{String: "p-1", Valid: true}, GameID: "g1", ModelName: "ensemble",
				Sport: "NBA", PredictionType: "Winner", PredictedValue: 1,
				PredictedLabel: sql.NullString{String: "home", Valid: true}, Confidence: 0.7, CreatedAt: created,
			},
			check: func(t *testing.T, row legacyRow) {
				p := row.toStored()
				if p.ID != "p-1" {
					t.Errorf("ID = %q", p.ID)
				}
				if p.Sport != "nba" || p.PredictionType != "winner" {
					t.Errorf("sport/type not lowercased: %s/%s", p.Sport, p.PredictionType)
				}
				if p.GameType != "regular" {
					t.Errorf("GameType = %q, want regular", p.GameType)
				}
				if p.CreatedAt.Location() != time.UTC || !p.CreatedAt.Equal(created) {
					t.Errorf("CreatedAt = %v", p.CreatedAt)
				}
			},
		},
		{
			name: "derives stable id",
			row: legacyRow{GameID: "g2", ModelName: "linear", PredictionType: "spread", GameType: sql.NullString{String: "playoff", Valid: true}},
			check: func(t *testing.T, row legacyRow) {
				a, b := row.toStored(), row.toStored()
				if a.ID == "" || a.ID != b.ID {
					t.Errorf("derived IDs %q / %q should be equal and non-empty", a.ID, b.ID)
				}
				other := row
				other.PredictionType = "total"
				if other.toStored().ID == a.ID {
					t.Error("different natural keys should derive different IDs")
				}
				if a.GameType != "playoff" {
					t.Errorf("GameType = %q", a.GameType)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, tt.row)
		})
	}
}

package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/projectapex/apex-api/internal/models"
)

func TestRatingOf(t *testing.T) {
	tests := []struct {
		name  string
		stats *models.TeamStats
		want  float64
	}{
		{"nil stats", nil, BaseRating},
		{"zero games", &models.TeamStats{}, BaseRating},
		{
			"unbeaten",
			&models.TeamStats{Wins: 10, PointsFor: 1000, PointsAgainst: 800, RecentForm: []string{"W", "W", "W", "W", "W"}},
			1790,
		},
		{
			"winless",
			&models.TeamStats{Losses: 10, PointsFor: 800, PointsAgainst: 1000, RecentForm: []string{"L", "L", "L", "L", "L"}},
			1210,
		},
		{
			"even record no form",
			&models.TeamStats{Wins: 5, Losses: 5, PointsFor: 500, PointsAgainst: 500},
			BaseRating,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RatingOf(tt.stats), 1e-9)
		})
	}
}

func TestWinProbability(t *testing.T) {
	t.Run("home edge is strictly positive", func(t *testing.T) {
		home := WinProbability(1500, 1500, true)
		neutral := WinProbability(1500, 1500, false)
		assert.Greater(t, home, neutral)
		assert.InDelta(t, 0.5, neutral, 1e-12)
		assert.InDelta(t, 0.6401, home, 1e-4)
	})

	t.Run("symmetric on neutral site", func(t *testing.T) {
		a := WinProbability(1620, 1480, false)
		b := WinProbability(1480, 1620, false)
		assert.InDelta(t, 1, a+b, 1e-12)
	})

	t.Run("stays inside the open interval", func(t *testing.T) {
		p := WinProbability(3000, 0, true)
		assert.Less(t, p, 1.0)
		assert.Greater(t, WinProbability(0, 3000, false), 0.0)
	})
}

func TestUpdateAfterResult(t *testing.T) {
	got := UpdateAfterResult(1500, 1500, 0.5)
	assert.Equal(t, 1516.0, got.Winner)
	assert.Equal(t, 1484.0, got.Loser)

	// a heavy favourite gains little
	got = UpdateAfterResult(1700, 1400, 0.9)
	assert.Equal(t, 1703.0, got.Winner)
	assert.Equal(t, 1397.0, got.Loser)
}

func TestRecencyWeightedForm(t *testing.T) {
	assert.Equal(t, 0.5, RecencyWeightedForm(nil))
	assert.Equal(t, 1.0, RecencyWeightedForm([]string{"W", "W", "W"}))
	assert.Equal(t, 0.0, RecencyWeightedForm([]string{"L", "L"}))

	// a loss last hurts more than a loss first
	lateLoss := RecencyWeightedForm([]string{"W", "W", "W", "W", "L"})
	earlyLoss := RecencyWeightedForm([]string{"L", "W", "W", "W", "W"})
	assert.Less(t, lateLoss, earlyLoss)

	// only the last five count
	assert.Equal(t, 1.0, RecencyWeightedForm([]string{"L", "L", "W", "W", "W", "W", "W"}))
}

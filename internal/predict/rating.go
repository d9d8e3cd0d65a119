package predict

import (
	"math"

	"github.com/projectapex/apex-api/internal/models"
)

const (
	BaseRating        = 1500.0
	HomeAdvantage     = 100.0
	KFactor           = 32.0
	formWindow        = 5
	formRecencyFactor = 1.2
)

// RatingOf converts season stats into a single rating.
// A team with no games is rated exactly BaseRating.
func RatingOf(stats *models.TeamStats) float64 {
	if stats == nil || stats.Games() == 0 {
		return BaseRating
	}

	winRateBonus := (stats.WinRate() - 0.5) * 400
	pointDiffBonus := stats.PointDiffPerGame() * 2
	formBonus := (RecencyWeightedForm(stats.RecentForm) - 0.5) * 100

	return BaseRating + winRateBonus + pointDiffBonus + formBonus
}

// WinProbability returns the chance that A beats B.
// isHomeA adds the home advantage to A; false means a neutral site.
func WinProbability(ratingA, ratingB float64, isHomeA bool) float64 {
	if isHomeA {
		ratingA += HomeAdvantage
	}
	return 1 / (1 + math.Pow(10, -(ratingA-ratingB)/400))
}

// RatingUpdate is the result of applying one game to two ratings
type RatingUpdate struct {
	Winner float64 `json:"winner"`
	Loser  float64 `json:"loser"`
}

// UpdateAfterResult applies a K=32 update after the winner beat the loser.
// expectedWinProb is the winner's pre-game win probability.
func UpdateAfterResult(winnerRating, loserRating, expectedWinProb float64) RatingUpdate {
	delta := KFactor * (1 - expectedWinProb)
	return RatingUpdate{
		Winner: math.Round(winnerRating + delta),
		Loser:  math.Round(loserRating - delta),
	}
}

// RecencyWeightedForm is the win rate over the last five results,
// weighting result i (oldest first) by 1.2^i. Returns 0.5 with no results.
func RecencyWeightedForm(form []string) float64 {
	recent := form
	if len(recent) > formWindow {
		recent = recent[len(recent)-formWindow:]
	}
	if len(recent) == 0 {
		return 0.5
	}

	var won, total float64
	for i, r := range recent {
		w := math.Pow(formRecencyFactor, float64(i))
		total += w
		if isWin(r) {
			won += w
		}
	}
	return won / total
}

// formWinRate is the unweighted win rate over the last five results
func formWinRate(form []string) float64 {
	recent := form
	if len(recent) > formWindow {
		recent = recent[len(recent)-formWindow:]
	}
	if len(recent) == 0 {
		return 0.5
	}
	wins := 0
	for _, r := range recent {
		if isWin(r) {
			wins++
		}
	}
	return float64(wins) / float64(len(recent))
}

func isWin(result string) bool {
	return result == "W" || result == "w"
}

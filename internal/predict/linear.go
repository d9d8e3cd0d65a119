package predict

import (
	"fmt"
	"math"
	"strings"

	"github.com/projectapex/apex-api/internal/models"
)

const numFeatures = 8

var featureNames = [numFeatures]string{
	"rating",
	"strength",
	"recent_form",
	"home_advantage",
	"rest",
	"point_differential",
	"consistency",
	"strength_of_schedule",
}

// Feature indexes used by the factor rules
const (
	featRating    = 0
	featForm      = 2
	featPointDiff = 5
)

// factor thresholds on the absolute feature difference
const (
	ratingFactorThreshold    = 0.1
	formFactorThreshold      = 0.2
	pointDiffFactorThreshold = 0.3
)

const (
	minConfidence      = 0.5
	maxConfidence      = 0.95
	fullSampleGames    = 20.0
	spreadPerProbPoint = 6.0
)

type featureVector [numFeatures]float64

func (e *Engine) features(stats *models.TeamStats, sw SportWeights, isHome bool, restDays int) featureVector {
	home := 0.0
	if isHome {
		home = 1
	}
	return featureVector{
		RatingOf(stats) / 2000,
		StrengthOf(stats, sw.Strength),
		formWinRate(stats.RecentForm),
		home,
		math.Min(float64(restDays)/7, 1),
		clamp(stats.PointDiffPerGame()/pointDiffBound, -1, 1),
		stats.ConsistencyOr(0.5),
		stats.StrengthOfScheduleOr(0.5),
	}
}

// PredictLinear runs the feature-weighted logistic model
func (e *Engine) PredictLinear(home, away *models.TeamStats, gc *models.GameContext) models.MLPrediction {
	home, away, gc = orEmpty(home), orEmpty(away), orEmptyContext(gc)
	sport := e.weights.Resolve(gc.Sport)
	sw := e.weights.Sports[sport]

	hf := e.features(home, sw, true, gc.RestDays)
	af := e.features(away, sw, false, gc.AwayRest())

	var diff featureVector
	for i := range diff {
		diff[i] = hf[i] - af[i]
	}

	weights := sw.Linear.vector()
	logit := sw.Linear.Bias
	var absDiffSum float64
	contributions := make(map[string]float64, numFeatures)
	for i, d := range diff {
		logit += d * weights[i]
		absDiffSum += math.Abs(d)
		contributions[featureNames[i]] = math.Abs(d * weights[i])
	}
	p := sigmoid(logit)

	minGames := math.Min(float64(home.Games()), float64(away.Games()))
	sampleSizeFactor := math.Min(1, minGames/fullSampleGames)
	confidence := clamp(absDiffSum/numFeatures*2*sampleSizeFactor, minConfidence, maxConfidence)

	spread := home.PointDiffPerGame() - away.PointDiffPerGame() + (p-0.5)*spreadPerProbPoint
	total := math.Max(0, home.PointsPerGame()+away.PointsPerGame()+totalAdjustment(sw.Totals, gc))

	homeP := round(p, 3)
	return models.MLPrediction{
		Model:              e.modelID("linear", gc.Sport),
		HomeWinProbability: homeP,
		AwayWinProbability: complement(homeP),
		PredictedSpread:    round(spread, 1),
		PredictedTotal:     round(total, 1),
		Confidence:         round(confidence, 3),
		Factors:            linearFactors(diff, sport),
		FeatureImportance:  normalize(contributions),
	}
}

func totalAdjustment(t TotalAdjustments, gc *models.GameContext) float64 {
	var adj float64
	if gc.IsPlayoffs {
		adj += t.Playoffs
	}
	if gc.Weather.IsAdverse() {
		adj += t.AdverseWeather
	}
	return adj
}

func linearFactors(diff featureVector, sport string) []string {
	var factors []string

	if d := diff[featRating]; math.Abs(d) > ratingFactorThreshold {
		factors = append(factors, fmt.Sprintf("%s team has a significant rating advantage", side(d)))
	}
	if d := diff[featForm]; math.Abs(d) > formFactorThreshold {
		factors = append(factors, fmt.Sprintf("%s team is in better recent form", side(d)))
	}
	if d := diff[featPointDiff]; math.Abs(d) > pointDiffFactorThreshold {
		factors = append(factors, fmt.Sprintf("%s team has a stronger point differential", side(d)))
	}

	return append(factors,
		"Home advantage and rest days included",
		fmt.Sprintf("Weights tuned for %s", strings.ReplaceAll(sport, "_", " ")),
	)
}

func side(d float64) string {
	if d > 0 {
		return "Home"
	}
	return "Away"
}

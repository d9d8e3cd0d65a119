package predict

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/projectapex/apex-api/internal/models"
)

// ErrUnknownModel is returned by Engine.PredictWith for an unrecognised model name
var ErrUnknownModel = errors.New("unknown model")

// Model names accepted by PredictWith
const (
	ModelEnsemble = "ensemble"
	ModelLinear   = "linear"
	ModelRating   = "rating"
	ModelStrength = "strength"
)

// ensemble blend weights: linear, rating, strength
var ensembleWeights = []float64{0.5, 0.3, 0.2}

const strengthSpreadScale = 0.3

// Engine runs the prediction models against a fixed set of weight tables.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	weights *Weights
}

// NewEngine creates an engine. A nil w uses DefaultWeights.
func NewEngine(w *Weights) *Engine {
	if w == nil {
		w = DefaultWeights()
	}
	return &Engine{weights: w}
}

// Weights returns the engine's weight tables
func (e *Engine) Weights() *Weights { return e.weights }

// Version returns the weight table version
func (e *Engine) Version() string { return e.weights.Version }

// PredictWith dispatches to the named model
func (e *Engine) PredictWith(model string, home, away *models.TeamStats, gc *models.GameContext) (models.MLPrediction, error) {
	switch strings.ToLower(model) {
	case "", ModelEnsemble:
		return e.Predict(home, away, gc), nil
	case ModelLinear:
		return e.PredictLinear(home, away, gc), nil
	case ModelRating:
		return e.PredictRating(home, away, gc), nil
	case ModelStrength:
		return e.PredictStrength(home, away, gc), nil
	default:
		return models.MLPrediction{}, fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}
}

// Predict blends the linear, rating and strength models
func (e *Engine) Predict(home, away *models.TeamStats, gc *models.GameContext) models.MLPrediction {
	home, away, gc = orEmpty(home), orEmpty(away), orEmptyContext(gc)
	sw := e.weights.For(gc.Sport)

	linear := e.PredictLinear(home, away, gc)
	ratingP := WinProbability(RatingOf(home), RatingOf(away), true)
	strengthP := 0.5 + (StrengthOf(home, sw.Strength)-StrengthOf(away, sw.Strength))*strengthSpreadScale

	ps := []float64{linear.HomeWinProbability, ratingP, strengthP}
	p := stat.Mean(ps, ensembleWeights)
	confidence := clamp(1-stat.PopVariance(ps, nil), minConfidence, maxConfidence)

	importance := map[string]float64{
		"linear_model":   ensembleWeights[0],
		"rating_model":   ensembleWeights[1],
		"strength_model": ensembleWeights[2],
	}
	for name, v := range linear.FeatureImportance {
		importance[name] += v * ensembleWeights[0]
	}

	factors := append([]string{
		fmt.Sprintf("Ensemble of linear (%.3f), rating (%.3f) and strength (%.3f) models", ps[0], ps[1], ps[2]),
	}, linear.Factors...)

	homeP := round(p, 3)
	return models.MLPrediction{
		Model:              e.modelID("ensemble", gc.Sport),
		HomeWinProbability: homeP,
		AwayWinProbability: complement(homeP),
		PredictedSpread:    linear.PredictedSpread,
		PredictedTotal:     linear.PredictedTotal,
		Confidence:         round(confidence, 3),
		Factors:            factors,
		FeatureImportance:  normalize(importance),
	}
}

// PredictRating exposes the rating model on its own.
// Spread and total come from the linear model.
func (e *Engine) PredictRating(home, away *models.TeamStats, gc *models.GameContext) models.MLPrediction {
	home, away, gc = orEmpty(home), orEmpty(away), orEmptyContext(gc)
	linear := e.PredictLinear(home, away, gc)

	hr, ar := RatingOf(home), RatingOf(away)
	p := WinProbability(hr, ar, true)

	return e.single("rating", gc.Sport, p, linear, []string{
		fmt.Sprintf("Home rating %.0f vs away rating %.0f (+%.0f home advantage)", hr, ar, HomeAdvantage),
	})
}

// PredictStrength exposes the heuristic strength model on its own.
// Spread and total come from the linear model.
func (e *Engine) PredictStrength(home, away *models.TeamStats, gc *models.GameContext) models.MLPrediction {
	home, away, gc = orEmpty(home), orEmpty(away), orEmptyContext(gc)
	sw := e.weights.For(gc.Sport)
	linear := e.PredictLinear(home, away, gc)

	hs, as := StrengthOf(home, sw.Strength), StrengthOf(away, sw.Strength)
	p := 0.5 + (hs-as)*strengthSpreadScale

	return e.single("strength", gc.Sport, p, linear, []string{
		fmt.Sprintf("Home strength %.3f vs away strength %.3f", hs, as),
	})
}

// single builds a prediction for a one-signal model. Confidence grows with the edge.
func (e *Engine) single(name, sport string, p float64, linear models.MLPrediction, factors []string) models.MLPrediction {
	homeP := round(p, 3)
	return models.MLPrediction{
		Model:              e.modelID(name, sport),
		HomeWinProbability: homeP,
		AwayWinProbability: complement(homeP),
		PredictedSpread:    linear.PredictedSpread,
		PredictedTotal:     linear.PredictedTotal,
		Confidence:         round(clamp(0.5+math.Abs(p-0.5), minConfidence, maxConfidence), 3),
		Factors:            factors,
	}
}

func (e *Engine) modelID(name, sport string) string {
	sport = strings.ToLower(strings.TrimSpace(sport))
	if sport == "" {
		sport = DefaultSport
	}
	return fmt.Sprintf("%s_%s_v%s", name, sport, e.weights.Version)
}

func orEmpty(s *models.TeamStats) *models.TeamStats {
	if s == nil {
		return &models.TeamStats{}
	}
	return s
}

func orEmptyContext(gc *models.GameContext) *models.GameContext {
	if gc == nil {
		return &models.GameContext{}
	}
	return gc
}

package logic

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/projectapex/apex-api/internal/models"
)

var (
	// ErrInvalidProbability is returned for probabilities outside [0, 1]
	ErrInvalidProbability = errors.New("probability must be within [0, 1]")
	// ErrMissingOutcome is returned when an outcome has no value
	ErrMissingOutcome = errors.New("outcome is required")
)

const (
	numericTolerance = 0.05
	minProbability   = 0.01
	maxProbability   = 0.99
	houseEdge        = 0.95
)

// EvaluateRequest identifies a prediction and its realized outcome
type EvaluateRequest struct {
	PredictionID string         `json:"prediction_id" validate:"required"`
	Actual       models.Outcome `json:"actual_outcome" swaggertype:"string"`
	Predicted    models.Outcome `json:"predicted_outcome" swaggertype:"string"`
	Probability  float64        `json:"probability" validate:"gte=0,lte=1"`
	Sport        string         `json:"sport" validate:"required"`
	League       string         `json:"league"`
	ModelName    string         `json:"model_name" validate:"required"`
}

type trackerService struct {
	store     EvaluationStore
	refresher MetricsRefresher
	preds     PredictionStore
	logger    *zap.SugaredLogger
	now       func() time.Time
}

// NewTrackerService creates a tracker. preds may be nil when ResolveGame is unused.
func NewTrackerService(store EvaluationStore, refresher MetricsRefresher, preds PredictionStore, logger *zap.SugaredLogger) TrackerService {
	return &trackerService{
		store:     store,
		refresher: refresher,
		preds:     preds,
		logger:    logger,
		now:       time.Now,
	}
}

// Evaluate scores one prediction, persists it, then refreshes metrics for its
// (sport, league, model). The three store steps run in order; the first failure
// is returned and later steps are skipped.
func (t *trackerService) Evaluate(ctx context.Context, req EvaluateRequest) (*models.PredictionEvaluation, error) {
	ev, err := ScoreEvaluation(req)
	if err != nil {
		return nil, err
	}
	ev.EvaluatedAt = t.now().UTC()

	if err := t.store.PersistEvaluation(ctx, ev); err != nil {
		evaluationFailures.WithLabelValues("persist").Inc()
		return nil, fmt.Errorf("persist evaluation %s: %w", req.PredictionID, err)
	}
	if err := t.store.TouchActualOutcome(ctx, req.PredictionID, req.Actual, ev.IsCorrect); err != nil {
		evaluationFailures.WithLabelValues("touch").Inc()
		return nil, fmt.Errorf("record actual outcome %s: %w", req.PredictionID, err)
	}
	if _, err := t.refresher.RefreshMetrics(ctx, req.Sport, req.League, req.ModelName); err != nil {
		evaluationFailures.WithLabelValues("refresh").Inc()
		return nil, fmt.Errorf("refresh metrics: %w", err)
	}

	recordEvaluation(req.ModelName, req.Sport, ev.IsCorrect)
	t.logger.Debugw("Prediction evaluated",
		"prediction_id", req.PredictionID,
		"model", req.ModelName,
		"correct", ev.IsCorrect,
		"error", ev.Error,
	)
	return ev, nil
}

// ResolveGame evaluates every stored prediction for a completed game
func (t *trackerService) ResolveGame(ctx context.Context, gameID string, homeScore, awayScore float64) ([]models.PredictionEvaluation, error) {
	if t.preds == nil {
		return nil, fmt.Errorf("resolve game: no prediction store configured")
	}

	rows, err := t.preds.PredictionsForGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load predictions for game %s: %w", gameID, err)
	}

	results := make([]models.PredictionEvaluation, 0, len(rows))
	for _, row := range rows {
		actual, ok := actualFor(row.PredictionType, homeScore, awayScore)
		if !ok {
			t.logger.Warnw("Skipping prediction with unknown type",
				"prediction_id", row.ID,
				"type", row.PredictionType,
			)
			continue
		}

		ev, err := t.Evaluate(ctx, EvaluateRequest{
			PredictionID: row.ID,
			Actual:       actual,
			Predicted:    row.PredictedOutcome(),
			Probability:  row.Confidence,
			Sport:        row.Sport,
			League:       row.League,
			ModelName:    row.ModelName,
		})
		if err != nil {
			return results, err
		}
		results = append(results, *ev)
	}

	t.logger.Infow("Game resolved",
		"game_id", gameID,
		"evaluations", len(results),
	)
	return results, nil
}

func actualFor(predictionType string, homeScore, awayScore float64) (models.Outcome, bool) {
	switch predictionType {
	case models.PredictionTypeWinner:
		switch {
		case homeScore > awayScore:
			return models.CategoricalOutcome(models.WinnerHome), true
		case awayScore > homeScore:
			return models.CategoricalOutcome(models.WinnerAway), true
		default:
			return models.CategoricalOutcome("tie"), true
		}
	case models.PredictionTypeSpread:
		return models.NumericOutcome(homeScore - awayScore), true
	case models.PredictionTypeTotal:
		return models.NumericOutcome(homeScore + awayScore), true
	}
	return models.Outcome{}, false
}

// ScoreEvaluation computes correctness, error, calibration bin and profit
// without touching the store.
func ScoreEvaluation(req EvaluateRequest) (*models.PredictionEvaluation, error) {
	if math.IsNaN(req.Probability) || req.Probability < 0 || req.Probability > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidProbability, req.Probability)
	}
	if req.Actual.IsZero() || req.Predicted.IsZero() {
		return nil, ErrMissingOutcome
	}
	if req.Actual.Kind() != req.Predicted.Kind() {
		return nil, fmt.Errorf("%w: actual is %s, predicted is %s",
			models.ErrOutcomeMismatch, req.Actual.Kind(), req.Predicted.Kind())
	}

	ev := &models.PredictionEvaluation{
		PredictionID:     req.PredictionID,
		ActualOutcome:    req.Actual,
		PredictedOutcome: req.Predicted,
		Probability:      req.Probability,
		CalibrationBin:   CalibrationBin(req.Probability),
		Sport:            req.Sport,
		League:           req.League,
		ModelName:        req.ModelName,
	}

	switch req.Actual.Kind() {
	case models.OutcomeNumeric:
		actual, _ := req.Actual.Numeric()
		predicted, _ := req.Predicted.Numeric()
		ev.Error = math.Abs(actual - predicted)
		ev.IsCorrect = ev.Error <= numericTolerance*math.Abs(actual)
	case models.OutcomeCategorical:
		actual, _ := req.Actual.Categorical()
		predicted, _ := req.Predicted.Categorical()
		ev.IsCorrect = strings.EqualFold(actual, predicted)
		ev.Error = LogLoss(req.Probability, ev.IsCorrect)
	}

	ev.ProfitLoss = ProfitLoss(req.Probability, ev.IsCorrect)
	return ev, nil
}

// CalibrationBin returns floor(p*10) limited to 0..9
func CalibrationBin(p float64) int {
	bin := int(math.Floor(p * 10))
	if bin < 0 {
		return 0
	}
	if bin > 9 {
		return 9
	}
	return bin
}

// LogLoss is the binary log-loss of probability p against outcome correct,
// with p clamped to [0.01, 0.99]
func LogLoss(p float64, correct bool) float64 {
	p = clampProbability(p)
	if correct {
		return -math.Log(p)
	}
	return -math.Log(1 - p)
}

// ProfitLoss is the unit-stake return at fair odds less a 5% house edge.
// This is a placeholder economic model, not tied to market odds.
func ProfitLoss(p float64, correct bool) float64 {
	if !correct {
		return -1
	}
	return (1/clampProbability(p))*houseEdge - 1
}

func clampProbability(p float64) float64 {
	return math.Max(minProbability, math.Min(maxProbability, p))
}

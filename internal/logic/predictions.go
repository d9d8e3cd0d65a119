package logic

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/projectapex/apex-api/internal/models"
	"github.com/projectapex/apex-api/internal/predict"
)

// PredictGameRequest asks for a forecast between two known teams
type PredictGameRequest struct {
	GameID     string             `json:"game_id"`
	HomeTeamID string             `json:"home_team_id" validate:"required"`
	AwayTeamID string             `json:"away_team_id" validate:"required,nefield=HomeTeamID"`
	League     string             `json:"league"`
	Season     string             `json:"season"`
	GameType   string             `json:"game_type"`
	Model      string             `json:"model"`
	AsOf       time.Time          `json:"as_of"`
	Context    models.GameContext `json:"context" validate:"required"`
}

type predictionService struct {
	engine *predict.Engine
	stats  TeamStatsSource
	store  PredictionStore
	sink   PredictionLogger
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewPredictionService wires the engine to its collaborators. store and sink may be nil.
func NewPredictionService(engine *predict.Engine, stats TeamStatsSource, store PredictionStore, sink PredictionLogger, logger *zap.SugaredLogger) PredictionService {
	return &predictionService{
		engine: engine,
		stats:  stats,
		store:  store,
		sink:   sink,
		logger: logger,
		now:    time.Now,
	}
}

// Predict runs a model directly against supplied stats
func (s *predictionService) Predict(model string, home, away *models.TeamStats, gc *models.GameContext) (models.MLPrediction, error) {
	pred, err := s.engine.PredictWith(model, home, away, gc)
	if err != nil {
		return pred, err
	}
	predictionsServed.WithLabelValues(orDefault(model, predict.ModelEnsemble), sportOf(gc)).Inc()
	return pred, nil
}

// PredictGame loads both teams' stats, predicts, stores the three prediction
// rows when a game ID is given, and hands the result to the prediction log.
func (s *predictionService) PredictGame(ctx context.Context, req PredictGameRequest) (*models.GamePrediction, error) {
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = s.now()
	}

	var home, away *models.TeamStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if home, err = s.stats.FetchTeamStats(gctx, req.HomeTeamID, asOf); err != nil {
			return fmt.Errorf("home team %s: %w", req.HomeTeamID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if away, err = s.stats.FetchTeamStats(gctx, req.AwayTeamID, asOf); err != nil {
			return fmt.Errorf("away team %s: %w", req.AwayTeamID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch team stats: %w", err)
	}

	pred, err := s.Predict(req.Model, home, away, &req.Context)
	if err != nil {
		return nil, err
	}

	gp := &models.GamePrediction{
		PredictionID: uuid.NewString(),
		GameID:       req.GameID,
		HomeTeamID:   req.HomeTeamID,
		AwayTeamID:   req.AwayTeamID,
		Sport:        req.Context.Sport,
		League:       req.League,
		Prediction:   pred,
		CreatedAt:    s.now().UTC(),
	}

	if req.GameID != "" && s.store != nil {
		if err := s.store.SavePredictions(ctx, storedRows(gp, req)); err != nil {
			return nil, fmt.Errorf("store predictions for game %s: %w", req.GameID, err)
		}
	}

	if s.sink != nil && !s.sink.Enqueue(models.NewPredictionLogEntry(gp)) {
		s.logger.Warnw("Prediction log queue full, entry dropped",
			"prediction_id", gp.PredictionID,
			"game_id", gp.GameID,
		)
	}

	return gp, nil
}

// storedRows splits a game prediction into winner, spread and total rows
func storedRows(gp *models.GamePrediction, req PredictGameRequest) []models.StoredPrediction {
	p := gp.Prediction
	base := models.StoredPrediction{
		GameID:    gp.GameID,
		ModelName: p.Model,
		Sport:     gp.Sport,
		League:    gp.League,
		Season:    req.Season,
		GameType:  req.GameType,
		CreatedAt: gp.CreatedAt,
	}

	winner := base
	winner.ID = gp.PredictionID
	winner.PredictionType = models.PredictionTypeWinner
	if p.HomeWinProbability > 0.5 {
		winner.PredictedValue, winner.PredictedLabel, winner.Confidence = 1, models.WinnerHome, p.HomeWinProbability
	} else {
		winner.PredictedValue, winner.PredictedLabel, winner.Confidence = 0, models.WinnerAway, p.AwayWinProbability
	}

	spread := base
	spread.ID = uuid.NewString()
	spread.PredictionType = models.PredictionTypeSpread
	spread.PredictedValue = p.PredictedSpread
	spread.Confidence = p.Confidence

	total := base
	total.ID = uuid.NewString()
	total.PredictionType = models.PredictionTypeTotal
	total.PredictedValue = p.PredictedTotal
	total.Confidence = p.Confidence

	return []models.StoredPrediction{winner, spread, total}
}

func sportOf(gc *models.GameContext) string {
	if gc == nil {
		return ""
	}
	return gc.Sport
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/projectapex/apex-api/internal/models"
)

// Repository persists predictions, evaluations and metrics in Postgres
type Repository struct {
	pg    PgPool
	guard *Guard
}

func NewRepository(pg PgPool, guard *Guard) *Repository {
	return &Repository{pg: pg, guard: guard}
}

// FetchEvaluatedPredictions returns evaluations matching the filter, oldest first.
// Season, game type and prediction type come from the prediction row when one exists.
func (r *Repository) FetchEvaluatedPredictions(ctx context.Context, filter models.EvaluationFilter) ([]models.EvaluationRecord, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT e.prediction_id, e.model_name, e.sport, e.league,
		       COALESCE(p.prediction_type, ''), e.probability, e.is_correct,
		       COALESCE(p.predicted_value, e.predicted_value), e.actual_value,
		       COALESCE(p.season, ''), COALESCE(p.game_type, ''),
		       COALESCE(p.created_at, e.evaluated_at) AS created_at
		FROM prediction_evaluations e
		LEFT JOIN predictions p ON p.id = e.prediction_id
		WHERE TRUE`)

	var args []any
	add := func(clause string, v any) {
		args = append(args, v)
		fmt.Fprintf(&sb, " AND %s $%d", clause, len(args))
	}
	if filter.Sport != "" {
		add("e.sport =", filter.Sport)
	}
	if filter.League != "" {
		add("e.league =", filter.League)
	}
	if filter.ModelName != "" {
		add("e.model_name =", filter.ModelName)
	}
	if !filter.Since.IsZero() {
		add("COALESCE(p.created_at, e.evaluated_at) >=", filter.Since)
	}
	sb.WriteString(" ORDER BY created_at ASC")

	var records []models.EvaluationRecord
	err := r.guard.Do(ctx, "fetch_evaluations", func(ctx context.Context) error {
		rows, err := r.pg.Query(ctx, sb.String(), args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var rec models.EvaluationRecord
			if err := rows.Scan(
				&rec.PredictionID, &rec.ModelName, &rec.Sport, &rec.League,
				&rec.PredictionType, &rec.Confidence, &rec.IsCorrect,
				&rec.PredictedValue, &rec.ActualValue,
				&rec.Season, &rec.GameType, &rec.CreatedAt,
			); err != nil {
				return fmt.Errorf("scan evaluation: %w", err)
			}
			records = append(records, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// PersistEvaluation upserts one evaluation keyed by prediction ID
func (r *Repository) PersistEvaluation(ctx context.Context, ev *models.PredictionEvaluation) error {
	actual, err := json.Marshal(ev.ActualOutcome)
	if err != nil {
		return fmt.Errorf("encode actual outcome: %w", err)
	}
	predicted, err := json.Marshal(ev.PredictedOutcome)
	if err != nil {
		return fmt.Errorf("encode predicted outcome: %w", err)
	}

	return r.guard.Do(ctx, "persist_evaluation", func(ctx context.Context) error {
		_, err := r.pg.Exec(ctx, `
			INSERT INTO prediction_evaluations (
				prediction_id, model_name, sport, league,
				actual_outcome, predicted_outcome, predicted_value, actual_value,
				probability, is_correct, error, calibration_bin, profit_loss, evaluated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			ON CONFLICT (prediction_id) DO UPDATE SET
				actual_outcome = EXCLUDED.actual_outcome,
				predicted_outcome = EXCLUDED.predicted_outcome,
				predicted_value = EXCLUDED.predicted_value,
				actual_value = EXCLUDED.actual_value,
				probability = EXCLUDED.probability,
				is_correct = EXCLUDED.is_correct,
				error = EXCLUDED.error,
				calibration_bin = EXCLUDED.calibration_bin,
				profit_loss = EXCLUDED.profit_loss,
				evaluated_at = EXCLUDED.evaluated_at
		`,
			ev.PredictionID, ev.ModelName, ev.Sport, ev.League,
			actual, predicted, outcomeValue(ev.PredictedOutcome), outcomeValuePtr(ev.ActualOutcome),
			ev.Probability, ev.IsCorrect, ev.Error, ev.CalibrationBin, ev.ProfitLoss, ev.EvaluatedAt,
		)
		return err
	})
}

// TouchActualOutcome records the outcome on the stored prediction row, if any
func (r *Repository) TouchActualOutcome(ctx context.Context, predictionID string, actual models.Outcome, isCorrect bool) error {
	label, _ := actual.Categorical()
	return r.guard.Do(ctx, "touch_actual_outcome", func(ctx context.Context) error {
		_, err := r.pg.Exec(ctx, `
			UPDATE predictions
			SET actual_value = $2, actual_label = NULLIF($3, ''), is_correct = $4
			WHERE id = $1
		`, predictionID, outcomeValuePtr(actual), label, isCorrect)
		return err
	})
}

// UpsertMetrics stores the latest metrics for one (model, sport, league)
func (r *Repository) UpsertMetrics(ctx context.Context, m *models.PredictionMetrics) error {
	return r.guard.Do(ctx, "upsert_metrics", func(ctx context.Context) error {
		_, err := r.pg.Exec(ctx, `
			INSERT INTO model_metrics (
				model_name, sport, league, total_predictions, correct_predictions,
				accuracy, precision, recall, f1_score, brier_score, profitability, last_updated
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (model_name, sport, league) DO UPDATE SET
				total_predictions = EXCLUDED.total_predictions,
				correct_predictions = EXCLUDED.correct_predictions,
				accuracy = EXCLUDED.accuracy,
				precision = EXCLUDED.precision,
				recall = EXCLUDED.recall,
				f1_score = EXCLUDED.f1_score,
				brier_score = EXCLUDED.brier_score,
				profitability = EXCLUDED.profitability,
				last_updated = EXCLUDED.last_updated
		`,
			m.ModelName, m.Sport, m.League, m.TotalPredictions, m.CorrectPredictions,
			m.Accuracy, m.Precision, m.Recall, m.F1Score, m.BrierScore, m.Profitability, m.LastUpdated,
		)
		return err
	})
}

// SavePredictions upserts prediction rows keyed by (game_id, model_name, prediction_type)
func (r *Repository) SavePredictions(ctx context.Context, preds []models.StoredPrediction) error {
	preds = latestPerKey(preds)
	if len(preds) == 0 {
		return nil
	}

	const cols = 12
	now := time.Now().UTC()
	var sb strings.Builder
	sb.WriteString(`INSERT INTO predictions (
		id, game_id, model_name, sport, league, prediction_type,
		predicted_value, predicted_label, confidence, season, game_type, created_at
	) VALUES `)
	args := make([]any, 0, len(preds)*cols)
	for i, p := range preds {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for c := 1; c <= cols; c++ {
			if c > 1 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", i*cols+c)
		}
		sb.WriteString(")")
		createdAt := p.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		args = append(args,
			p.ID, p.GameID, p.ModelName, p.Sport, p.League, p.PredictionType,
			p.PredictedValue, nullIfEmpty(p.PredictedLabel), p.Confidence, p.Season, p.GameType, createdAt,
		)
	}
	sb.WriteString(`
		ON CONFLICT (game_id, model_name, prediction_type) DO UPDATE SET
			id = EXCLUDED.id,
			predicted_value = EXCLUDED.predicted_value,
			predicted_label = EXCLUDED.predicted_label,
			confidence = EXCLUDED.confidence,
			actual_value = NULL,
			actual_label = NULL,
			is_correct = NULL,
			created_at = EXCLUDED.created_at`)

	return r.guard.Do(ctx, "save_predictions", func(ctx context.Context) error {
		_, err := r.pg.Exec(ctx, sb.String(), args...)
		return err
	})
}

// latestPerKey keeps the last row for each conflict key. Postgres rejects an
// upsert that touches the same row twice.
func latestPerKey(preds []models.StoredPrediction) []models.StoredPrediction {
	type key struct{ game, model, kind string }
	index := make(map[key]int, len(preds))
	out := make([]models.StoredPrediction, 0, len(preds))
	for _, p := range preds {
		k := key{p.GameID, p.ModelName, p.PredictionType}
		if i, ok := index[k]; ok {
			out[i] = p
			continue
		}
		index[k] = len(out)
		out = append(out, p)
	}
	return out
}

// PredictionsForGame returns unresolved prediction rows for a game
func (r *Repository) PredictionsForGame(ctx context.Context, gameID string) ([]models.StoredPrediction, error) {
	var preds []models.StoredPrediction
	err := r.guard.Do(ctx, "predictions_for_game", func(ctx context.Context) error {
		rows, err := r.pg.Query(ctx, `
			SELECT id, game_id, model_name, sport, league, prediction_type,
			       predicted_value, COALESCE(predicted_label, ''), confidence,
			       season, game_type, created_at
			FROM predictions
			WHERE game_id = $1 AND actual_value IS NULL AND actual_label IS NULL
			ORDER BY model_name, prediction_type
		`, gameID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var p models.StoredPrediction
			if err := rows.Scan(
				&p.ID, &p.GameID, &p.ModelName, &p.Sport, &p.League, &p.PredictionType,
				&p.PredictedValue, &p.PredictedLabel, &p.Confidence,
				&p.Season, &p.GameType, &p.CreatedAt,
			); err != nil {
				return fmt.Errorf("scan prediction: %w", err)
			}
			preds = append(preds, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return preds, nil
}

// outcomeValue maps an outcome to the numeric column: numbers as-is,
// positive labels (home, win, yes, over) as 1, anything else as 0
func outcomeValue(o models.Outcome) float64 {
	if v, ok := o.Numeric(); ok {
		return v
	}
	label, _ := o.Categorical()
	switch strings.ToLower(label) {
	case models.WinnerHome, "win", "yes", "over", "true", "1":
		return 1
	}
	return 0
}

func outcomeValuePtr(o models.Outcome) *float64 {
	if o.IsZero() {
		return nil
	}
	v := outcomeValue(o)
	return &v
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

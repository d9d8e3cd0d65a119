package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/projectapex/apex-api/internal/models"
)

func TestOutcomeValue(t *testing.T) {
	tests := []struct {
		name string
		in   models.Outcome
		want float64
	}{
		{"numeric", models.NumericOutcome(-3.5), -3.5},
		{"home", models.CategoricalOutcome("home"), 1},
		{"Home mixed case", models.CategoricalOutcome("Home"), 1},
		{"away", models.CategoricalOutcome("away"), 0},
		{"over", models.CategoricalOutcome("over"), 1},
		{"tie", models.CategoricalOutcome("tie"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outcomeValue(tt.in); got != tt.want {
				t.Errorf("outcomeValue() = %v, want %v", got, tt.want)
			}
		})
	}

	if outcomeValuePtr(models.Outcome{}) != nil {
		t.Error("empty outcome should map to NULL")
	}
}

func TestSavePredictions_MultiRowUpsert(t *testing.T) {
	pg := &MockPgPool{}
	repo := NewRepository(pg, NewGuard(GuardConfig{Name: "test-save"}))

	preds := []models.StoredPrediction{
		{ID: "p1", GameID: "g1", ModelName: "ensemble", PredictionType: models.PredictionTypeWinner, PredictedValue: 1, PredictedLabel: "home"},
		{ID: "p2", GameID: "g1", ModelName: "ensemble", PredictionType: models.PredictionTypeSpread, PredictedValue: 4.5},
	}
	if err := repo.SavePredictions(context.Background(), preds); err != nil {
		t.Fatalf("SavePredictions: %v", err)
	}

	if len(pg.Execs) != 1 {
		t.Fatalf("execs = %d, want 1", len(pg.Execs))
	}
	sql := pg.Execs[0]
	if !strings.Contains(sql, "$24)") {
		t.Errorf("expected 24 placeholders, got:\n%s", sql)
	}
	if !strings.Contains(sql, "ON CONFLICT (game_id, model_name, prediction_type)") {
		t.Error("missing upsert clause")
	}
	if len(pg.Args[0]) != 24 {
		t.Errorf("args = %d, want 24", len(pg.Args[0]))
	}
	if label, ok := pg.Args[0][19].(*string); !ok || label != nil {
		t.Errorf("empty label should bind as NULL, got %#v", pg.Args[0][19])
	}
}

func TestSavePredictions_Empty(t *testing.T) {
	pg := &MockPgPool{}
	repo := NewRepository(pg, NewGuard(GuardConfig{Name: "test-empty"}))
	if err := repo.SavePredictions(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pg.Execs) != 0 {
		t.Error("no statement expected for an empty batch")
	}
}

func TestTouchActualOutcome_Categorical(t *testing.T) {
	pg := &MockPgPool{}
	repo := NewRepository(pg, NewGuard(GuardConfig{Name: "test-touch"}))

	err := repo.TouchActualOutcome(context.Background(), "p1", models.CategoricalOutcome("home"), true)
	if err != nil {
		t.Fatalf("TouchActualOutcome: %v", err)
	}
	args := pg.Args[0]
	if v, ok := args[1].(*float64); !ok || v == nil || *v != 1 {
		t.Errorf("actual_value = %#v, want 1", args[1])
	}
	if args[2] != "home" || args[3] != true {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestPersistEvaluation_WrapsError(t *testing.T) {
	boom := errors.New("duplicate key")
	pg := &MockPgPool{ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
		return pgconn.CommandTag{}, boom
	}}
	repo := NewRepository(pg, NewGuard(GuardConfig{Name: "test-persist"}))

	err := repo.PersistEvaluation(context.Background(), &models.PredictionEvaluation{
		PredictionID:     "p1",
		ActualOutcome:    models.NumericOutcome(7),
		PredictedOutcome: models.NumericOutcome(4.5),
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "persist_evaluation:") {
		t.Errorf("error should name the operation: %v", err)
	}
}

func TestSavePredictions_CollapsesDuplicateKeys(t *testing.T) {
	pg := &MockPgPool{}
	repo := NewRepository(pg, NewGuard(GuardConfig{Name: "test-dupes"}))

	preds := []models.StoredPrediction{
		{ID: "old", GameID: "g1", ModelName: "linear", PredictionType: models.PredictionTypeTotal, PredictedValue: 210},
		{ID: "other", GameID: "g2", ModelName: "linear", PredictionType: models.PredictionTypeTotal, PredictedValue: 199},
		{ID: "new", GameID: "g1", ModelName: "linear", PredictionType: models.PredictionTypeTotal, PredictedValue: 214},
	}
	if err := repo.SavePredictions(context.Background(), preds); err != nil {
		t.Fatalf("SavePredictions: %v", err)
	}

	args := pg.Args[0]
	if len(args) != 24 {
		t.Fatalf("args = %d, want 24 (two distinct keys)", len(args))
	}
	if args[0] != "new" || args[6] != 214.0 {
		t.Errorf("first row should carry the latest duplicate, got id=%v value=%v", args[0], args[6])
	}
	if args[12] != "other" {
		t.Errorf("second row id = %v, want other", args[12])
	}
}

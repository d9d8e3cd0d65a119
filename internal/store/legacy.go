package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/projectapex/apex-api/internal/models"
)

// LegacyArchive reads predictions from the MySQL archive of the previous
// prediction service
type LegacyArchive struct {
	db *sql.DB
}

// OpenLegacyArchive connects to the archive. Timestamps are parsed as UTC.
func OpenLegacyArchive(ctx context.Context, dsn string) (*LegacyArchive, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(4)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return &LegacyArchive{db: db}, nil
}

func (a *LegacyArchive) Close() error { return a.db.Close() }

// legacyRow mirrors ml_predictions in the archive
type legacyRow struct {
	ID             sql.NullString
	GameID         string
	ModelName      string
	Sport          string
	League         sql.NullString
	PredictionType string
	PredictedValue float64
	PredictedLabel sql.NullString
	Confidence     float64
	Season         sql.NullString
	GameType       sql.NullString
	CreatedAt      time.Time
}

// Scan pages through the archive in ID order, calling fn with each page.
// Rows created before since are skipped.
func (a *LegacyArchive) Scan(ctx context.Context, since time.Time, pageSize int, fn func([]models.StoredPrediction) error) (int, error) {
	if pageSize <= 0 {
		pageSize = 500
	}

	total := 0
	offset := 0
	for {
		page, err := a.page(ctx, since, pageSize, offset)
		if err != nil {
			return total, err
		}
		if len(page) == 0 {
			return total, nil
		}
		if err := fn(page); err != nil {
			return total, err
		}
		total += len(page)
		offset += len(page)
		if len(page) < pageSize {
			return total, nil
		}
	}
}

func (a *LegacyArchive) page(ctx context.Context, since time.Time, limit, offset int) ([]models.StoredPrediction, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, game_id, model_name, sport, league, prediction_type,
		       predicted_value, predicted_label, confidence, season, game_type, created_at
		FROM ml_predictions
		WHERE created_at >= ?
		ORDER BY created_at, game_id
		LIMIT ? OFFSET ?
	`, since, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	var out []models.StoredPrediction
	for rows.Next() {
		var r legacyRow
		if err := rows.Scan(
			&r.ID, &r.GameID, &r.ModelName, &r.Sport, &r.League, &r.PredictionType,
			&r.PredictedValue, &r.PredictedLabel, &r.Confidence, &r.Season, &r.GameType, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}
		out = append(out, r.toStored())
	}
	return out, rows.Err()
}

// toStored normalizes an archive row. Rows without an ID get a stable one
// derived from the natural key so reruns upsert instead of duplicating.
func (r legacyRow) toStored() models.StoredPrediction {
	id := strings.TrimSpace(r.ID.String)
	if id == "" {
		key := r.GameID + "|" + r.ModelName + "|" + r.PredictionType
		id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
	}
	gameType := r.GameType.String
	if gameType == "" {
		gameType = "regular"
	}
	return models.StoredPrediction{
		ID:             id,
		GameID:         r.GameID,
		ModelName:      r.ModelName,
		Sport:          strings.ToLower(r.Sport),
		League:         r.League.String,
		PredictionType: strings.ToLower(r.PredictionType),
		PredictedValue: r.PredictedValue,
		PredictedLabel: r.PredictedLabel.String,
		Confidence:     r.Confidence,
		Season:         r.Season.String,
		GameType:       gameType,
		CreatedAt:      r.CreatedAt.UTC(),
	}
}

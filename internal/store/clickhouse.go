package store

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/projectapex/apex-api/internal/models"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 500
)

// ConnectClickHouse opens a native connection from a clickhouse:// DSN
func ConnectClickHouse(ctx context.Context, dsn string) (driver.Conn, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse clickhouse DSN: %w", err)
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}
	return conn, nil
}

// PredictionLogReader reads served predictions back from the analytics log
type PredictionLogReader struct {
	ch driver.Conn
}

func NewPredictionLogReader(ch driver.Conn) *PredictionLogReader {
	return &PredictionLogReader{ch: ch}
}

// Recent returns the newest log entries, optionally for one sport
func (r *PredictionLogReader) Recent(ctx context.Context, sport string, limit int) ([]models.PredictionLogEntry, error) {
	limit = clampLimit(limit)

	query := `
		SELECT prediction_id, game_id, model, sport, league, home_team_id, away_team_id,
		       home_win_probability, predicted_spread, predicted_total, confidence, created_at
		FROM apex.prediction_log`
	args := []interface{}{}
	if sport != "" {
		query += " WHERE sport = ?"
		args = append(args, sport)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.ch.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query prediction log: %w", err)
	}
	defer rows.Close()

	entries := make([]models.PredictionLogEntry, 0, limit)
	for rows.Next() {
		var e models.PredictionLogEntry
		if err := rows.Scan(
			&e.PredictionID, &e.GameID, &e.Model, &e.Sport, &e.League, &e.HomeTeamID, &e.AwayTeamID,
			&e.HomeWinProbability, &e.PredictedSpread, &e.PredictedTotal, &e.Confidence, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan prediction log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultRecentLimit
	}
	if limit > maxRecentLimit {
		return maxRecentLimit
	}
	return limit
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/projectapex/apex-api/internal/models"
)

const (
	AlertChannel      = "apex:alerts"
	metricsKeyPrefix  = "apex:metrics:"
	alertKeyPrefix    = "apex:alert:"
	defaultMetricsTTL = 10 * time.Minute
	defaultAlertTTL   = time.Hour
)

// KeyValueStore is the subset of Redis used for caching and alert fan-out
type KeyValueStore interface {
	HSet(ctx context.Context, key string, values map[string]interface{}) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	Publish(ctx context.Context, channel string, message interface{}) error
}

// RedisKV implements KeyValueStore using a go-redis client
type RedisKV struct {
	client *redis.Client
}

func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

func (s *RedisKV) HSet(ctx context.Context, key string, values map[string]interface{}) error {
	return s.client.HSet(ctx, key, values).Err()
}

func (s *RedisKV) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return s.client.HGetAll(ctx, key).Result()
}

func (s *RedisKV) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Expire(ctx, key, ttl).Err()
}

func (s *RedisKV) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

func (s *RedisKV) Publish(ctx context.Context, channel string, message interface{}) error {
	return s.client.Publish(ctx, channel, message).Err()
}

// ConnectRedis parses a redis:// URL and verifies connectivity
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// MetricsCache keeps the latest PredictionMetrics per (sport, league, model) in a Redis hash
type MetricsCache struct {
	kv  KeyValueStore
	ttl time.Duration
}

func NewMetricsCache(kv KeyValueStore, ttl time.Duration) *MetricsCache {
	if ttl <= 0 {
		ttl = defaultMetricsTTL
	}
	return &MetricsCache{kv: kv, ttl: ttl}
}

func metricsKey(sport, league, model string) string {
	if league == "" {
		league = "_"
	}
	if model == "" {
		model = "_"
	}
	return metricsKeyPrefix + sport + ":" + league + ":" + model
}

// GetMetrics returns nil, nil on a cache miss
func (c *MetricsCache) GetMetrics(ctx context.Context, sport, league, model string) (*models.PredictionMetrics, error) {
	fields, err := c.kv.HGetAll(ctx, metricsKey(sport, league, model))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cached metrics: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	m := &models.PredictionMetrics{
		ModelName: fields["model_name"],
		Sport:     fields["sport"],
		League:    fields["league"],
	}
	var parseErr error
	intField := func(name string) int {
		v, err := strconv.Atoi(fields[name])
		if err != nil && parseErr == nil {
			parseErr = fmt.Errorf("field %s: %w", name, err)
		}
		return v
	}
	floatField := func(name string) float64 {
		v, err := strconv.ParseFloat(fields[name], 64)
		if err != nil && parseErr == nil {
			parseErr = fmt.Errorf("field %s: %w", name, err)
		}
		return v
	}
	m.TotalPredictions = intField("total_predictions")
	m.CorrectPredictions = intField("correct_predictions")
	m.Accuracy = floatField("accuracy")
	m.Precision = floatField("precision")
	m.Recall = floatField("recall")
	m.F1Score = floatField("f1_score")
	m.BrierScore = floatField("brier_score")
	m.Profitability = floatField("profitability")
	if ts, err := time.Parse(time.RFC3339Nano, fields["last_updated"]); err == nil {
		m.LastUpdated = ts
	}
	if parseErr != nil {
		// A corrupt entry reads as a miss so callers recompute
		return nil, nil
	}
	return m, nil
}

func (c *MetricsCache) SetMetrics(ctx context.Context, m *models.PredictionMetrics) error {
	key := metricsKey(m.Sport, m.League, m.ModelName)
	fields := map[string]interface{}{
		"model_name":          m.ModelName,
		"sport":               m.Sport,
		"league":              m.League,
		"total_predictions":   m.TotalPredictions,
		"correct_predictions": m.CorrectPredictions,
		"accuracy":            strconv.FormatFloat(m.Accuracy, 'f', -1, 64),
		"precision":           strconv.FormatFloat(m.Precision, 'f', -1, 64),
		"recall":              strconv.FormatFloat(m.Recall, 'f', -1, 64),
		"f1_score":            strconv.FormatFloat(m.F1Score, 'f', -1, 64),
		"brier_score":         strconv.FormatFloat(m.BrierScore, 'f', -1, 64),
		"profitability":       strconv.FormatFloat(m.Profitability, 'f', -1, 64),
		"last_updated":        m.LastUpdated.UTC().Format(time.RFC3339Nano),
	}
	if err := c.kv.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("cache metrics: %w", err)
	}
	if err := c.kv.Expire(ctx, key, c.ttl); err != nil {
		return fmt.Errorf("expire metrics: %w", err)
	}
	return nil
}

// AlertPublisher fans alerts out on a Redis channel, suppressing repeats
// of the same (source, type, message) within the dedupe window
type AlertPublisher struct {
	kv     KeyValueStore
	window time.Duration
	logger *zap.SugaredLogger
}

func NewAlertPublisher(kv KeyValueStore, window time.Duration, logger *zap.SugaredLogger) *AlertPublisher {
	if window <= 0 {
		window = defaultAlertTTL
	}
	return &AlertPublisher{kv: kv, window: window, logger: logger}
}

// Publish returns the number of alerts actually sent
func (p *AlertPublisher) Publish(ctx context.Context, alerts []models.Alert) (int, error) {
	sent := 0
	for _, a := range alerts {
		if a.Resolved {
			continue
		}
		key := alertKeyPrefix + a.Source + ":" + string(a.Type) + ":" + a.Message
		fresh, err := p.kv.SetNX(ctx, key, a.ID, p.window)
		if err != nil {
			return sent, fmt.Errorf("dedupe alert: %w", err)
		}
		if !fresh {
			p.logger.Debugw("Suppressed duplicate alert", "source", a.Source, "type", a.Type)
			continue
		}

		payload, err := json.Marshal(a)
		if err != nil {
			return sent, fmt.Errorf("encode alert: %w", err)
		}
		if err := p.kv.Publish(ctx, AlertChannel, payload); err != nil {
			return sent, fmt.Errorf("publish alert: %w", err)
		}
		sent++
	}
	return sent, nil
}

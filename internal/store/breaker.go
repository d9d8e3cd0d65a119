// Package store implements the persistence collaborators used by the
// prediction services: Postgres for evaluations, predictions and team stats,
// Redis for cached metrics and alert fan-out, ClickHouse for the prediction log.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var (
	storeCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apex_store_calls_total",
		Help: "Store calls by operation and result",
	}, []string{"op", "result"})

	storeCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "apex_store_call_duration_seconds",
		Help:    "Duration of store calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
)

// ErrUnavailable is returned while the circuit breaker is open
var ErrUnavailable = errors.New("store unavailable")

// GuardConfig configures a Guard
type GuardConfig struct {
	Name        string
	CallTimeout time.Duration // per-call deadline
	OpenTimeout time.Duration // how long the breaker stays open
	MaxFailures uint32        // consecutive failures that trip the breaker
	Logger      *zap.SugaredLogger
}

// Guard applies a per-call timeout and a circuit breaker to store calls
type Guard struct {
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
}

func NewGuard(cfg GuardConfig) *Guard {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 5 * time.Second
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= cfg.MaxFailures {
				return true
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warnw("Circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &Guard{
		cb:      gobreaker.NewCircuitBreaker(settings),
		timeout: cfg.CallTimeout,
	}
}

// Do runs fn with a deadline under the breaker. Rows must be fully read inside fn.
func (g *Guard) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	start := time.Now()
	_, err := g.cb.Execute(func() (interface{}, error) {
		cctx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		return nil, fn(cctx)
	})
	storeCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil {
		storeCalls.WithLabelValues(op, "error").Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	storeCalls.WithLabelValues(op, "ok").Inc()
	return nil
}

// State reports the breaker state, for readiness checks
func (g *Guard) State() gobreaker.State {
	return g.cb.State()
}

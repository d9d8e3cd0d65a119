package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// RouterConfig holds the HTTP surface settings
type RouterConfig struct {
	AllowedOrigins     []string
	RateLimitPerSecond int
	RateLimitBurst     int
	EnableSwagger      bool
	RequestTimeout     time.Duration
}

// NewRouter mounts every route on a chi router
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())
	if cfg.EnableSwagger {
		r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
		if cfg.RateLimitPerSecond > 0 {
			r.Use(h.RateLimitMiddleware(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
		}

		r.Post("/predictions", h.PredictMatchup)
		r.Get("/predictions/recent", h.GetRecentPredictions)
		r.Post("/games/predict", h.PredictGame)
		r.Post("/games/{gameID}/resolve", h.ResolveGame)

		r.Post("/evaluations", h.EvaluatePrediction)

		r.Route("/performance/{sport}", func(r chi.Router) {
			r.Get("/", h.GetPerformance)
			r.Get("/calibration", h.GetCalibration)
			r.Get("/metrics", h.GetMetrics)
		})

		r.Get("/monitor", h.RunMonitor)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		h.errorResponse(w, http.StatusNotFound, "Not found")
	})
	return r
}

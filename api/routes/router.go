package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/get2salam/price-matrix-demo/api/controllers"
	"github.com/get2salam/price-matrix-demo/api/middleware"
	"github.com/get2salam/price-matrix-demo/internal/analysis"
	"github.com/get2salam/price-matrix-demo/internal/pricing"
	"github.com/get2salam/price-matrix-demo/pkg/config"
	"github.com/get2salam/price-matrix-demo/pkg/db"
	"github.com/get2salam/price-matrix-demo/pkg/logger"
	"github.com/get2salam/price-matrix-demo/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	pricingService pricing.Service,
	analysisService analysis.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	ingestPolicy := middleware.NewRateLimitPolicy(
		"ingest",
		cfg.RateLimit.IngestWindow,
		cfg.RateLimit.IngestIPLimit,
		cfg.RateLimit.IngestSubjectLimit,
	)
	var limiterStore middleware.RateLimiterStore
	var redisPinger redis.Pinger
	if redisClient != nil {
		limiterStore = redisClient
		redisPinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		if !cfg.App.IsProd() {
			r.Post("/token", controllers.DevToken(cfg, logg))
		}
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/matrices", func(r chi.Router) {
			r.Post("/", controllers.MatrixCreate(pricingService, logg))
			r.Get("/", controllers.MatrixList(pricingService, logg))
			r.Route("/{matrixId}", func(r chi.Router) {
				r.Get("/", controllers.MatrixGet(pricingService, logg))
				r.Put("/", controllers.MatrixUpdate(pricingService, logg))
				r.Delete("/", controllers.MatrixDelete(pricingService, logg))
				r.Post("/tiers", controllers.TierAdd(pricingService, logg))
				r.Patch("/tiers/{position}", controllers.TierEdit(pricingService, logg))
				r.Delete("/tiers/{position}", controllers.TierRemove(pricingService, logg))
				r.Get("/runs", controllers.AnalysisRunsList(analysisService, logg))
			})
		})

		r.Route("/analyses", func(r chi.Router) {
			r.With(middleware.RateLimit(ingestPolicy, limiterStore, logg)).
				Post("/", controllers.AnalysisCreate(analysisService, cfg.Engine, logg))
			r.Route("/{analysisId}", func(r chi.Router) {
				r.Get("/", controllers.AnalysisGet(analysisService, logg))
				r.Get("/run", controllers.AnalysisRunGet(analysisService, logg))
				r.Post("/recommendations", controllers.AnalysisRecommend(analysisService, logg))
				r.Post("/locks", controllers.AnalysisPin(analysisService, logg))
				r.Delete("/locks", controllers.AnalysisResetLocks(analysisService, logg))
			})
		})
	})

	return r
}

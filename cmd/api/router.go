package api

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/smart-sheet-viewer/pkg/middleware"
	"github.com/FACorreiaa/smart-sheet-viewer/pkg/observability"
)

// SetupRouter configures all routes and returns the HTTP service
func SetupRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	// Register API routes
	apiMux := http.NewServeMux()
	deps.SheetHandler.Register(apiMux)
	mux.Handle("/v1/", wrapAPIRoute(observability.MetricsMiddleware("v1", apiMux)))
	deps.Logger.Info("registered sheet API", "prefix", "/v1/")

	// Register health and metrics routes
	registerUtilityRoutes(mux, deps)

	tracer := otel.GetTracerProvider().Tracer("sheet/api")

	chain := []func(http.Handler) http.Handler{
		middleware.RequestID("X-Request-ID"),
		middleware.Tracing(tracer),
		middleware.Recovery(deps.Logger),
		middleware.Logging(deps.Logger),
	}
	if deps.Config.Server.RateLimitPerSecond > 0 && deps.Config.Server.RateLimitBurst > 0 {
		limiter := rate.NewLimiter(
			rate.Limit(float64(deps.Config.Server.RateLimitPerSecond)),
			deps.Config.Server.RateLimitBurst,
		)
		chain = append(chain, middleware.RateLimit(limiter))
	}
	handler := middleware.Chain(mux, chain...)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Narrow to specific origins once the frontend host is fixed.
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept-Encoding", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           7200, // Cache preflights for 2 hours
	})

	return corsHandler.Handler(handler)
}

func wrapAPIRoute(next http.Handler) http.Handler {
	const maxBodyBytes int64 = 1 << 20 // 1 MiB

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("X-Content-Type-Options", "nosniff")

		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}

		next.ServeHTTP(w, r)
	})
}

// registerUtilityRoutes registers health check, metrics, and other utility routes
func registerUtilityRoutes(mux *http.ServeMux, deps *Dependencies) {
	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			deps.Logger.Error("failed to write health response", slog.Any("error", err))
		}
	})
	deps.Logger.Info("registered health check", "path", "/health")

	// Readiness check endpoint; the service is ready once dependencies exist,
	// sheet data loads lazily per request.
	mux.HandleFunc("/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ready")); err != nil {
			deps.Logger.Error("failed to write readiness response", slog.Any("error", err))
		}
	})
	deps.Logger.Info("registered readiness check", "path", "/ready")

	// Metrics endpoint (Prometheus)
	if deps.Config.Observability.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
		deps.Logger.Info("registered metrics endpoint", "path", "/metrics")
	}
}

package httpserver

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/platform/api"
)

// RouterConfig customises SetupRouter.
type RouterConfig struct {
	// ReadyFunc backs /readyz. It is bounded by ReadyTimeout (default 2s).
	ReadyFunc    func(ctx context.Context) error
	ReadyTimeout time.Duration
	// Log enables access logging when set.
	Log *zap.Logger
	// CORSOrigins overrides CORS_ALLOWED_ORIGINS.
	CORSOrigins []string
}

// SetupRouter attaches base middlewares and common endpoints.
// IMPORTANT: must be called before registering any routes.
func SetupRouter(r chi.Router, cfg ...RouterConfig) {
	var rc RouterConfig
	if len(cfg) > 0 {
		rc = cfg[0]
	}
	if rc.ReadyTimeout <= 0 {
		rc.ReadyTimeout = 2 * time.Second
	}
	origins := rc.CORSOrigins
	if len(origins) == 0 {
		origins = parseCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))
	}

	r.Use(RequestIDMiddleware(RequestIDHeader))
	if rc.Log != nil {
		r.Use(AccessLog(rc.Log))
	}
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if rc.ReadyFunc != nil {
			ctx, cancel := context.WithTimeout(r.Context(), rc.ReadyTimeout)
			defer cancel()
			if err := rc.ReadyFunc(ctx); err != nil {
				api.WriteError(w, http.StatusServiceUnavailable, "NOT_READY", err.Error(), RequestIDFromContext(r.Context()), nil)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
}

// AccessLog writes one Info line per request, Warn for 5xx. Probe
// endpoints are logged at Debug.
func AccessLog(log *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", RequestIDFromContext(r.Context())),
			}
			switch {
			case r.URL.Path == "/healthz" || r.URL.Path == "/readyz":
				log.Debug("http request", fields...)
			case status >= http.StatusInternalServerError:
				log.Warn("http request", fields...)
			default:
				log.Info("http request", fields...)
			}
		})
	}
}

// parseCORSOrigins splits a comma separated list; empty means "*".
func parseCORSOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

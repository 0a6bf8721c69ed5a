package httpapi

import (
	"net/http"

	"github.com/riskibarqy/fantasy-racing/internal/platform/logging"
)

type RouterOptions struct {
	CORSAllowedOrigins []string
	// RateLimiter is optional; nil disables per-client throttling.
	RateLimiter *IPRateLimiter
}

func NewRouter(handler *Handler, verifier TokenVerifier, logger *logging.Logger, opts RouterOptions) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerSelectionRoutes(mux, handler, verifier)
	registerCardRoutes(mux, handler, verifier)
	registerCalendarRoutes(mux, handler, verifier)

	return RequestTracing(
		RequestLogging(logger,
			CORS(opts.CORSAllowedOrigins,
				RateLimit(opts.RateLimiter,
					recoverPanic(logger, mux)))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

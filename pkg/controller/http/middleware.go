package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/secmon-lab/argus/pkg/utils/logging"
)

// accessLogger is a middleware that logs HTTP requests and carries a
// request scoped logger in the context
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default()
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			logger = logger.With("request_id", reqID)
		}
		r = r.WithContext(logging.With(r.Context(), logger))

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// rateLimiter limits mutations per authenticated principal, falling back
// to the client IP
func rateLimiter(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(r.Context(), w, http.StatusTooManyRequests, errorResponse{
				Error: http.StatusText(http.StatusTooManyRequests),
				Code:  "RateLimited",
			})
		}),
	)
}

func rateLimitKey(r *http.Request) (string, error) {
	if actor, ok := actorFrom(r.Context()); ok {
		if id := strings.TrimSpace(actor.ID.String()); id != "" {
			return "principal:" + id, nil
		}
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}

package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/recipeshift/internal/shared"
)

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logging logs the method, path, status and duration of every request.
func Logging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start))
		})
	}
}

// NewLimiter creates a token bucket admitting perSecond requests with the given burst.
// A non-positive rate disables limiting and returns nil.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// RateLimit answers 429 when limiter has no token left. A nil limiter admits everything.
func RateLimit(limiter *rate.Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Serialize runs the wrapped handler while holding lock. A busy lock answers 409 and an
// unreachable lock backend answers 503.
func Serialize(lock RunLock, logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, err := lock.Acquire(r.Context())
			switch {
			case errors.Is(err, shared.ErrLockHeld):
				writeError(w, http.StatusConflict, err.Error())
				return
			case err != nil:
				logger.Error("failed to acquire run lock", "err", err)
				writeError(w, http.StatusServiceUnavailable, shared.ErrServiceUnavail.Error())
				return
			}

			defer func() {
				if err := release(context.Background()); err != nil {
					logger.Warn("failed to release run lock", "err", err)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

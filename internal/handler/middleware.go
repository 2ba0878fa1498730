package handler

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"pdf-webhook/internal/domain"
	apperrors "pdf-webhook/pkg/errors"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const maxRequestIDLength = 128

// Client-facing messages written by the middleware and router
const (
	MsgTooManyRequests  = "Too many requests"
	MsgInternal         = "Internal server error"
	MsgNotFound         = "Not found"
	MsgMethodNotAllowed = "Method not allowed"
)

// RequestID echoes a client supplied X-Request-ID or assigns a new one
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(withRequestID(r.Context(), id)))
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// RequestLogger logs one line per request
type RequestLogger struct {
	logger domain.Logger
}

// NewRequestLogger creates a new request logging middleware
func NewRequestLogger(logger domain.Logger) *RequestLogger {
	return &RequestLogger{logger: logger}
}

// Middleware returns the logging middleware handler
func (m *RequestLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		requestID, _ := GetRequestIDFromContext(r.Context())
		m.logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", requestID,
		)
	})
}

// Recoverer turns handler panics into 500 responses
type Recoverer struct {
	logger domain.Logger
}

// NewRecoverer creates a new panic recovery middleware
func NewRecoverer(logger domain.Logger) *Recoverer {
	return &Recoverer{logger: logger}
}

// Middleware returns the recovery middleware handler
func (m *Recoverer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				requestID, _ := GetRequestIDFromContext(r.Context())
				m.logger.Error("Handler panicked", fmt.Errorf("%v", rec),
					"path", r.URL.Path, "request_id", requestID, "stack", string(debug.Stack()))
				writeAppError(w, apperrors.NewInternalError(MsgInternal, fmt.Errorf("%v", rec)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// BodyLimit rejects bodies larger than max bytes with 413
func BodyLimit(max int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if max <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > max {
				writeAppError(w, apperrors.NewTooLargeError(MsgFileTooLarge).WithCause(domain.ErrPayloadTooLarge))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, max)
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiter applies a global token bucket to the routes it wraps
type RateLimiter struct {
	limiter *rate.Limiter
	logger  domain.Logger
}

// NewRateLimiter creates a limiter allowing rps requests per second with the
// given burst. A non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst int, logger domain.Logger) *RateLimiter {
	m := &RateLimiter{logger: logger}
	if rps > 0 {
		if burst < 1 {
			burst = 1
		}
		m.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return m
}

// Middleware returns the rate limiting middleware handler
func (m *RateLimiter) Middleware(next http.Handler) http.Handler {
	if m.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter.Allow() {
			requestID, _ := GetRequestIDFromContext(r.Context())
			m.logger.Warn("Rate limit exceeded", "path", r.URL.Path, "request_id", requestID)
			w.Header().Set("Retry-After", "1")
			writeAppError(w, apperrors.NewRateLimitedError(MsgTooManyRequests))
			return
		}
		next.ServeHTTP(w, r)
	})
}

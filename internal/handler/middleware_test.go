package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestID_Generated(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetRequestIDFromContext(r.Context())
		if !ok || id == "" {
			t.Fatalf("expected request id in context")
		}
		seen = id
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rr.Header().Get(RequestIDHeader); got == "" || got != seen {
		t.Fatalf("expected response header %q, got %q", seen, got)
	}
}

func TestRequestID_Echoed(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected echoed id, got %q", got)
	}
}

func TestBodyLimit_ContentLength(t *testing.T) {
	h := BodyLimit(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("expected handler not to be called")
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 11)))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status %d, got %d", http.StatusRequestEntityTooLarge, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), MsgFileTooLarge) {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestBodyLimit_StreamedBody(t *testing.T) {
	h := BodyLimit(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err == nil {
			t.Fatalf("expected read past the limit to fail")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 64)))
	req.ContentLength = -1
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rr.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	logger := NewMockHandlerLogger()
	h := NewRateLimiter(0.001, 1, logger).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	if rr.Code != http.StatusTooManyRequests || errorMessage(t, rr) != MsgTooManyRequests {
		t.Fatalf("unexpected response: %d %s", rr.Code, rr.Body.String())
	}
	if !logger.has("WARN: Rate limit exceeded") {
		t.Fatalf("expected rate limit warning to be logged")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := NewRateLimiter(0, 10, NewMockHandlerLogger()).Middleware(next)

	for i := 0; i < 50; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected status %d, got %d", i, http.StatusOK, rr.Code)
		}
	}
}

func TestRecoverer(t *testing.T) {
	logger := NewMockHandlerLogger()
	h := NewRecoverer(logger).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	if errorMessage(t, rr) != MsgInternal || strings.Contains(rr.Body.String(), "boom") {
		t.Fatalf("panic value leaked to client: %s", rr.Body.String())
	}
	if !logger.has("ERROR: Handler panicked") {
		t.Fatalf("expected panic to be logged")
	}
}

func TestRequestLogger(t *testing.T) {
	logger := NewMockHandlerLogger()
	h := NewRequestLogger(logger).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusBadRequest, "bad")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/webhook/pdf-info", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if !logger.has("INFO: HTTP request") {
		t.Fatalf("expected request to be logged")
	}
}

package handler

import (
	"net/http"
	"strings"

	"pdf-webhook/internal/domain"
	apperrors "pdf-webhook/pkg/errors"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured. Request ids,
// request logging and panic recovery wrap the whole mux so that unmatched
// requests get them too.
func NewRouter(cfg domain.Config, webhook *WebhookHandler, health *HealthHandler, logger domain.Logger) http.Handler {
	router := mux.NewRouter()
	withFallbacks(router)

	root := router
	if base := strings.TrimRight(cfg.GetBasePath(), "/"); base != "" {
		root = router.PathPrefix(base).Subrouter()
		withFallbacks(root)
	}

	root.HandleFunc("/health", health.Health).Methods(http.MethodGet)

	// Webhook routes
	hooks := root.PathPrefix("/webhook").Subrouter()
	withFallbacks(hooks)
	hooks.Use(NewRateLimiter(cfg.GetRateLimit(), cfg.GetRateBurst(), logger).Middleware)
	hooks.Use(BodyLimit(cfg.GetMaxContentLength()))
	hooks.HandleFunc("/extract-text", webhook.ExtractText).Methods(http.MethodPost)
	hooks.HandleFunc("/extract-images", webhook.ExtractImages).Methods(http.MethodPost)
	hooks.HandleFunc("/pdf-info", webhook.DocumentInfo).Methods(http.MethodPost)

	// Configure CORS
	origins := cfg.GetCORSAllowedOrigins()
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			RequestIDHeader,
		},
		ExposedHeaders: []string{
			RequestIDHeader,
		},
		AllowCredentials: !allowsAnyOrigin(origins),
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	var h http.Handler = c.Handler(router)
	h = NewRecoverer(logger).Middleware(h)
	h = NewRequestLogger(logger).Middleware(h)
	return RequestID(h)
}

// withFallbacks installs the JSON 404 and 405 handlers. gorilla/mux consults
// the handlers of the deepest matching subrouter, so each one needs its own.
func withFallbacks(r *mux.Router) {
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeAppError(w, apperrors.NewNotFoundError(MsgNotFound))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeAppError(w, apperrors.NewMethodNotAllowedError(MsgMethodNotAllowed))
	})
}

func allowsAnyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

package handler

import (
	"net/http"
	"strings"

	"pdf-webhook/internal/domain"
)

type healthConfig struct {
	MaxContentLength  int64    `json:"max_content_length"`
	AllowedExtensions []string `json:"allowed_extensions"`
	UploadFolder      string   `json:"upload_folder"`
	LogLevel          string   `json:"log_level"`
}

type healthResponse struct {
	Status  string       `json:"status"`
	Service string       `json:"service"`
	Config  healthConfig `json:"config"`
}

// HealthHandler reports liveness and the effective configuration
type HealthHandler struct {
	cfg domain.Config
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(cfg domain.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	extensions := h.cfg.GetAllowedExtensions()
	if extensions == nil {
		extensions = []string{}
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: h.cfg.GetServiceName(),
		Config: healthConfig{
			MaxContentLength:  h.cfg.GetMaxContentLength(),
			AllowedExtensions: extensions,
			UploadFolder:      h.cfg.GetUploadPath(),
			LogLevel:          strings.ToUpper(h.cfg.GetLogLevel()),
		},
	})
}

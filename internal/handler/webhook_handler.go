package handler

import (
	"context"
	"net/http"

	"pdf-webhook/internal/domain"
	apperrors "pdf-webhook/pkg/errors"
)

// PDFOperations is the pipeline behind the webhook endpoints
type PDFOperations interface {
	ExtractText(ctx context.Context, sub *domain.RawSubmission) (*domain.TextResult, error)
	ExtractImages(ctx context.Context, sub *domain.RawSubmission) (*domain.ImagesResult, error)
	DocumentInfo(ctx context.Context, sub *domain.RawSubmission) (*domain.InfoResult, error)
}

// WebhookHandler handles the PDF webhook endpoints
type WebhookHandler struct {
	submissions *SubmissionReader
	pdfService  PDFOperations
	logger      domain.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(submissions *SubmissionReader, pdfService PDFOperations, logger domain.Logger) *WebhookHandler {
	return &WebhookHandler{
		submissions: submissions,
		pdfService:  pdfService,
		logger:      logger,
	}
}

// ExtractText handles POST /webhook/extract-text
func (h *WebhookHandler) ExtractText(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.read(w, r, "extract-text")
	if !ok {
		return
	}

	result, err := h.pdfService.ExtractText(r.Context(), sub)
	if err != nil {
		h.fail(w, r, "extract-text", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ExtractImages handles POST /webhook/extract-images
func (h *WebhookHandler) ExtractImages(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.read(w, r, "extract-images")
	if !ok {
		return
	}

	result, err := h.pdfService.ExtractImages(r.Context(), sub)
	if err != nil {
		h.fail(w, r, "extract-images", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DocumentInfo handles POST /webhook/pdf-info
func (h *WebhookHandler) DocumentInfo(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.read(w, r, "pdf-info")
	if !ok {
		return
	}

	result, err := h.pdfService.DocumentInfo(r.Context(), sub)
	if err != nil {
		h.fail(w, r, "pdf-info", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *WebhookHandler) read(w http.ResponseWriter, r *http.Request, op string) (*domain.RawSubmission, bool) {
	sub, err := h.submissions.Read(r)
	if err != nil {
		h.fail(w, r, op, err)
		return nil, false
	}
	h.logger.Debug("PDF submission received", "operation", op, "source", sub.Source, "size", len(sub.Data), "has_password", sub.HasPassword())
	return sub, true
}

func (h *WebhookHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	requestID, _ := GetRequestIDFromContext(r.Context())
	status := apperrors.GetStatusCode(err)
	switch {
	case status >= http.StatusInternalServerError:
		h.logger.Error("PDF request failed", err, "operation", op, "request_id", requestID)
	case apperrors.IsType(err, apperrors.ErrorTypeUnauthorized):
		h.logger.Info("PDF password rejected", "operation", op, "error", err.Error(), "request_id", requestID)
	default:
		h.logger.Warn("PDF request rejected", "operation", op, "status", status, "error", err.Error(), "request_id", requestID)
	}
	writeAppError(w, err)
}

package service

import (
	"context"
	"fmt"
	"runtime/debug"

	"pdf-webhook/internal/domain"
	apperrors "pdf-webhook/pkg/errors"
)

// Client-facing messages for gate rejections
const (
	MsgInvalidPDF        = "Invalid or corrupted PDF file"
	MsgPasswordRequired  = "PDF is password-protected and no password was provided"
	MsgPasswordIncorrect = "Incorrect password for password-protected PDF"
	MsgNoPages           = "PDF has no pages or is corrupted"
)

// Prefixes for internal failures raised while an operation runs
const (
	prefixText   = "Error processing PDF"
	prefixImages = "Error extracting images"
	prefixInfo   = "Error getting PDF info"
)

// PDFService runs a submission through the gate and one extraction
// operation, and owns the document for the length of the request.
type PDFService struct {
	gate      *DocumentGate
	extractor *PDFExtractor
	logger    domain.Logger
}

// NewPDFService creates a new PDF service instance
func NewPDFService(gate *DocumentGate, extractor *PDFExtractor, logger domain.Logger) *PDFService {
	return &PDFService{
		gate:      gate,
		extractor: extractor,
		logger:    logger,
	}
}

// ExtractText returns per-page text and the joined full text
func (s *PDFService) ExtractText(ctx context.Context, sub *domain.RawSubmission) (*domain.TextResult, error) {
	var result *domain.TextResult
	err := s.withDocument(sub, prefixText, func(doc domain.PDFDocument) error {
		var err error
		result, err = s.extractor.ExtractText(ctx, doc)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("PDF text extracted", "pages", result.Pages, "source", sub.Source)
	return result, nil
}

// ExtractImages returns gray and RGB images as base64 PNG
func (s *PDFService) ExtractImages(ctx context.Context, sub *domain.RawSubmission) (*domain.ImagesResult, error) {
	var result *domain.ImagesResult
	err := s.withDocument(sub, prefixImages, func(doc domain.PDFDocument) error {
		var err error
		result, err = s.extractor.ExtractImages(ctx, doc)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("PDF images extracted", "images_found", result.ImagesFound, "source", sub.Source)
	return result, nil
}

// DocumentInfo returns metadata, page count and image count
func (s *PDFService) DocumentInfo(ctx context.Context, sub *domain.RawSubmission) (*domain.InfoResult, error) {
	var result *domain.InfoResult
	err := s.withDocument(sub, prefixInfo, func(doc domain.PDFDocument) error {
		var err error
		result, err = s.extractor.DocumentInfo(ctx, doc)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("PDF info collected", "pages", result.Info.Pages, "total_images", result.Info.TotalImages, "source", sub.Source)
	return result, nil
}

// withDocument opens the submission, runs op on the accepted document and
// closes it on every path.
func (s *PDFService) withDocument(sub *domain.RawSubmission, prefix string, op func(domain.PDFDocument) error) (err error) {
	outcome := s.gate.Open(sub)
	if !outcome.Opened() {
		s.logger.Debug("PDF rejected", "reason", outcome.Failure.String(), "source", sub.Source)
		return rejectionError(outcome)
	}

	doc := outcome.Document
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			s.logger.Warn("Failed to close PDF", "error", cerr)
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("PDF operation panicked", fmt.Errorf("%v", r), "stack", string(debug.Stack()))
			err = apperrors.NewInternalError(fmt.Sprintf("%s: %v", prefix, r), fmt.Errorf("panic: %v", r))
		}
	}()

	if err := op(doc); err != nil {
		return apperrors.NewInternalError(prefix+": "+err.Error(), err)
	}
	return nil
}

func rejectionError(outcome domain.AuthOutcome) error {
	switch outcome.Failure {
	case domain.PasswordRequired:
		return apperrors.NewUnauthorizedError(MsgPasswordRequired).WithCause(outcome.Cause)
	case domain.PasswordIncorrect:
		return apperrors.NewUnauthorizedError(MsgPasswordIncorrect).WithCause(outcome.Cause)
	case domain.EmptyOrCorrupt:
		return apperrors.NewValidationError(MsgNoPages).WithCause(outcome.Cause)
	default:
		return apperrors.NewValidationError(MsgInvalidPDF).WithCause(outcome.Cause)
	}
}

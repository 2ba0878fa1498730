package service

import (
	"errors"
	"fmt"

	"pdf-webhook/internal/domain"
)

// DocumentGate opens, authenticates and validates submitted documents. It is
// the only place a PDFDocument is created.
type DocumentGate struct {
	engine domain.PDFEngine
	logger domain.Logger
}

// NewDocumentGate creates a new document gate
func NewDocumentGate(engine domain.PDFEngine, logger domain.Logger) *DocumentGate {
	return &DocumentGate{
		engine: engine,
		logger: logger,
	}
}

// Open runs decode, authenticate and validate in that order. A rejected
// outcome never carries a document; the gate closes it before returning.
func (g *DocumentGate) Open(sub *domain.RawSubmission) (outcome domain.AuthOutcome) {
	doc, err := g.decode(sub.Data)
	if err != nil {
		g.logger.Debug("PDF decode failed", "source", sub.Source, "size", len(sub.Data), "error", err)
		return domain.Reject(domain.MalformedDocument, err)
	}

	defer func() {
		if r := recover(); r != nil {
			g.release(doc)
			outcome = domain.Reject(domain.MalformedDocument, fmt.Errorf("%w: %v", domain.ErrMalformedPDF, r))
		}
	}()

	if doc.NeedsPassword() {
		if !sub.HasPassword() {
			g.release(doc)
			return domain.Reject(domain.PasswordRequired, domain.ErrorForFailure(domain.PasswordRequired))
		}
		ok, err := doc.Authenticate(sub.Password)
		if err != nil {
			g.release(doc)
			g.logger.Debug("PDF authentication failed", "source", sub.Source, "error", err)
			return domain.Reject(domain.MalformedDocument, err)
		}
		if !ok {
			g.release(doc)
			return domain.Reject(domain.PasswordIncorrect, domain.ErrorForFailure(domain.PasswordIncorrect))
		}
	}

	if doc.PageCount() == 0 {
		g.release(doc)
		return domain.Reject(domain.EmptyOrCorrupt, domain.ErrorForFailure(domain.EmptyOrCorrupt))
	}

	return domain.Accept(doc)
}

func (g *DocumentGate) decode(data []byte) (doc domain.PDFDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("%w: %v", domain.ErrMalformedPDF, r)
		}
	}()

	doc, err = g.engine.Open(data)
	if errors.Is(err, domain.ErrMalformedPDF) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPDF, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: engine returned no document", domain.ErrMalformedPDF)
	}
	return doc, nil
}

func (g *DocumentGate) release(doc domain.PDFDocument) {
	if err := doc.Close(); err != nil {
		g.logger.Warn("Failed to close rejected PDF", "error", err)
	}
}

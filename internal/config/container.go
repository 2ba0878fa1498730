package config

import (
	"fmt"
	"os"

	"pdf-webhook/internal/domain"
	"pdf-webhook/internal/engine"
	"pdf-webhook/internal/service"
	"pdf-webhook/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config       domain.Config
	Logger       domain.Logger
	Engine       domain.PDFEngine
	DocumentGate *service.DocumentGate
	Extractor    *service.PDFExtractor
	PDFService   *service.PDFService
}

// NewContainer wires the application from cfg and prepares the upload folder
func NewContainer(cfg domain.Config) (*Container, error) {
	return NewContainerWithLogger(cfg, logger.NewLogger(cfg.GetLogLevel(), cfg.GetLogFormat()))
}

// NewContainerWithLogger is NewContainer with a caller supplied logger
func NewContainerWithLogger(cfg domain.Config, appLogger domain.Logger) (*Container, error) {
	if err := os.MkdirAll(cfg.GetUploadPath(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload folder %s: %w", cfg.GetUploadPath(), err)
	}

	pdfEngine := engine.New(cfg.GetTextEngine())
	gate := service.NewDocumentGate(pdfEngine, appLogger)
	extractor := service.NewPDFExtractor(appLogger)

	return &Container{
		Config:       cfg,
		Logger:       appLogger,
		Engine:       pdfEngine,
		DocumentGate: gate,
		Extractor:    extractor,
		PDFService:   service.NewPDFService(gate, extractor, appLogger),
	}, nil
}

// Close flushes buffered log entries
func (c *Container) Close() {
	if s, ok := c.Logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}

package domain

import "image"

// PDFEngine decodes raw bytes into a PDFDocument
type PDFEngine interface {
	Open(data []byte) (PDFDocument, error)
}

// PDFDocument is an opened document. It is owned by a single request and
// must be closed by it.
type PDFDocument interface {
	NeedsPassword() bool
	// Authenticate reports false for a wrong password and an error when the
	// document cannot be read with any password.
	Authenticate(password string) (bool, error)
	PageCount() int
	PageText(index int) (string, error)
	PageImages(index int) ([]ImageRef, error)
	RenderImage(ref ImageRef) (image.Image, error)
	Metadata() map[string]string
	Close() error
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetUploadPath() string
	GetMaxContentLength() int64
	GetLogLevel() string
	GetLogFormat() string
	GetAllowedExtensions() []string
	GetBasePath() string
	GetServiceName() string
	GetTextEngine() string
	GetCORSAllowedOrigins() []string
	GetRateLimit() float64
	GetRateBurst() int
}

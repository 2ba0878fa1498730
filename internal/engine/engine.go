// Package engine implements domain.PDFEngine on top of MuPDF (go-fitz) for
// decoding, text and metadata, and pdfcpu for password authentication,
// decryption and embedded image extraction.
package engine

import (
	"errors"
	"fmt"
	"sync"

	"pdf-webhook/internal/domain"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Text engines selectable through configuration.
const (
	TextEngineMuPDF = "mupdf"
	TextEnginePlain = "plain"
)

var disableConfigDir sync.Once

// MuPDF entry points, swapped in tests to count handles.
var (
	fitzOpen  = fitz.NewFromMemory
	fitzClose = (*fitz.Document).Close
)

// Engine opens PDF documents from memory
type Engine struct {
	textEngine string
}

// New creates an engine. textEngine selects the page text source; unknown
// values fall back to MuPDF.
func New(textEngine string) *Engine {
	// pdfcpu otherwise creates a config dir under the user's home on first use.
	disableConfigDir.Do(api.DisableConfigDir)

	if textEngine != TextEnginePlain {
		textEngine = TextEngineMuPDF
	}
	return &Engine{textEngine: textEngine}
}

// TextEngine returns the configured text source
func (e *Engine) TextEngine() string {
	return e.textEngine
}

// Open decodes data. Documents protected by a user password open in a locked
// state and report NeedsPassword until Authenticate succeeds.
func (e *Engine) Open(data []byte) (domain.PDFDocument, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", domain.ErrMalformedPDF)
	}

	doc := &Document{
		data:       data,
		textEngine: e.textEngine,
	}

	fz, err := fitzOpen(data)
	if errors.Is(err, fitz.ErrNeedsPassword) {
		closeFitz(fz, err)
		doc.locked = true
		doc.encrypted = true
		return doc, nil
	}
	if err != nil {
		closeFitz(fz, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPDF, err)
	}

	doc.mupdf = fz
	doc.clear = data
	return doc, nil
}

// openFitz opens data with MuPDF and only returns a handle when it is usable.
func openFitz(data []byte) (*fitz.Document, error) {
	fz, err := fitzOpen(data)
	if err != nil {
		closeFitz(fz, err)
		return nil, err
	}
	return fz, nil
}

// closeFitz releases a handle returned alongside an error. go-fitz allocates
// the MuPDF context before it fails, so the handle must still be closed.
func closeFitz(fz *fitz.Document, err error) {
	if fz == nil || errors.Is(err, fitz.ErrCreateContext) {
		return
	}
	_ = fitzClose(fz)
}

package engine

import (
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"pdf-webhook/internal/domain"

	"github.com/gen2brain/go-fitz"
	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Document is a single opened PDF. It is not safe for concurrent use.
type Document struct {
	data       []byte // bytes as submitted
	clear      []byte // unencrypted bytes, nil until known
	password   string
	locked     bool
	encrypted  bool
	textEngine string

	mupdf *fitz.Document
	plain *lpdf.Reader
	ctx   *model.Context

	payloads map[int]map[int]imagePayload // page -> object number -> payload
}

var metadataKeys = []string{
	domain.MetaTitle,
	domain.MetaAuthor,
	domain.MetaSubject,
	domain.MetaCreator,
	domain.MetaProducer,
	domain.MetaCreationDate,
	domain.MetaModDate,
}

type imagePayload struct {
	fileType string
	data     []byte
}

// NeedsPassword reports whether the document is still locked
func (d *Document) NeedsPassword() bool {
	return d.locked
}

// Authenticate unlocks the document with password. pdfcpu validates the
// password; MuPDF is then reopened on the decrypted bytes when pdfcpu is able
// to produce them. A read failure other than a wrong password is returned as
// an error.
func (d *Document) Authenticate(password string) (bool, error) {
	if !d.locked {
		return true, nil
	}

	ctx, err := readStructure(d.data, password)
	if errors.Is(err, pdfcpu.ErrWrongPassword) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrMalformedPDF, err)
	}
	d.ctx = ctx
	d.password = password
	d.locked = false

	clear, err := decrypt(d.data, password)
	if err != nil {
		return true, nil
	}
	if fz, err := openFitz(clear); err == nil {
		d.mupdf = fz
		d.clear = clear
	}
	return true, nil
}

// PageCount returns the number of pages, or 0 while locked
func (d *Document) PageCount() int {
	switch {
	case d.locked:
		return 0
	case d.mupdf != nil:
		return d.mupdf.NumPage()
	case d.ctx != nil:
		return d.ctx.PageCount
	default:
		return 0
	}
}

// PageText returns the raw text of the page at index (0-based)
func (d *Document) PageText(index int) (string, error) {
	if err := d.checkPage(index); err != nil {
		return "", err
	}
	if d.textEngine == TextEngineMuPDF && d.mupdf != nil {
		return d.mupdf.Text(index)
	}
	return d.plainText(index)
}

// PageImages lists the images referenced by the page at index, ordered by
// object number.
func (d *Document) PageImages(index int) ([]domain.ImageRef, error) {
	if err := d.checkPage(index); err != nil {
		return nil, err
	}
	ctx, err := d.structure()
	if err != nil {
		return nil, err
	}

	var imgs map[int]model.Image
	err = guard("pdfcpu list images", func() error {
		var err error
		imgs, err = pdfcpu.ExtractPageImages(ctx, index+1, true)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list images on page %d: %w", index+1, err)
	}
	return imageRefs(index, imgs), nil
}

// RenderImage decodes the referenced image into pixels
func (d *Document) RenderImage(ref domain.ImageRef) (image.Image, error) {
	payloads, err := d.pagePayloads(ref.Page)
	if err != nil {
		return nil, err
	}
	p, ok := payloads[ref.ObjectNumber]
	if !ok {
		return nil, fmt.Errorf("image object %d not found on page %d", ref.ObjectNumber, ref.Page+1)
	}
	return decodeRaster(p.data, p.fileType)
}

// Metadata returns the document information dictionary using MuPDF's key
// names. pdfcpu reads it from the submitted bytes, so encrypted documents are
// not described by their decrypted copy. MuPDF is the fallback for documents
// pdfcpu cannot parse.
func (d *Document) Metadata() map[string]string {
	if ctx, err := d.structure(); err == nil {
		return structureMetadata(ctx)
	}
	meta := make(map[string]string, len(metadataKeys))
	if d.mupdf == nil || d.encrypted {
		return meta
	}
	raw := d.mupdf.Metadata()
	for _, key := range metadataKeys {
		meta[key] = trimNUL(raw[key])
	}
	return meta
}

// Close releases the MuPDF handle and drops parsed state. Safe to call twice.
func (d *Document) Close() error {
	var err error
	if d.mupdf != nil {
		err = fitzClose(d.mupdf)
		d.mupdf = nil
	}
	d.plain = nil
	d.ctx = nil
	d.payloads = nil
	d.clear = nil
	return err
}

func (d *Document) checkPage(index int) error {
	if d.locked {
		return domain.ErrPasswordRequired
	}
	if index < 0 || index >= d.PageCount() {
		return fmt.Errorf("%w: %d", domain.ErrPageOutOfRange, index)
	}
	return nil
}

// structure lazily parses the document with pdfcpu
func (d *Document) structure() (*model.Context, error) {
	if d.ctx != nil {
		return d.ctx, nil
	}
	ctx, err := readStructure(d.data, d.password)
	if err != nil {
		return nil, err
	}
	d.ctx = ctx
	return ctx, nil
}

func (d *Document) pagePayloads(index int) (map[int]imagePayload, error) {
	if p, ok := d.payloads[index]; ok {
		return p, nil
	}
	if err := d.checkPage(index); err != nil {
		return nil, err
	}
	ctx, err := d.structure()
	if err != nil {
		return nil, err
	}

	var imgs map[int]model.Image
	err = guard("pdfcpu extract images", func() error {
		var err error
		imgs, err = pdfcpu.ExtractPageImages(ctx, index+1, false)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("extract images on page %d: %w", index+1, err)
	}

	payloads := make(map[int]imagePayload, len(imgs))
	for objNr, img := range imgs {
		if img.Reader == nil {
			continue
		}
		data, err := io.ReadAll(img)
		if err != nil {
			return nil, fmt.Errorf("read image object %d: %w", objNr, err)
		}
		payloads[objNr] = imagePayload{fileType: img.FileType, data: data}
	}

	if d.payloads == nil {
		d.payloads = make(map[int]map[int]imagePayload)
	}
	d.payloads[index] = payloads
	return payloads, nil
}

// trimNUL cuts a fixed size C buffer at its terminator
func trimNUL(s string) string {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return s[:i]
	}
	return s
}

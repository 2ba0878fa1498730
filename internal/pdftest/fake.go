package pdftest

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"pdf-webhook/internal/domain"
)

// FakeImage is an image on a FakePage
type FakeImage struct {
	Components int
	Err        error // returned by RenderImage
}

// FakePage is a page of a FakeDocument
type FakePage struct {
	Text    string
	TextErr error
	Images  []FakeImage
	Panic   bool // PageText panics
}

// FakeDocument implements domain.PDFDocument in memory
type FakeDocument struct {
	Password string // non-empty means the document is locked
	Pages    []FakePage
	Meta     map[string]string
	AuthErr  error // returned by Authenticate while locked

	unlocked bool
	Closed   int
}

// PageCount returns len(Pages), or 0 while locked
func (d *FakeDocument) PageCount() int {
	if d.NeedsPassword() {
		return 0
	}
	return len(d.Pages)
}

func (d *FakeDocument) NeedsPassword() bool {
	return d.Password != "" && !d.unlocked
}

func (d *FakeDocument) Authenticate(password string) (bool, error) {
	if !d.NeedsPassword() {
		return true, nil
	}
	if d.AuthErr != nil {
		return false, d.AuthErr
	}
	if password == d.Password {
		d.unlocked = true
		return true, nil
	}
	return false, nil
}

func (d *FakeDocument) PageText(index int) (string, error) {
	page, err := d.page(index)
	if err != nil {
		return "", err
	}
	if page.Panic {
		panic("fake decoder crashed")
	}
	return page.Text, page.TextErr
}

func (d *FakeDocument) PageImages(index int) ([]domain.ImageRef, error) {
	page, err := d.page(index)
	if err != nil {
		return nil, err
	}
	refs := make([]domain.ImageRef, len(page.Images))
	for i, img := range page.Images {
		refs[i] = domain.ImageRef{Page: index, Index: i, ObjectNumber: 100*index + i, Components: img.Components, Width: 2, Height: 2, Format: "png"}
	}
	return refs, nil
}

// RenderImage returns a 2x2 image whose pixels encode the reference
func (d *FakeDocument) RenderImage(ref domain.ImageRef) (image.Image, error) {
	page, err := d.page(ref.Page)
	if err != nil {
		return nil, err
	}
	if ref.Index >= len(page.Images) {
		return nil, errors.New("no such image")
	}
	if err := page.Images[ref.Index].Err; err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: uint8(ref.Page), G: uint8(ref.Index), B: 200, A: 255})
	return img, nil
}

func (d *FakeDocument) Metadata() map[string]string {
	return d.Meta
}

func (d *FakeDocument) Close() error {
	d.Closed++
	return nil
}

func (d *FakeDocument) page(index int) (*FakePage, error) {
	if d.NeedsPassword() {
		return nil, domain.ErrPasswordRequired
	}
	if index < 0 || index >= len(d.Pages) {
		return nil, fmt.Errorf("%w: %d", domain.ErrPageOutOfRange, index)
	}
	return &d.Pages[index], nil
}

// FakeEngine opens a fresh copy of Doc on every call and records it
type FakeEngine struct {
	Doc    *FakeDocument
	Err    error
	Opened []*FakeDocument
}

func (e *FakeEngine) Open(data []byte) (domain.PDFDocument, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	doc := *e.Doc
	doc.unlocked = false
	doc.Closed = 0
	e.Opened = append(e.Opened, &doc)
	return &doc, nil
}

// AllClosed reports whether every opened document was closed exactly once
func (e *FakeEngine) AllClosed() bool {
	for _, d := range e.Opened {
		if d.Closed != 1 {
			return false
		}
	}
	return true
}

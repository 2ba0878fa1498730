// Package pdftest builds small PDF documents in memory for tests.
package pdftest

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Image is a solid-pattern image XObject drawn on a page
type Image struct {
	Width      int
	Height     int
	ColorSpace string // DeviceRGB, DeviceGray or DeviceCMYK
}

// Page describes one page. Lines of Text are drawn top to bottom.
type Page struct {
	Text   string
	Images []Image
}

// Document describes a whole file
type Document struct {
	Title   string
	Author  string
	Subject string
	Pages   []Page
}

// Build serializes doc as a PDF 1.7 file with a valid cross-reference table.
func Build(doc Document) []byte {
	w := &writer{}
	w.buf.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")

	// Fixed object numbers: 1 catalog, 2 page tree, 3 font, 4 info.
	next := 5
	pageObjs := make([]int, len(doc.Pages))
	for i := range doc.Pages {
		pageObjs[i] = next
		next += 2 + len(doc.Pages[i].Images) // page, contents, images
	}

	w.object(1, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, len(pageObjs))
	for i, nr := range pageObjs {
		kids[i] = fmt.Sprintf("%d 0 R", nr)
	}
	w.object(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pageObjs)))
	w.object(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	w.object(4, fmt.Sprintf("<< /Title (%s) /Author (%s) /Subject (%s) /Creator (pdftest) /Producer (pdftest) /CreationDate (D:20240101120000Z) /ModDate (D:20240102120000Z) >>",
		escape(doc.Title), escape(doc.Author), escape(doc.Subject)))

	for i, page := range doc.Pages {
		pageNr := pageObjs[i]
		contentsNr := pageNr + 1

		var xobjects, content strings.Builder
		for j := range page.Images {
			imgNr := contentsNr + 1 + j
			fmt.Fprintf(&xobjects, " /Im%d %d 0 R", j, imgNr)
			fmt.Fprintf(&content, "q 100 0 0 100 %d 100 cm /Im%d Do Q\n", 72+j*120, j)
		}
		if page.Text != "" {
			content.WriteString("BT /F1 18 Tf 72 720 Td 22 TL\n")
			for _, line := range strings.Split(page.Text, "\n") {
				fmt.Fprintf(&content, "(%s) Tj T*\n", escape(line))
			}
			content.WriteString("ET\n")
		}

		resources := "/Font << /F1 3 0 R >>"
		if xobjects.Len() > 0 {
			resources += " /XObject <<" + xobjects.String() + " >>"
		}
		w.object(pageNr, fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << %s >> /Contents %d 0 R >>",
			resources, contentsNr))
		w.stream(contentsNr, "", []byte(content.String()))

		for j, img := range page.Images {
			w.stream(contentsNr+1+j, imageDict(img), deflate(pixels(img)))
		}
	}

	w.finish(next, "<< /Size %d /Root 1 0 R /Info 4 0 R /ID [<0123456789ABCDEF0123456789ABCDEF> <0123456789ABCDEF0123456789ABCDEF>] >>")
	return w.buf.Bytes()
}

// Pages returns n pages whose text is "Page <i>" (1-based).
func Pages(n int) []Page {
	pages := make([]Page, n)
	for i := range pages {
		pages[i] = Page{Text: fmt.Sprintf("Page %d", i+1)}
	}
	return pages
}

// Encrypt protects data with AES-256, using password as both the user and
// the owner password.
func Encrypt(data []byte, password string) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password
	conf.EncryptUsingAES = true
	conf.EncryptKeyLength = 256

	var out bytes.Buffer
	if err := api.Encrypt(bytes.NewReader(data), &out, conf); err != nil {
		return nil, fmt.Errorf("encrypt fixture: %w", err)
	}
	return out.Bytes(), nil
}

type writer struct {
	buf     bytes.Buffer
	offsets map[int]int
}

func (w *writer) object(nr int, body string) {
	w.mark(nr)
	fmt.Fprintf(&w.buf, "%d 0 obj\n%s\nendobj\n", nr, body)
}

func (w *writer) stream(nr int, dict string, data []byte) {
	w.mark(nr)
	fmt.Fprintf(&w.buf, "%d 0 obj\n<< %s /Length %d >>\nstream\n", nr, dict, len(data))
	w.buf.Write(data)
	w.buf.WriteString("\nendstream\nendobj\n")
}

func (w *writer) mark(nr int) {
	if w.offsets == nil {
		w.offsets = make(map[int]int)
	}
	w.offsets[nr] = w.buf.Len()
}

func (w *writer) finish(size int, trailer string) {
	xref := w.buf.Len()
	fmt.Fprintf(&w.buf, "xref\n0 %d\n", size)
	w.buf.WriteString("0000000000 65535 f\r\n")
	for nr := 1; nr < size; nr++ {
		fmt.Fprintf(&w.buf, "%010d 00000 n\r\n", w.offsets[nr])
	}
	fmt.Fprintf(&w.buf, "trailer\n"+trailer+"\nstartxref\n%d\n%%%%EOF\n", size, xref)
}

func components(colorSpace string) int {
	switch colorSpace {
	case "DeviceGray":
		return 1
	case "DeviceCMYK":
		return 4
	default:
		return 3
	}
}

func imageDict(img Image) string {
	cs := img.ColorSpace
	if cs == "" {
		cs = "DeviceRGB"
	}
	return fmt.Sprintf("/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /%s /BitsPerComponent 8 /Filter /FlateDecode",
		img.Width, img.Height, cs)
}

// pixels produces a deterministic gradient so fixtures are reproducible.
func pixels(img Image) []byte {
	n := components(img.ColorSpace)
	data := make([]byte, 0, img.Width*img.Height*n)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			for c := 0; c < n; c++ {
				data = append(data, byte((x*31+y*17+c*53)%256))
			}
		}
	}
	return data
}

func deflate(data []byte) []byte {
	var out bytes.Buffer
	zw := zlib.NewWriter(&out)
	_, _ = zw.Write(data)
	_ = zw.Close()
	return out.Bytes()
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

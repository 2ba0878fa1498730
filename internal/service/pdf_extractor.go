package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"pdf-webhook/internal/domain"
)

// pageSeparator joins page texts into full_text
const pageSeparator = "\n\n"

// maxColorComponents is the first component count that is skipped (CMYK and up)
const maxColorComponents = 4

// PDFExtractor runs the extraction operations over an authenticated document.
// It never opens or closes documents.
type PDFExtractor struct {
	logger domain.Logger
}

// NewPDFExtractor creates a new PDF extractor
func NewPDFExtractor(logger domain.Logger) *PDFExtractor {
	return &PDFExtractor{
		logger: logger,
	}
}

// ExtractText returns the trimmed text of every page in document order.
// Empty pages are kept as empty strings.
func (p *PDFExtractor) ExtractText(ctx context.Context, doc domain.PDFDocument) (*domain.TextResult, error) {
	numPages := doc.PageCount()
	content := make([]domain.TextPage, 0, numPages)
	texts := make([]string, 0, numPages)

	for pageNum := 0; pageNum < numPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.logger.Debug("PDF processing page", "page", pageNum+1, "total", numPages)

		text, err := doc.PageText(pageNum)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", pageNum+1, err)
		}
		text = strings.TrimSpace(text)

		content = append(content, domain.TextPage{
			Page: pageNum + 1, // 1-indexed for clients
			Text: text,
		})
		texts = append(texts, text)
	}

	return &domain.TextResult{
		Success:  true,
		Pages:    len(content),
		Content:  content,
		FullText: strings.Join(texts, pageSeparator),
	}, nil
}

// ExtractImages re-encodes every gray or RGB image as base64 PNG, in
// (page, image_index) order. CMYK images and encodings the engine cannot
// rasterize are skipped.
func (p *PDFExtractor) ExtractImages(ctx context.Context, doc domain.PDFDocument) (*domain.ImagesResult, error) {
	numPages := doc.PageCount()
	images := make([]domain.ExtractedImage, 0)

	for pageNum := 0; pageNum < numPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		refs, err := doc.PageImages(pageNum)
		if err != nil {
			return nil, fmt.Errorf("failed to list images on page %d: %w", pageNum+1, err)
		}

		for _, ref := range refs {
			if ref.Components >= maxColorComponents {
				p.logger.Debug("Skipping image with unsupported color space",
					"page", pageNum+1, "image_index", ref.Index, "components", ref.Components,
					"width", ref.Width, "height", ref.Height)
				continue
			}

			img, err := doc.RenderImage(ref)
			if errors.Is(err, domain.ErrUnsupportedImage) {
				p.logger.Warn("Skipping image the engine cannot rasterize",
					"page", pageNum+1, "image_index", ref.Index, "format", ref.Format,
					"width", ref.Width, "height", ref.Height, "error", err)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to render image %d on page %d: %w", ref.Index, pageNum+1, err)
			}

			encoded, err := encodePNG(img)
			if err != nil {
				return nil, fmt.Errorf("failed to encode image %d on page %d: %w", ref.Index, pageNum+1, err)
			}

			images = append(images, domain.ExtractedImage{
				Page:       pageNum + 1,
				ImageIndex: ref.Index,
				Format:     "png",
				Base64:     base64.StdEncoding.EncodeToString(encoded),
			})
		}
	}

	return &domain.ImagesResult{
		Success:     true,
		ImagesFound: len(images),
		Images:      images,
	}, nil
}

// DocumentInfo collects metadata, the page count and the number of images
// referenced across all pages.
func (p *PDFExtractor) DocumentInfo(ctx context.Context, doc domain.PDFDocument) (*domain.InfoResult, error) {
	numPages := doc.PageCount()

	totalImages := 0
	for pageNum := 0; pageNum < numPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		refs, err := doc.PageImages(pageNum)
		if err != nil {
			return nil, fmt.Errorf("failed to count images on page %d: %w", pageNum+1, err)
		}
		totalImages += len(refs)
	}

	// Reads on a nil map yield "", so missing fields become empty strings.
	meta := doc.Metadata()

	return &domain.InfoResult{
		Success: true,
		Info: domain.DocumentInfo{
			Pages:            numPages,
			Title:            meta[domain.MetaTitle],
			Author:           meta[domain.MetaAuthor],
			Subject:          meta[domain.MetaSubject],
			Creator:          meta[domain.MetaCreator],
			Producer:         meta[domain.MetaProducer],
			CreationDate:     meta[domain.MetaCreationDate],
			ModificationDate: meta[domain.MetaModDate],
			TotalImages:      totalImages,
		},
	}, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

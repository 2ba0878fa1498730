package engine

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"pdf-webhook/internal/domain"

	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// decodeRaster turns an extracted image payload into pixels. pdfcpu emits
// png for flate/raw streams, jpg for DCT, tif for CMYK and CCITT data.
func decodeRaster(data []byte, fileType string) (image.Image, error) {
	r := bytes.NewReader(data)

	switch strings.ToLower(fileType) {
	case "tif", "tiff":
		img, err := tiff.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("decode tiff: %w", err)
		}
		return img, nil
	case "webp":
		img, err := webp.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("decode webp: %w", err)
		}
		return img, nil
	case "jpx", "jp2", "jb2", "jbig2":
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedImage, fileType)
	}

	img, _, err := image.Decode(r)
	if errors.Is(err, image.ErrFormat) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedImage, fileType)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", fileType, err)
	}
	return img, nil
}

// Package source loads the still images a render works from: plain image
// files, rasterized PDF pages and generated end-cards.
package source

import (
	"errors"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// ErrNotFound marks a missing or unreadable source asset. It is fatal for
// the whole render and is never retried.
var ErrNotFound = errors.New("source: not found")

// RasterizePDF renders every page of a PDF at the given DPI. Each page
// becomes one still image, in document order.
func RasterizePDF(path string, dpi int) ([]image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, path, err)
	}
	defer doc.Close()

	pages := make([]image.Image, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		img, err := doc.ImageDPI(i, float64(dpi))
		if err != nil {
			return nil, fmt.Errorf("страница %d: %w", i+1, err)
		}
		pages = append(pages, img)
	}
	return pages, nil
}

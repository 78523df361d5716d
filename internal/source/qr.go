package source

import (
	"fmt"
	"image"

	qrcode "github.com/skip2/go-qrcode"
)

// QRCard generates a square QR-code card for a link, used as an optional
// end clip appended after the last image.
func QRCard(link string, size int) (image.Image, error) {
	if size <= 0 {
		size = 512
	}
	code, err := qrcode.New(link, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr-код для %q: %w", link, err)
	}
	return code.Image(size), nil
}

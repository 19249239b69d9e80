// Package notify delivers newly issued bearer tokens to account owners.
package notify

import (
	"github.com/skip2/go-qrcode"
)

// QREncoder renders content as an image.
type QREncoder interface {
	Encode(content string) ([]byte, error)
}

// PNGEncoder renders square QR code PNGs of a fixed size.
type PNGEncoder struct {
	size  int
	level qrcode.RecoveryLevel
}

func NewPNGEncoder(size int) *PNGEncoder {
	return &PNGEncoder{size: size, level: qrcode.Medium}
}

func (e *PNGEncoder) Encode(content string) ([]byte, error) {
	return qrcode.Encode(content, e.level, e.size)
}

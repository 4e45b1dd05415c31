package payment

import (
	"encoding/json"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// CredentialPayload is the JSON document encoded into the pickup QR.
// Consumers decode it to verify an order at the counter.
type CredentialPayload struct {
	OrderID   string `json:"orderID"`
	StudentID string `json:"studentId"`
	Total     int64  `json:"total"`
}

// Encoder turns a credential payload into a scannable image.
type Encoder interface {
	Encode(p CredentialPayload) ([]byte, error)
}

// QREncoder renders credential payloads as PNG QR codes.
type QREncoder struct {
	size int
}

// NewQREncoder creates a QR encoder producing size x size pixel images.
func NewQREncoder(size int) *QREncoder {
	if size <= 0 {
		size = 256
	}
	return &QREncoder{size: size}
}

// Encode renders the payload as a PNG QR code.
func (e *QREncoder) Encode(p CredentialPayload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode credential payload: %w", err)
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, e.size)
	if err != nil {
		return nil, fmt.Errorf("render credential qr: %w", err)
	}
	return png, nil
}

package render

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// QRGenerator encodes Wi-Fi join strings as PNG QR codes.
type QRGenerator struct {
	level      qrcode.RecoveryLevel
	moduleSize int
}

// NewQRGenerator uses low error correction and 10px modules with the
// standard 4-module quiet zone.
func NewQRGenerator() *QRGenerator {
	return &QRGenerator{level: qrcode.Low, moduleSize: 10}
}

// JoinString is the text a phone camera turns into a network join prompt.
func JoinString(ssid, code string) string {
	return fmt.Sprintf("WIFI:S:%s;T:WPA;P:%s;;", ssid, code)
}

func (g *QRGenerator) Encode(ssid, code string) ([]byte, error) {
	q, err := qrcode.New(JoinString(ssid, code), g.level)
	if err != nil {
		return nil, err
	}
	// A negative size is a fixed module size in pixels.
	return q.PNG(-g.moduleSize)
}

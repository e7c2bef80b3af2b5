// Package render provides the page surfaces the layout engine draws on and
// the QR code images placed in voucher cells.
//
// Two surfaces produce the same A4 PDF:
// - PDFDocument draws directly with gofpdf
// - ChromeDocument lays the pages out as HTML and prints them with headless Chrome
package render

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/Riboost-Studio/voucher-print/internal/layout"
	"github.com/Riboost-Studio/voucher-print/internal/model"
)

// A4 in points.
const (
	A4Width  = 595.28
	A4Height = 841.89

	fontSize = 12.0

	RendererGofpdf = "gofpdf"
	RendererChrome = "chrome"

	documentTitle = "Wi-Fi Vouchers"
)

// Document is a layout.Surface that can be serialized to PDF.
type Document interface {
	layout.Surface
	// Write serializes the document. A document can be written once.
	Write(ctx context.Context, w io.Writer) error
	PageCount() int
	Close() error
}

// NewDocument returns an empty document for the configured renderer.
func NewDocument(cfg model.PDFConfig, logger *zap.Logger) (Document, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Renderer {
	case "", RendererGofpdf:
		return NewPDFDocument(documentTitle), nil
	case RendererChrome:
		return NewChromeDocument(&ChromeConfig{
			ExecPath:  cfg.ChromePath,
			RemoteURL: cfg.ChromeRemoteURL,
			Timeout:   cfg.RenderTimeout,
			Title:     documentTitle,
			Logger:    logger,
		})
	default:
		return nil, fmt.Errorf("%w: unknown renderer %q", model.ErrConfig, cfg.Renderer)
	}
}

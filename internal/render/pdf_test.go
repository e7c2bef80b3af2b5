package render

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Riboost-Studio/voucher-print/internal/layout"
	"github.com/Riboost-Studio/voucher-print/internal/model"
)

func TestPDFDocument_PageSize(t *testing.T) {
	doc := NewPDFDocument("test")
	w, h := doc.PageSize()
	assert.InDelta(t, A4Width, w, 0.01)
	assert.InDelta(t, A4Height, h, 0.01)
}

func TestPDFDocument_Write(t *testing.T) {
	doc := NewPDFDocument("test")
	defer doc.Close()

	qr, err := NewQRGenerator().Encode("Guest", "12345")
	require.NoError(t, err)

	doc.AddPage()
	doc.Text(60, 780, "Hôtel Größe")
	doc.Rect(50, 620, 165, 130)
	require.NoError(t, doc.Image("qr-12345", 145, 630, 60, 60, qr))
	// Same name reuses the registered image.
	require.NoError(t, doc.Image("qr-12345", 300, 630, 60, 60, qr))
	doc.AddPage()

	var buf bytes.Buffer
	require.NoError(t, doc.Write(context.Background(), &buf))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Equal(t, 2, doc.PageCount())
}

func TestPDFDocument_BadImage(t *testing.T) {
	doc := NewPDFDocument("test")
	doc.AddPage()

	err := doc.Image("broken", 0, 0, 10, 10, []byte("not a png"))
	assert.Error(t, err)
}

func TestPDFDocument_WithEngine(t *testing.T) {
	cfg := layout.NewConfig(model.PDFConfig{
		Columns: 3, EnableQRCode: true, EnableNameOutput: true, SSID: "Guest", HotelName: "Hotel",
	})
	engine, err := layout.NewEngine(cfg, NewQRGenerator())
	require.NoError(t, err)

	vouchers := make([]model.Voucher, 20)
	for i := range vouchers {
		vouchers[i] = model.Voucher{Code: string(rune('A'+i)) + "0000", Duration: 1440}
	}

	doc := NewPDFDocument("test")
	result, err := engine.Render(doc, vouchers)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, doc.Write(context.Background(), &buf))

	// 5 rows of 3 per A4 page.
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, result.Pages, doc.PageCount())
}

func TestNewDocument(t *testing.T) {
	doc, err := NewDocument(model.PDFConfig{Renderer: "gofpdf"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &PDFDocument{}, doc)

	doc, err = NewDocument(model.PDFConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &PDFDocument{}, doc)

	doc, err = NewDocument(model.PDFConfig{Renderer: "chrome", ChromeRemoteURL: "ws://127.0.0.1:9222"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ChromeDocument{}, doc)

	_, err = NewDocument(model.PDFConfig{Renderer: "chrome", ChromePath: "/nonexistent/chrome"}, nil)
	assert.ErrorIs(t, err, model.ErrConfig)

	_, err = NewDocument(model.PDFConfig{Renderer: "latex"}, nil)
	assert.ErrorIs(t, err, model.ErrConfig)
}

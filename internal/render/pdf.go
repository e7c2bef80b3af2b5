package render

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/Riboost-Studio/voucher-print/internal/model"
)

// PDFDocument draws on an A4 gofpdf document. gofpdf measures y from the top
// of the page, so every call flips the bottom-left layout coordinates.
type PDFDocument struct {
	pdf       *gofpdf.Fpdf
	translate func(string) string
	images    map[string]bool
	width     float64
	height    float64
}

func NewPDFDocument(title string) *PDFDocument {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetFont("Helvetica", "", fontSize)
	pdf.SetLineWidth(1)
	pdf.SetTitle(title, true)
	pdf.SetCreator("voucher-print", true)

	width, height := pdf.GetPageSize()
	return &PDFDocument{
		pdf: pdf,
		// Core fonts are cp1252; hotel names often are not ASCII.
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
		images:    make(map[string]bool),
		width:     width,
		height:    height,
	}
}

func (d *PDFDocument) PageSize() (float64, float64) {
	return d.width, d.height
}

func (d *PDFDocument) AddPage() {
	d.pdf.AddPage()
}

func (d *PDFDocument) Text(x, y float64, text string) {
	d.pdf.Text(x, d.height-y, d.translate(text))
}

func (d *PDFDocument) Rect(x, y, width, height float64) {
	d.pdf.Rect(x, d.height-y-height, width, height, "D")
}

func (d *PDFDocument) Image(name string, x, y, width, height float64, png []byte) error {
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	if !d.images[name] {
		d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
		if err := d.pdf.Error(); err != nil {
			return err
		}
		d.images[name] = true
	}
	d.pdf.ImageOptions(name, x, d.height-y-height, width, height, false, opts, 0, "")
	return d.pdf.Error()
}

func (d *PDFDocument) Write(_ context.Context, w io.Writer) error {
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("%w: %v", model.ErrRender, err)
	}
	return nil
}

func (d *PDFDocument) PageCount() int {
	return d.pdf.PageCount()
}

func (d *PDFDocument) Close() error {
	d.pdf.Close()
	return d.pdf.Error()
}

var _ Document = (*PDFDocument)(nil)

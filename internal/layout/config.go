package layout

import (
	"fmt"

	"github.com/Riboost-Studio/voucher-print/internal/model"
)

// Fixed card metrics, in points.
const (
	DefaultMargin     = 50.0
	DefaultLineHeight = 15.0
	DefaultQRHeight   = 60.0
	DefaultQRSize     = 60.0
	DefaultPadding    = 10.0
	DefaultTextInset  = 10.0
	DefaultQRInset    = 70.0

	baseTextLines = 3 // SSID, voucher code, duration
)

// Config is the layout input for one render. It is not modified while rendering.
type Config struct {
	Columns          int
	EnableQRCode     bool
	EnableNameOutput bool
	SSID             string
	HotelName        string

	Margin     float64
	LineHeight float64
	QRHeight   float64
	QRSize     float64
	Padding    float64
	TextInset  float64
	QRInset    float64
}

// NewConfig builds a layout config from the pdf section of the app config.
func NewConfig(pdf model.PDFConfig) Config {
	return Config{
		Columns:          pdf.Columns,
		EnableQRCode:     pdf.EnableQRCode,
		EnableNameOutput: pdf.EnableNameOutput,
		SSID:             pdf.SSID,
		HotelName:        pdf.HotelName,
		Margin:           DefaultMargin,
		LineHeight:       DefaultLineHeight,
		QRHeight:         DefaultQRHeight,
		QRSize:           DefaultQRSize,
		Padding:          DefaultPadding,
		TextInset:        DefaultTextInset,
		QRInset:          DefaultQRInset,
	}
}

// TextLines is the number of text lines printed in each cell.
func (c Config) TextLines() int {
	if c.EnableNameOutput {
		return baseTextLines + 1
	}
	return baseTextLines
}

// TextHeight is the height of the text block of a cell.
func (c Config) TextHeight() float64 {
	return float64(c.TextLines()) * c.LineHeight
}

// RowHeight is text + QR image (when enabled) + padding below.
func (c Config) RowHeight() float64 {
	h := c.TextHeight() + c.Padding
	if c.EnableQRCode {
		h += c.QRHeight
	}
	return h
}

// Geometry holds the derived grid dimensions for a page size.
type Geometry struct {
	PageWidth   float64
	PageHeight  float64
	ColumnWidth float64
	TextHeight  float64
	RowHeight   float64
}

// NewGeometry validates cfg against the page and derives the grid.
func NewGeometry(cfg Config, pageWidth, pageHeight float64) (Geometry, error) {
	if cfg.Columns <= 0 {
		return Geometry{}, fmt.Errorf("%w: pdf.columns must be positive, got %d", model.ErrConfig, cfg.Columns)
	}
	if cfg.LineHeight <= 0 {
		return Geometry{}, fmt.Errorf("%w: line height must be positive", model.ErrConfig)
	}

	g := Geometry{
		PageWidth:   pageWidth,
		PageHeight:  pageHeight,
		ColumnWidth: (pageWidth - 2*cfg.Margin) / float64(cfg.Columns),
		TextHeight:  cfg.TextHeight(),
		RowHeight:   cfg.RowHeight(),
	}

	if g.ColumnWidth <= 0 {
		return Geometry{}, fmt.Errorf("%w: margins leave no room for columns", model.ErrConfig)
	}
	if cfg.EnableQRCode && g.ColumnWidth < cfg.QRInset {
		return Geometry{}, fmt.Errorf("%w: %d columns are too narrow for the QR code", model.ErrConfig, cfg.Columns)
	}
	if g.RowHeight > pageHeight-2*cfg.Margin {
		return Geometry{}, fmt.Errorf("%w: a row (%.0fpt) does not fit on the page", model.ErrConfig, g.RowHeight)
	}
	return g, nil
}

// RowsPerPage is how many rows fit between the top and bottom margins.
func (g Geometry) RowsPerPage(margin float64) int {
	return int((g.PageHeight - 2*margin) / g.RowHeight)
}

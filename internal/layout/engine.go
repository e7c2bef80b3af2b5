package layout

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Riboost-Studio/voucher-print/internal/model"
)

// Cursor tracks the top-left corner of the next cell and how many cells have
// been placed.
type Cursor struct {
	X     float64
	Y     float64
	Count int
}

// Cell records where a voucher was placed. Page and Row are 0-based, Row
// counts from the top of its page.
type Cell struct {
	Index  int
	Page   int
	Column int
	Row    int
	X      float64
	Y      float64
}

type Result struct {
	Cells []Cell
	Pages int
}

// Engine places vouchers into a fixed grid and draws them on a Surface.
type Engine struct {
	cfg    Config
	imager CodeImager
	logger *zap.Logger
}

type Option func(*Engine)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine returns an engine for cfg. imager may be nil when QR codes are disabled.
func NewEngine(cfg Config, imager CodeImager, opts ...Option) (*Engine, error) {
	if cfg.EnableQRCode && imager == nil {
		return nil, fmt.Errorf("%w: QR codes enabled without a code imager", model.ErrConfig)
	}
	e := &Engine{
		cfg:    cfg,
		imager: imager,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Render draws every voucher, in order, onto s. The first page is opened by
// the engine, so an empty list still yields one blank page.
func (e *Engine) Render(s Surface, vouchers []model.Voucher) (*Result, error) {
	width, height := s.PageSize()
	geo, err := NewGeometry(e.cfg, width, height)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("grid",
		zap.Int("columns", e.cfg.Columns),
		zap.Float64("column_width", geo.ColumnWidth),
		zap.Float64("row_height", geo.RowHeight),
		zap.Int("rows_per_page", geo.RowsPerPage(e.cfg.Margin)))

	top := height - e.cfg.Margin
	cur := Cursor{X: e.cfg.Margin, Y: top}
	page, row := 0, 0
	result := &Result{Cells: make([]Cell, 0, len(vouchers)), Pages: 1}

	s.AddPage()

	for _, v := range vouchers {
		if cur.Count%e.cfg.Columns == 0 && cur.Count != 0 {
			cur.Y -= geo.RowHeight
			cur.X = e.cfg.Margin
			row++
		}

		if cur.Y < e.cfg.Margin+geo.RowHeight {
			s.AddPage()
			cur.Y = top
			cur.X = e.cfg.Margin
			page++
			row = 0
			result.Pages++
			e.logger.Debug("page break", zap.Int("page", page+1), zap.Int("voucher", cur.Count))
		}

		if err := e.drawCell(s, geo, cur, v); err != nil {
			return nil, err
		}

		result.Cells = append(result.Cells, Cell{
			Index:  cur.Count,
			Page:   page,
			Column: cur.Count % e.cfg.Columns,
			Row:    row,
			X:      cur.X,
			Y:      cur.Y,
		})

		cur.X += geo.ColumnWidth
		cur.Count++
	}

	return result, nil
}

func (e *Engine) drawCell(s Surface, geo Geometry, cur Cursor, v model.Voucher) error {
	lines := make([]string, 0, e.cfg.TextLines())
	if e.cfg.EnableNameOutput {
		lines = append(lines, e.cfg.HotelName)
	}
	lines = append(lines,
		"SSID: "+e.cfg.SSID,
		"Voucher Code: "+v.Code,
		fmt.Sprintf("Duration: %d days", v.DurationDays()),
	)

	for i, line := range lines {
		s.Text(cur.X+e.cfg.TextInset, cur.Y-float64(i+1)*e.cfg.LineHeight, line)
	}

	if e.cfg.EnableQRCode {
		img, err := e.imager.Encode(e.cfg.SSID, v.Code)
		if err != nil {
			return fmt.Errorf("%w: QR code for voucher %s: %v", model.ErrRender, v.Code, err)
		}
		x := cur.X + geo.ColumnWidth - e.cfg.QRInset
		y := cur.Y - geo.TextHeight - e.cfg.QRHeight
		if err := s.Image("qr-"+v.Code, x, y, e.cfg.QRSize, e.cfg.QRSize, img); err != nil {
			return fmt.Errorf("%w: placing QR code: %v", model.ErrRender, err)
		}
	}

	s.Rect(cur.X, cur.Y-geo.RowHeight, geo.ColumnWidth, geo.RowHeight)
	return nil
}

package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Riboost-Studio/voucher-print/internal/layout"
	"github.com/Riboost-Studio/voucher-print/internal/model"
	"github.com/Riboost-Studio/voucher-print/internal/render"
)

const logoutTimeout = 5 * time.Second

// FilterUnused keeps the vouchers that were never used, in their original order.
func FilterUnused(vouchers []model.Voucher) []model.Voucher {
	unused := make([]model.Voucher, 0, len(vouchers))
	for _, v := range vouchers {
		if v.Used == 0 {
			unused = append(unused, v)
		}
	}
	return unused
}

// DocumentFactory creates the surface a sheet is drawn on.
type DocumentFactory func(cfg model.PDFConfig, logger *zap.Logger) (render.Document, error)

// VoucherService runs the whole pipeline: login, fetch, filter, render.
type VoucherService struct {
	cfg         *model.Config
	client      *UnifiClient
	imager      layout.CodeImager
	newDocument DocumentFactory
	logger      *zap.Logger
}

type VoucherServiceOption func(*VoucherService)

func WithDocumentFactory(f DocumentFactory) VoucherServiceOption {
	return func(s *VoucherService) {
		s.newDocument = f
	}
}

func WithCodeImager(imager layout.CodeImager) VoucherServiceOption {
	return func(s *VoucherService) {
		s.imager = imager
	}
}

func NewVoucherService(cfg *model.Config, client *UnifiClient, logger *zap.Logger, opts ...VoucherServiceOption) *VoucherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &VoucherService{
		cfg:         cfg,
		client:      client,
		imager:      render.NewQRGenerator(),
		newDocument: render.NewDocument,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate logs in with creds and renders the unused vouchers of site, or of
// the configured site when site is empty.
func (s *VoucherService) Generate(ctx context.Context, creds model.Credentials, site string) (*model.Sheet, error) {
	if site == "" {
		site = s.cfg.Unifi.Site
	}

	vouchers, err := s.fetch(ctx, creds, site)
	if err != nil {
		return nil, err
	}

	unused := FilterUnused(vouchers)
	s.logger.Info("vouchers fetched",
		zap.String("site", site),
		zap.Int("total", len(vouchers)),
		zap.Int("unused", len(unused)))
	if len(unused) == 0 {
		return nil, model.ErrNoVouchers
	}

	return s.Render(ctx, unused)
}

func (s *VoucherService) fetch(ctx context.Context, creds model.Credentials, site string) ([]model.Voucher, error) {
	session, err := s.client.Authenticate(ctx, creds)
	if err != nil {
		return nil, err
	}
	defer func() {
		logoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
		defer cancel()
		if err := session.Logout(logoutCtx); err != nil {
			s.logger.Debug("controller logout failed", zap.Error(err))
		}
	}()

	return session.FetchVouchers(ctx, site)
}

// Render lays out vouchers as given, without filtering.
func (s *VoucherService) Render(ctx context.Context, vouchers []model.Voucher) (*model.Sheet, error) {
	engine, err := layout.NewEngine(layout.NewConfig(s.cfg.PDF), s.imager, layout.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}

	doc, err := s.newDocument(s.cfg.PDF, s.logger)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	result, err := engine.Render(doc, vouchers)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := doc.Write(ctx, &buf); err != nil {
		return nil, err
	}

	renderer := s.cfg.PDF.Renderer
	if renderer == "" {
		renderer = render.RendererGofpdf
	}
	sheet := &model.Sheet{
		PDF:      buf.Bytes(),
		Vouchers: len(result.Cells),
		Pages:    result.Pages,
		Renderer: renderer,
	}
	s.logger.Info("voucher sheet rendered",
		zap.Int("vouchers", sheet.Vouchers),
		zap.Int("pages", sheet.Pages),
		zap.String("renderer", renderer),
		zap.Int("bytes", len(sheet.PDF)))
	return sheet, nil
}

// --- Delivery ---

// Delivery hands a rendered sheet to its destinations: the printer when one
// is enabled, otherwise the output file, and the archive when configured.
type Delivery struct {
	Printer    model.Printer
	OutputFile string
	Archiver   Archiver
	Logger     *zap.Logger
}

func (d *Delivery) Deliver(ctx context.Context, sheet *model.Sheet) error {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if d.Printer.Enabled {
		if err := SendToPrinter(ctx, d.Printer, sheet.PDF); err != nil {
			return err
		}
		logger.Info("sheet sent to printer", zap.String("printer", d.Printer.Name), zap.String("address", d.Printer.Address))
	} else {
		if err := WriteSheet(d.OutputFile, sheet); err != nil {
			return err
		}
		logger.Info("sheet written", zap.String("path", d.OutputFile))
	}

	if d.Archiver != nil {
		key, err := d.Archiver.Archive(ctx, sheet)
		if err != nil {
			return fmt.Errorf("archiving sheet: %w", err)
		}
		logger.Info("sheet archived", zap.String("key", key))
	}
	return nil
}

package services

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/Riboost-Studio/voucher-print/internal/model"
)

const (
	printerDialTimeout  = 5 * time.Second
	printerWriteTimeout = 30 * time.Second
)

// WriteSheet writes the PDF to path. A partially written file is removed.
func WriteSheet(path string, sheet *model.Sheet) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if _, err = f.Write(sheet.PDF); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Sync()
}

// SendToPrinter streams a PDF job to a raw (JetDirect) printer port.
func SendToPrinter(ctx context.Context, p model.Printer, pdf []byte) error {
	dialer := net.Dialer{Timeout: printerDialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.Address)
	if err != nil {
		return fmt.Errorf("%w: connection to %s failed: %v", model.ErrPrinter, p.Address, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(printerWriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("%w: %v", model.ErrPrinter, err)
	}

	if _, err := conn.Write(pdf); err != nil {
		return fmt.Errorf("%w: write to %s failed: %v", model.ErrPrinter, p.Address, err)
	}
	return nil
}

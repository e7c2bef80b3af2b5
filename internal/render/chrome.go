package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/Riboost-Studio/voucher-print/internal/model"
	"github.com/Riboost-Studio/voucher-print/internal/utils"
)

const (
	defaultChromeTimeout = 30 * time.Second
	pointsPerInch        = 72.0
	// Distance from the top of a text box to its baseline at line-height 1.
	textAscent = fontSize * 0.8
)

type ChromeConfig struct {
	// ExecPath of Chrome/Chromium; found on the system when empty.
	ExecPath string
	// RemoteURL of a running browser's DevTools endpoint. Takes precedence over ExecPath.
	RemoteURL string
	Timeout   time.Duration
	Title     string
	Logger    *zap.Logger
}

type element struct {
	Kind   string
	Left   float64
	Top    float64
	Width  float64
	Height float64
	Text   string
	Src    template.URL
}

type htmlPage struct {
	Elements []element
}

// ChromeDocument records the drawing calls as absolutely positioned HTML
// pages and prints them to PDF with headless Chrome.
type ChromeDocument struct {
	config *ChromeConfig
	logger *zap.Logger
	pages  []*htmlPage
	images map[string]template.URL
}

func NewChromeDocument(config *ChromeConfig) (*ChromeDocument, error) {
	if config == nil {
		config = &ChromeConfig{}
	}
	if config.Timeout == 0 {
		config.Timeout = defaultChromeTimeout
	}
	if config.RemoteURL == "" {
		path, err := utils.ResolveChrome(config.ExecPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrConfig, err)
		}
		config.ExecPath = path
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ChromeDocument{
		config: config,
		logger: logger,
		images: make(map[string]template.URL),
	}, nil
}

func (d *ChromeDocument) PageSize() (float64, float64) {
	return A4Width, A4Height
}

func (d *ChromeDocument) AddPage() {
	d.pages = append(d.pages, &htmlPage{})
}

func (d *ChromeDocument) current() *htmlPage {
	if len(d.pages) == 0 {
		d.AddPage()
	}
	return d.pages[len(d.pages)-1]
}

func (d *ChromeDocument) Text(x, y float64, text string) {
	p := d.current()
	p.Elements = append(p.Elements, element{
		Kind: "text",
		Left: x,
		Top:  A4Height - y - textAscent,
		Text: text,
	})
}

func (d *ChromeDocument) Rect(x, y, width, height float64) {
	p := d.current()
	p.Elements = append(p.Elements, element{
		Kind:   "rect",
		Left:   x,
		Top:    A4Height - y - height,
		Width:  width,
		Height: height,
	})
}

func (d *ChromeDocument) Image(name string, x, y, width, height float64, png []byte) error {
	src, ok := d.images[name]
	if !ok {
		src = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
		d.images[name] = src
	}
	p := d.current()
	p.Elements = append(p.Elements, element{
		Kind:   "image",
		Left:   x,
		Top:    A4Height - y - height,
		Width:  width,
		Height: height,
		Src:    src,
	})
	return nil
}

func (d *ChromeDocument) PageCount() int {
	return len(d.pages)
}

var pageTemplate = template.Must(template.New("sheet").Parse(`<!DOCTYPE html>
<html><head><meta charset="UTF-8"><title>{{.Title}}</title>
<style>
@page { size: A4; margin: 0; }
html, body { margin: 0; padding: 0; }
.page { position: relative; width: {{.Width}}pt; height: {{.Height}}pt; overflow: hidden; page-break-after: always; }
.page:last-child { page-break-after: auto; }
.text { position: absolute; font: {{.FontSize}}pt Helvetica, Arial, sans-serif; line-height: 1; white-space: pre; }
.rect { position: absolute; box-sizing: border-box; border: 1pt solid #000; }
.image { position: absolute; }
</style></head><body>
{{- range .Pages}}
<div class="page">
{{- range .Elements}}
{{- if eq .Kind "text"}}<div class="text" style="left:{{.Left}}pt;top:{{.Top}}pt">{{.Text}}</div>
{{- else if eq .Kind "rect"}}<div class="rect" style="left:{{.Left}}pt;top:{{.Top}}pt;width:{{.Width}}pt;height:{{.Height}}pt"></div>
{{- else}}<img class="image" src="{{.Src}}" style="left:{{.Left}}pt;top:{{.Top}}pt;width:{{.Width}}pt;height:{{.Height}}pt">
{{- end}}
{{- end}}
</div>
{{- end}}
</body></html>`))

// HTML renders the recorded pages.
func (d *ChromeDocument) HTML() (string, error) {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, map[string]any{
		"Title":    d.config.Title,
		"Width":    A4Width,
		"Height":   A4Height,
		"FontSize": fontSize,
		"Pages":    d.pages,
	})
	if err != nil {
		return "", fmt.Errorf("%w: executing page template: %v", model.ErrRender, err)
	}
	return buf.String(), nil
}

func (d *ChromeDocument) allocator(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.config.RemoteURL != "" {
		return chromedp.NewRemoteAllocator(ctx, d.config.RemoteURL)
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(d.config.ExecPath),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	return chromedp.NewExecAllocator(ctx, opts...)
}

func (d *ChromeDocument) Write(ctx context.Context, w io.Writer) error {
	html, err := d.HTML()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	allocCtx, allocCancel := d.allocator(ctx)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			d.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	start := time.Now()
	var pdfData []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(A4Width / pointsPerInch).
				WithPaperHeight(A4Height / pointsPerInch).
				WithMarginTop(0).
				WithMarginRight(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%w: chrome timed out after %v", model.ErrRender, d.config.Timeout)
		}
		return fmt.Errorf("%w: chromedp: %v", model.ErrRender, err)
	}
	if len(pdfData) == 0 {
		return fmt.Errorf("%w: chrome produced an empty PDF", model.ErrRender)
	}

	d.logger.Info("PDF printed by chrome",
		zap.Int("bytes", len(pdfData)),
		zap.Int("pages", len(d.pages)),
		zap.Duration("duration", time.Since(start)))

	if _, err := w.Write(pdfData); err != nil {
		return fmt.Errorf("%w: writing PDF: %v", model.ErrRender, err)
	}
	return nil
}

// Close is a no-op; the browser only lives for the duration of Write.
func (d *ChromeDocument) Close() error {
	return nil
}

var _ Document = (*ChromeDocument)(nil)

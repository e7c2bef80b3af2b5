// Package server is the browser variant of the voucher printer: a login form
// whose submission returns the voucher sheet as a PDF download.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Riboost-Studio/voucher-print/internal/logger"
	"github.com/Riboost-Studio/voucher-print/internal/model"
	"github.com/Riboost-Studio/voucher-print/internal/services"
)

const (
	formTitle       = "Print Wi-Fi Vouchers"
	shutdownTimeout = 10 * time.Second
)

//go:embed templates/*.html
var templateFS embed.FS

// Generator runs the voucher pipeline for one set of credentials.
type Generator interface {
	Generate(ctx context.Context, creds model.Credentials, site string) (*model.Sheet, error)
}

type Server struct {
	cfg       model.ServerConfig
	filename  string
	generator Generator
	archiver  services.Archiver
	logger    *zap.Logger
	engine    *gin.Engine
}

type Option func(*Server)

// WithArchiver stores a copy of every sheet handed out.
func WithArchiver(a services.Archiver) Option {
	return func(s *Server) {
		s.archiver = a
	}
}

func New(cfg *model.Config, generator Generator, log *zap.Logger, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		cfg:       cfg.Server,
		filename:  filepath.Base(cfg.PDF.OutputFile),
		generator: generator,
		logger:    log,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Keep gin's route dump off stdout; requests are logged through zap.
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))
	engine.Use(logger.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	engine.GET("/", s.showForm)
	engine.POST("/", s.printVouchers)
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.engine = engine
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is done, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) showForm(c *gin.Context) {
	c.HTML(http.StatusOK, "form.html", gin.H{"Title": formTitle})
}

func (s *Server) printVouchers(c *gin.Context) {
	var creds model.Credentials
	if err := c.ShouldBind(&creds); err != nil || creds.Username == "" || creds.Password == "" {
		c.HTML(http.StatusBadRequest, "form.html", gin.H{
			"Title":    formTitle,
			"Error":    "Username and password are required",
			"Username": creds.Username,
		})
		return
	}

	sheet, err := s.generator.Generate(c.Request.Context(), creds, "")
	if err != nil {
		c.Error(err)
		status, msg := errorResponse(err)
		c.String(status, msg)
		return
	}

	if s.archiver != nil {
		if key, err := s.archiver.Archive(c.Request.Context(), sheet); err != nil {
			logger.FromGin(c).Warn("archiving sheet failed", zap.Error(err))
		} else {
			logger.FromGin(c).Info("sheet archived", zap.String("key", key))
		}
	}

	c.Header("Content-Disposition", `attachment; filename="`+s.filename+`"`)
	c.Data(http.StatusOK, "application/pdf", sheet.PDF)
}

// errorResponse maps pipeline errors to a status and a message for the user.
func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrAuthentication):
		return http.StatusUnauthorized, "Failed to login with provided credentials"
	case errors.Is(err, model.ErrNoVouchers):
		return http.StatusNotFound, "No unused vouchers found"
	case errors.Is(err, model.ErrFetch):
		return http.StatusBadGateway, "Failed to fetch vouchers from the controller"
	default:
		return http.StatusInternalServerError, "Failed to generate the voucher sheet"
	}
}

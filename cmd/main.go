package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Riboost-Studio/voucher-print/internal/logger"
	"github.com/Riboost-Studio/voucher-print/internal/model"
	"github.com/Riboost-Studio/voucher-print/internal/render"
	"github.com/Riboost-Studio/voucher-print/internal/server"
	"github.com/Riboost-Studio/voucher-print/internal/services"
	"github.com/Riboost-Studio/voucher-print/internal/utils"
)

const (
	appName    = "Voucher Print"
	appVersion = "1.0.0"

	modePrint = "print"
	modeServe = "serve"
	modeAgent = "agent"

	printerProbeTimeout = 2 * time.Second
)

// --- Main ---

func main() {
	configFile := flag.String("config", "", "path to the settings file (default: config.yaml in ., ./config or /app)")
	mode := flag.String("mode", modePrint, "print, serve or agent")
	flag.Parse()

	ctx := context.Background()
	ctx = context.WithValue(ctx, model.ContextAppName, appName)
	ctx = context.WithValue(ctx, model.ContextAppVersion, appVersion)
	ctx = context.WithValue(ctx, model.ContextConfigFile, *configFile)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	err := run(ctx, *mode)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, consoleMessage(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, mode string) error {
	// 1. Load Configuration
	cfg, err := utils.LoadConfig(ctx)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrConfig, err)
	}
	defer log.Sync()

	log.Info("Configuration loaded",
		zap.String("app", appName),
		zap.String("version", appVersion),
		zap.String("mode", mode),
		zap.String("controller", cfg.Unifi.BaseURL),
		zap.String("site", cfg.Unifi.Site),
		zap.String("renderer", cfg.PDF.Renderer))

	// 2. Build the pipeline
	client, err := services.NewUnifiClient(cfg.Unifi, log.Named("unifi"))
	if err != nil {
		return err
	}
	svc := services.NewVoucherService(cfg, client, log.Named("vouchers"))

	s3Archiver, err := services.NewS3Archiver(ctx, cfg.Storage.S3, log.Named("storage"))
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrConfig, err)
	}
	var archiver services.Archiver
	if s3Archiver != nil {
		archiver = s3Archiver
	}

	delivery := &services.Delivery{
		Printer:    cfg.Printer,
		OutputFile: cfg.PDF.OutputFile,
		Archiver:   archiver,
		Logger:     log.Named("delivery"),
	}

	checkRenderer(cfg, log)

	// 3. Run the selected mode
	switch mode {
	case modePrint:
		return runPrint(ctx, cfg, svc, delivery, log)
	case modeServe:
		var opts []server.Option
		if archiver != nil {
			opts = append(opts, server.WithArchiver(archiver))
		}
		return server.New(cfg, svc, log.Named("http"), opts...).Run(ctx)
	case modeAgent:
		return runAgent(ctx, cfg, svc, delivery, log)
	default:
		return fmt.Errorf("%w: unknown mode %q (use %s, %s or %s)", model.ErrConfig, mode, modePrint, modeServe, modeAgent)
	}
}

func runPrint(ctx context.Context, cfg *model.Config, svc *services.VoucherService, delivery *services.Delivery, log *zap.Logger) error {
	creds, err := utils.RequireCredentials(cfg)
	if err != nil {
		return err
	}

	if cfg.Printer.Enabled && !utils.Probe(cfg.Printer.Address, printerProbeTimeout) {
		log.Warn("Printer is not reachable", zap.String("printer", cfg.Printer.Name), zap.String("address", cfg.Printer.Address))
	}

	sheet, err := svc.Generate(ctx, creds, "")
	if err != nil {
		return err
	}
	if err := delivery.Deliver(ctx, sheet); err != nil {
		return err
	}

	target := cfg.PDF.OutputFile
	if cfg.Printer.Enabled {
		target = cfg.Printer.Name
	}
	fmt.Printf("%d vouchers on %d pages sent to %s\n", sheet.Vouchers, sheet.Pages, target)
	return nil
}

func runAgent(ctx context.Context, cfg *model.Config, svc *services.VoucherService, delivery *services.Delivery, log *zap.Logger) error {
	if err := utils.RequireAgent(cfg); err != nil {
		return err
	}
	creds, err := utils.RequireCredentials(cfg)
	if err != nil {
		return err
	}

	generate := func(ctx context.Context, site string) (*model.Sheet, error) {
		return svc.Generate(ctx, creds, site)
	}
	agent := services.NewAgent(cfg.Agent, generate, delivery.Deliver, log.Named("agent"))

	fmt.Printf("--- Agent running as %s ---\n", cfg.Agent.AgentKey)
	if err := agent.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Println("\nShutting down...")
	return nil
}

// checkRenderer reports which browser the chrome renderer will drive.
func checkRenderer(cfg *model.Config, log *zap.Logger) {
	if cfg.PDF.Renderer != render.RendererChrome || cfg.PDF.ChromeRemoteURL != "" {
		return
	}
	path, err := utils.ResolveChrome(cfg.PDF.ChromePath)
	if err != nil {
		log.Warn("Chrome not available", zap.Error(err))
		return
	}
	log.Info("Chrome found", zap.String("path", path), zap.String("version", utils.ChromeVersion(path)))
}

// consoleMessage is the operator-facing line for each error class.
func consoleMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrAuthentication):
		return "Failed to login with provided credentials: " + err.Error()
	case errors.Is(err, model.ErrNoVouchers):
		return "No unused vouchers found"
	case errors.Is(err, model.ErrFetch):
		return "Failed to fetch vouchers: " + err.Error()
	case errors.Is(err, model.ErrConfig):
		return "Configuration error: " + err.Error()
	case errors.Is(err, model.ErrRender):
		return "Failed to render vouchers: " + err.Error()
	case errors.Is(err, model.ErrPrinter):
		return "Failed to print vouchers: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}

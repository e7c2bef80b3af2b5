package utils

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Riboost-Studio/voucher-print/internal/model"
)

const sampleConfig = `
unifi:
  base_url: "https://unifi.example.com:8443/"
  site: "lobby"
  username: "admin"
  password: "secret"
pdf:
  ssid: "Hotel-Guest"
  hotel_name: "Hotel Example"
  columns: 2
  output_file: "out/vouchers.pdf"
`

func writeConfig(t *testing.T, body string) context.Context {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return context.WithValue(context.Background(), model.ContextConfigFile, path)
}

func TestLoadConfig(t *testing.T) {
	t.Run("reads the document and applies defaults", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, sampleConfig))
		require.NoError(t, err)

		assert.Equal(t, "https://unifi.example.com:8443", cfg.Unifi.BaseURL)
		assert.Equal(t, "lobby", cfg.Unifi.Site)
		assert.Equal(t, "admin", cfg.Unifi.Username)
		assert.Equal(t, 10*time.Second, cfg.Unifi.Timeout)
		assert.False(t, cfg.Unifi.TLS.InsecureSkipVerify)

		assert.Equal(t, "Hotel-Guest", cfg.PDF.SSID)
		assert.Equal(t, 2, cfg.PDF.Columns)
		assert.Equal(t, "out/vouchers.pdf", cfg.PDF.OutputFile)
		assert.True(t, cfg.PDF.EnableQRCode)
		assert.True(t, cfg.PDF.EnableNameOutput)
		assert.Equal(t, "gofpdf", cfg.PDF.Renderer)

		assert.Equal(t, ":5000", cfg.Server.Addr)
		assert.False(t, cfg.Printer.Enabled)
		assert.False(t, cfg.Storage.S3.Enabled)
		assert.Equal(t, "info", cfg.Log.Level)
	})

	t.Run("boolean switches can be turned off", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, sampleConfig+"  enable_qr_code: false\n  enable_name_output: false\n"))
		require.NoError(t, err)

		assert.False(t, cfg.PDF.EnableQRCode)
		assert.False(t, cfg.PDF.EnableNameOutput)
	})

	t.Run("environment overrides the document", func(t *testing.T) {
		t.Setenv("VOUCHER_UNIFI_PASSWORD", "from-env")
		t.Setenv("VOUCHER_PDF_COLUMNS", "4")
		t.Setenv("VOUCHER_UNIFI_TIMEOUT", "3s")

		cfg, err := LoadConfig(writeConfig(t, sampleConfig))
		require.NoError(t, err)

		assert.Equal(t, "from-env", cfg.Unifi.Password)
		assert.Equal(t, 4, cfg.PDF.Columns)
		assert.Equal(t, 3*time.Second, cfg.Unifi.Timeout)
	})

	t.Run("missing explicit file is a config error", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), model.ContextConfigFile, filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := LoadConfig(ctx)
		assert.ErrorIs(t, err, model.ErrConfig)
	})

	t.Run("zero columns rejected", func(t *testing.T) {
		t.Setenv("VOUCHER_PDF_COLUMNS", "0")
		_, err := LoadConfig(writeConfig(t, sampleConfig))
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrConfig)
		assert.Contains(t, err.Error(), "Columns")
	})

	t.Run("unknown renderer rejected", func(t *testing.T) {
		t.Setenv("VOUCHER_PDF_RENDERER", "latex")
		_, err := LoadConfig(writeConfig(t, sampleConfig))
		assert.ErrorIs(t, err, model.ErrConfig)
	})

	t.Run("missing ssid rejected", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "unifi:\n  base_url: \"https://unifi.local\"\npdf:\n  hotel_name: \"Hotel Example\"\n"))
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrConfig)
		assert.Contains(t, err.Error(), "SSID")
	})

	t.Run("base url must be a url", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "unifi:\n  base_url: \"not a url\"\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "BaseURL")
	})
}

func validConfig() *model.Config {
	return &model.Config{
		Unifi: model.UnifiConfig{BaseURL: "https://unifi.local", Site: "default", Timeout: time.Second},
		PDF:   model.PDFConfig{SSID: "Hotel-Guest", Columns: 3, OutputFile: "vouchers.pdf", Renderer: "gofpdf"},
	}
}

func TestValidateConfig(t *testing.T) {
	require.NoError(t, ValidateConfig(validConfig()))

	cfg := validConfig()
	cfg.PDF.SSID = ""
	assert.ErrorIs(t, ValidateConfig(cfg), model.ErrConfig)

	cfg = validConfig()
	cfg.Printer.Enabled = true
	assert.ErrorIs(t, ValidateConfig(cfg), model.ErrConfig)

	cfg = validConfig()
	cfg.Storage.S3 = model.S3Config{Enabled: true, Bucket: "sheets"}
	assert.ErrorIs(t, ValidateConfig(cfg), model.ErrConfig)

	cfg = validConfig()
	cfg.Unifi.Timeout = 0
	assert.ErrorIs(t, ValidateConfig(cfg), model.ErrConfig)
}

func TestRequireCredentials(t *testing.T) {
	cfg := validConfig()
	_, err := RequireCredentials(cfg)
	assert.ErrorIs(t, err, model.ErrConfig)

	cfg.Unifi.Username, cfg.Unifi.Password = "admin", "pw"
	creds, err := RequireCredentials(cfg)
	require.NoError(t, err)
	assert.Equal(t, model.Credentials{Username: "admin", Password: "pw"}, creds)
}

func TestRequireAgent(t *testing.T) {
	cfg := validConfig()
	assert.ErrorIs(t, RequireAgent(cfg), model.ErrConfig)

	cfg.Agent = model.AgentConfig{WsURL: "ws://localhost/agent", AgentKey: "k"}
	assert.NoError(t, RequireAgent(cfg))
}

package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Riboost-Studio/voucher-print/internal/model"
)

const envPrefix = "VOUCHER"

// LoadConfig reads the settings document named by model.ContextConfigFile in
// ctx, or config.yaml from the usual places when it is empty.
// Priority (highest to lowest):
// 1. Environment variables with VOUCHER_ prefix (e.g. VOUCHER_UNIFI_PASSWORD)
// 2. .env in the working directory
// 3. the settings document
// 4. Built-in defaults
func LoadConfig(ctx context.Context) (*model.Config, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	configFile, _ := ctx.Value(model.ContextConfigFile).(string)
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: reading config file: %v", model.ErrConfig, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &model.Config{
		Unifi: model.UnifiConfig{
			BaseURL:  strings.TrimRight(v.GetString("unifi.base_url"), "/"),
			Site:     v.GetString("unifi.site"),
			Username: v.GetString("unifi.username"),
			Password: v.GetString("unifi.password"),
			Timeout:  v.GetDuration("unifi.timeout"),
			TLS: model.TLSConfig{
				InsecureSkipVerify: v.GetBool("unifi.tls.insecure_skip_verify"),
				CAFile:             v.GetString("unifi.tls.ca_file"),
			},
		},
		PDF: model.PDFConfig{
			SSID:             v.GetString("pdf.ssid"),
			HotelName:        v.GetString("pdf.hotel_name"),
			Columns:          v.GetInt("pdf.columns"),
			OutputFile:       v.GetString("pdf.output_file"),
			EnableQRCode:     v.GetBool("pdf.enable_qr_code"),
			EnableNameOutput: v.GetBool("pdf.enable_name_output"),
			Renderer:         strings.ToLower(v.GetString("pdf.renderer")),
			ChromePath:       v.GetString("pdf.chrome_path"),
			ChromeRemoteURL:  v.GetString("pdf.chrome_remote_url"),
			RenderTimeout:    v.GetDuration("pdf.render_timeout"),
		},
		Server: model.ServerConfig{
			Addr:         v.GetString("server.addr"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		Printer: model.Printer{
			Name:    v.GetString("printer.name"),
			Address: v.GetString("printer.address"),
			Enabled: v.GetBool("printer.enabled"),
		},
		Agent: model.AgentConfig{
			WsURL:    v.GetString("agent.ws_url"),
			APIKey:   v.GetString("agent.api_key"),
			AgentKey: v.GetString("agent.agent_key"),
		},
		Storage: model.StorageConfig{
			S3: model.S3Config{
				Enabled:      v.GetBool("storage.s3.enabled"),
				Endpoint:     v.GetString("storage.s3.endpoint"),
				Region:       v.GetString("storage.s3.region"),
				Bucket:       v.GetString("storage.s3.bucket"),
				AccessKey:    v.GetString("storage.s3.access_key"),
				SecretKey:    v.GetString("storage.s3.secret_key"),
				UsePathStyle: v.GetBool("storage.s3.use_path_style"),
				Prefix:       v.GetString("storage.s3.prefix"),
			},
		},
		Log: model.LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers defaults with viper so that env-only setups and
// partially written documents behave the same.
func setDefaults(v *viper.Viper) {
	v.SetDefault("unifi.site", "default")
	v.SetDefault("unifi.timeout", 10*time.Second)
	v.SetDefault("unifi.tls.insecure_skip_verify", false)
	v.SetDefault("pdf.columns", 3)
	v.SetDefault("pdf.output_file", "vouchers.pdf")
	v.SetDefault("pdf.enable_qr_code", true)
	v.SetDefault("pdf.enable_name_output", true)
	v.SetDefault("pdf.renderer", "gofpdf")
	v.SetDefault("pdf.render_timeout", 30*time.Second)
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("printer.enabled", false)
	v.SetDefault("storage.s3.enabled", false)
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.prefix", "vouchers")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
}

var validate = validator.New()

// ValidateConfig checks field constraints and the cross-field rules of the
// optional sections.
func ValidateConfig(cfg *model.Config) error {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", model.ErrConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", model.ErrConfig, err)
	}

	if cfg.Unifi.Timeout <= 0 {
		return fmt.Errorf("%w: unifi.timeout must be positive", model.ErrConfig)
	}
	if cfg.Printer.Enabled && cfg.Printer.Address == "" {
		return fmt.Errorf("%w: printer.address is required when printer.enabled is set", model.ErrConfig)
	}
	if cfg.Storage.S3.Enabled {
		s3 := cfg.Storage.S3
		if s3.Bucket == "" || s3.AccessKey == "" || s3.SecretKey == "" {
			return fmt.Errorf("%w: storage.s3 needs bucket, access_key and secret_key", model.ErrConfig)
		}
	}
	return nil
}

// RequireCredentials is used by the modes that log in with configured credentials.
func RequireCredentials(cfg *model.Config) (model.Credentials, error) {
	if cfg.Unifi.Username == "" || cfg.Unifi.Password == "" {
		return model.Credentials{}, fmt.Errorf("%w: unifi.username and unifi.password are required", model.ErrConfig)
	}
	return model.Credentials{Username: cfg.Unifi.Username, Password: cfg.Unifi.Password}, nil
}

// RequireAgent checks the agent section before the websocket loop starts.
func RequireAgent(cfg *model.Config) error {
	if cfg.Agent.WsURL == "" || cfg.Agent.AgentKey == "" {
		return fmt.Errorf("%w: agent.ws_url and agent.agent_key are required", model.ErrConfig)
	}
	return nil
}

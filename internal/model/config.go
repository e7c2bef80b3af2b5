package model

import "time"

// --- Configuration Structures ---

type Config struct {
	Unifi   UnifiConfig
	PDF     PDFConfig
	Server  ServerConfig
	Printer Printer
	Agent   AgentConfig
	Storage StorageConfig
	Log     LogConfig
}

// UnifiConfig holds the controller endpoint and the credentials used by the
// print and agent modes. The form server takes credentials per request.
type UnifiConfig struct {
	BaseURL  string `validate:"required,url"`
	Site     string `validate:"required"`
	Username string
	Password string
	Timeout  time.Duration
	TLS      TLSConfig
}

// TLSConfig is the trust policy for the controller connection.
type TLSConfig struct {
	InsecureSkipVerify bool
	CAFile             string
}

type PDFConfig struct {
	SSID             string `validate:"required"`
	HotelName        string
	Columns          int    `validate:"gt=0"`
	OutputFile       string `validate:"required"`
	EnableQRCode     bool
	EnableNameOutput bool
	Renderer         string `validate:"oneof=gofpdf chrome"`
	ChromePath       string
	ChromeRemoteURL  string
	RenderTimeout    time.Duration
}

type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type AgentConfig struct {
	WsURL    string
	APIKey   string
	AgentKey string
}

type StorageConfig struct {
	S3 S3Config
}

// S3Config configures the optional archive of generated sheets. Any
// S3-compatible store works (AWS, MinIO, RustFS).
type S3Config struct {
	Enabled      bool
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	Prefix       string
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Riboost-Studio/voucher-print/internal/model"
)

const (
	defaultControllerTimeout = 10 * time.Second
	maxResponseBytes         = 16 << 20
)

// --- Controller API ---

// UnifiClient talks to the controller's legacy REST API. It holds no session
// state; every Authenticate call returns an independent Session.
type UnifiClient struct {
	baseURL   string
	timeout   time.Duration
	transport http.RoundTripper
	logger    *zap.Logger
}

// Session is one logged-in cookie jar.
type Session struct {
	client *UnifiClient
	http   *http.Client
}

func NewUnifiClient(cfg model.UnifiConfig, logger *zap.Logger) (*UnifiClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("%w: unifi.base_url: %v", model.ErrConfig, err)
	}

	tlsConfig, err := newTLSConfig(cfg.TLS)
	if err != nil {
		return nil, err
	}
	if cfg.TLS.InsecureSkipVerify {
		logger.Warn("TLS certificate verification for the controller is disabled", zap.String("base_url", cfg.BaseURL))
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultControllerTimeout
	}

	return &UnifiClient{
		baseURL:   cfg.BaseURL,
		timeout:   timeout,
		transport: transport,
		logger:    logger,
	}, nil
}

func newTLSConfig(cfg model.TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}
	if cfg.CAFile == "" {
		return tlsConfig, nil
	}

	pem, err := os.ReadFile(cfg.CAFile)
	if err != nil {
		return nil, fmt.Errorf("%w: unifi.tls.ca_file: %v", model.ErrConfig, err)
	}
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("%w: unifi.tls.ca_file %s has no PEM certificates", model.ErrConfig, cfg.CAFile)
	}
	tlsConfig.RootCAs = pool
	return tlsConfig, nil
}

// Authenticate logs in with creds. Any failure, including an unreachable
// controller, is reported as model.ErrAuthentication.
func (c *UnifiClient) Authenticate(ctx context.Context, creds model.Credentials) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	s := &Session{
		client: c,
		http: &http.Client{
			Timeout:   c.timeout,
			Transport: c.transport,
			Jar:       jar,
		},
	}

	payload, err := json.Marshal(creds)
	if err != nil {
		return nil, err
	}

	resp, err := s.do(ctx, http.MethodPost, "/api/login", payload)
	if err != nil {
		return nil, fmt.Errorf("%w: controller unreachable: %v", model.ErrAuthentication, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("controller rejected login",
			zap.Int("status", resp.StatusCode),
			zap.String("username", creds.Username),
			zap.ByteString("body", body))
		return nil, fmt.Errorf("%w: controller returned %d", model.ErrAuthentication, resp.StatusCode)
	}

	c.logger.Debug("logged in to controller", zap.String("username", creds.Username))
	return s, nil
}

// FetchVouchers lists every voucher of the site, used or not.
func (s *Session) FetchVouchers(ctx context.Context, site string) ([]model.Voucher, error) {
	path := "/api/s/" + url.PathEscape(site) + "/stat/voucher"
	resp, err := s.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: controller returned %d: %s", model.ErrFetch, resp.StatusCode, bytes.TrimSpace(body))
	}

	var payload model.VoucherPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", model.ErrFetch, err)
	}
	if payload.Data == nil {
		return nil, fmt.Errorf("%w: response has no data field", model.ErrFetch)
	}
	vouchers := *payload.Data

	s.client.logger.Debug("fetched vouchers", zap.String("site", site), zap.Int("count", len(vouchers)))
	return vouchers, nil
}

// Logout ends the controller session.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.do(ctx, http.MethodPost, "/api/logout", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return errors.New("logout returned " + resp.Status)
	}
	return nil
}

func (s *Session) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.client.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.http.Do(req)
}

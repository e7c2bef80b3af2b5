package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Riboost-Studio/voucher-print/internal/model"
)

// Archiver keeps a copy of every delivered sheet and returns its key.
type Archiver interface {
	Archive(ctx context.Context, sheet *model.Sheet) (string, error)
}

// S3Archiver uploads sheets to an S3-compatible bucket.
type S3Archiver struct {
	client *s3.Client
	bucket string
	prefix string
	now    func() time.Time
	logger *zap.Logger
}

// NewS3Archiver returns nil, nil when archiving is disabled.
func NewS3Archiver(ctx context.Context, cfg model.S3Config, logger *zap.Logger) (*S3Archiver, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &S3Archiver{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		now:    time.Now,
		logger: logger,
	}, nil
}

// Key is <prefix>/yyyy/mm/dd/<uuid>.pdf.
func (a *S3Archiver) Key() string {
	return path.Join(a.prefix, a.now().UTC().Format("2006/01/02"), uuid.NewString()+".pdf")
}

func (a *S3Archiver) Archive(ctx context.Context, sheet *model.Sheet) (string, error) {
	key := a.Key()
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(sheet.PDF),
		ContentLength: aws.Int64(int64(len(sheet.PDF))),
		ContentType:   aws.String("application/pdf"),
		Metadata: map[string]string{
			"vouchers": fmt.Sprint(sheet.Vouchers),
			"pages":    fmt.Sprint(sheet.Pages),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	a.logger.Debug("sheet uploaded", zap.String("bucket", a.bucket), zap.String("key", key))
	return key, nil
}

var _ Archiver = (*S3Archiver)(nil)

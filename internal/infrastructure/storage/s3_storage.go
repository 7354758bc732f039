// Package storage keeps archived reconciliation reports in S3-compatible
// object storage (AWS S3, MinIO, RustFS).
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/erp/reconciler/internal/infrastructure/config"
	"go.uber.org/zap"
)

// S3ObjectStorage stores objects in one bucket of an S3-compatible service
type S3ObjectStorage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	linkTTL time.Duration
	logger  *zap.Logger
}

// S3Option customizes an S3ObjectStorage
type S3Option func(*S3ObjectStorage)

// WithLogger replaces the no-op logger
func WithLogger(logger *zap.Logger) S3Option {
	return func(s *S3ObjectStorage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLinkTTL overrides storage.presign_expiration
func WithLinkTTL(d time.Duration) S3Option {
	return func(s *S3ObjectStorage) { s.linkTTL = d }
}

// NewS3ObjectStorage creates a client for the configured bucket. No request is
// made until the first operation.
func NewS3ObjectStorage(cfg *config.StorageConfig, opts ...S3Option) (*S3ObjectStorage, error) {
	if err := checkStorageConfig(cfg); err != nil {
		return nil, err
	}
	endpoint, err := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 client config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = cfg.UsePathStyle
	})

	s := &S3ObjectStorage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		linkTTL: cfg.PresignExpiration,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.linkTTL <= 0 {
		s.linkTTL = 15 * time.Minute
	}
	return s, nil
}

func checkStorageConfig(cfg *config.StorageConfig) error {
	switch {
	case cfg == nil:
		return errors.New("storage configuration is required")
	case cfg.Bucket == "":
		return errors.New("storage bucket is required")
	case cfg.AccessKey == "":
		return errors.New("storage access key is required")
	case cfg.SecretKey == "":
		return errors.New("storage secret key is required")
	}
	return nil
}

// normalizeEndpoint adds a scheme to bare host:port endpoints. MinIO on
// localhost is assumed when no endpoint is set.
func normalizeEndpoint(endpoint string, useSSL bool) (string, error) {
	if endpoint == "" {
		endpoint = "localhost:9000"
	}
	if !strings.Contains(endpoint, "://") {
		scheme := "http://"
		if useSSL {
			scheme = "https://"
		}
		endpoint = scheme + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid storage endpoint %q", endpoint)
	}
	return endpoint, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *S3ObjectStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating report bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Upload writes data under storageKey
func (s *S3ObjectStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(storageKey),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

// DownloadURL returns a presigned GET link to storageKey that stays valid
// for the configured link TTL
func (s *S3ObjectStorage) DownloadURL(ctx context.Context, storageKey string) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	}, s3.WithPresignExpires(s.linkTTL))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to presign download: %w", err)
	}
	return req.URL, time.Now().Add(s.linkTTL), nil
}

// Bucket returns the bucket name
func (s *S3ObjectStorage) Bucket() string {
	return s.bucket
}

package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioConfig holds the connection info for the S3-compatible photo bucket.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore implements PhotoStore against any S3-compatible service.
type MinioStore struct {
	client *minio.Client
	bucket string
	base   string
	logger *zap.Logger
}

// NewMinioStore builds the photo store and ensures the target bucket exists.
func NewMinioStore(ctx context.Context, cfg MinioConfig, logger *zap.Logger) (*MinioStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket must be provided")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}

	return &MinioStore{
		client: client,
		bucket: cfg.Bucket,
		base:   fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket),
		logger: logger,
	}, nil
}

// UploadPhoto stores the object under the given name and returns its URL.
func (s *MinioStore) UploadPhoto(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("photo name must not be empty")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload photo %s: %w", name, err)
	}

	s.logger.Debug("photo uploaded", zap.String("object", name))
	return fmt.Sprintf("%s/%s", s.base, name), nil
}

// DeletePhoto removes the object addressed by a URL previously returned from
// UploadPhoto.
func (s *MinioStore) DeletePhoto(ctx context.Context, rawURL string) error {
	key, err := objectKeyFromURL(rawURL, s.bucket)
	if err != nil {
		return err
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete photo %s: %w", key, err)
	}

	s.logger.Debug("photo deleted", zap.String("object", key))
	return nil
}

// objectKeyFromURL recovers the object key from a URL previously produced by
// UploadPhoto, rejecting URLs that point outside the bucket.
func objectKeyFromURL(rawURL, bucket string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid photo url %q: %w", rawURL, err)
	}

	key := strings.TrimPrefix(u.Path, "/"+bucket+"/")
	if key == "" || key == u.Path {
		return "", fmt.Errorf("photo url %q does not belong to bucket %s", rawURL, bucket)
	}
	return key, nil
}

var _ PhotoStore = (*MinioStore)(nil)

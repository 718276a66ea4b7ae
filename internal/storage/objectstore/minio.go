package objectstore

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gravadigital/tallywatch-api/internal/config"
	"github.com/gravadigital/tallywatch-api/internal/logger"
)

// MinioStore implements PhotoStore on an S3 compatible bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
	log    *log.Logger
}

// NewMinioStore connects to the configured endpoint and makes sure the
// bucket exists.
func NewMinioStore(ctx context.Context, cfg *config.Config) (*MinioStore, error) {
	log := logger.Storage()

	client, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
		Region: cfg.Storage.Region,
	})
	if err != nil {
		log.Error("Failed to create object storage client", "endpoint", cfg.Storage.Endpoint, "error", err)
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	store := &MinioStore{client: client, bucket: cfg.Storage.Bucket, log: log}
	if err := store.ensureBucket(ctx, cfg.Storage.Region); err != nil {
		return nil, err
	}

	log.Info("Object storage ready", "endpoint", cfg.Storage.Endpoint, "bucket", cfg.Storage.Bucket)
	return store, nil
}

func (s *MinioStore) ensureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		s.log.Error("Failed to check bucket", "bucket", s.bucket, "error", err)
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}

	s.log.Info("Creating bucket", "bucket", s.bucket)
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *MinioStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if key == "" {
		return ErrKeyEmpty
	}

	info, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.log.Error("Failed to upload object", "key", key, "error", err)
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	s.log.Debug("Object uploaded", "key", key, "size", info.Size, "etag", info.ETag)
	return nil
}

func (s *MinioStore) Remove(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyEmpty
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		s.log.Error("Failed to remove object", "key", key, "error", err)
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Health checks that the bucket is reachable.
func (s *MinioStore) Health(ctx context.Context) error {
	if _, err := s.client.BucketExists(ctx, s.bucket); err != nil {
		return fmt.Errorf("object storage health check failed: %w", err)
	}
	return nil
}

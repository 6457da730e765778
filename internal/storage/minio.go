package storage

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"campuseats/internal/config"
)

const (
	uploadURLExpiry = 10 * time.Minute
	readURLExpiry   = 24 * time.Hour
)

// ObjectStore defines image blob operations. Images are referenced by
// opaque object keys on posts and reviews; URLs are resolved at read time.
type ObjectStore interface {
	PresignUpload(ctx context.Context, fileName string) (key string, uploadURL string, err error)
	ResolveURL(ctx context.Context, key string) (string, error)
	Remove(ctx context.Context, key string) error
}

// MinioStore implements ObjectStore against a MinIO/S3 bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// Ensure MinioStore implements ObjectStore
var _ ObjectStore = (*MinioStore)(nil)

// NewMinioStore connects to MinIO and ensures the image bucket exists.
func NewMinioStore(ctx context.Context, cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect minio: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &MinioStore{client: client, bucket: cfg.MinioBucket}, nil
}

// PresignUpload returns a fresh object key and a presigned PUT URL the
// client uploads the image to directly.
func (s *MinioStore) PresignUpload(ctx context.Context, fileName string) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("images/%s%s", uuid.New().String(), ext)

	u, err := s.client.PresignedPutObject(ctx, s.bucket, key, uploadURLExpiry)
	if err != nil {
		return "", "", fmt.Errorf("presign upload: %w", err)
	}
	return key, u.String(), nil
}

// ResolveURL returns a presigned GET URL for an object key.
func (s *MinioStore) ResolveURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	params := url.Values{}
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		params.Set("response-content-type", ct)
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, readURLExpiry, params)
	if err != nil {
		return "", fmt.Errorf("presign read: %w", err)
	}
	return u.String(), nil
}

// Remove deletes an object.
func (s *MinioStore) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

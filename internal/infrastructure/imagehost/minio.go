package imagehost

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioHost stores profile pictures in a MinIO (S3-compatible) bucket.
type MinioHost struct {
	client    *minio.Client
	bucket    string
	publicURL string // base URL for serving objects; defaults to the endpoint
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	PublicURL string
}

// NewMinioHost connects to MinIO and ensures the bucket exists.
func NewMinioHost(ctx context.Context, cfg MinioConfig) (*MinioHost, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	bctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(bctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(bctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("minio bucket create: %w", err)
		}
	}

	base := cfg.PublicURL
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = scheme + "://" + cfg.Endpoint
	}
	return &MinioHost{client: client, bucket: cfg.Bucket, publicURL: strings.TrimRight(base, "/")}, nil
}

func (m *MinioHost) Upload(ctx context.Context, r io.Reader, size int64, filename, folder, contentType string) (*UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.NewString() + ext
	objectPath := filepath.ToSlash(filepath.Join(folder, name))

	_, err := m.client.PutObject(ctx, m.bucket, objectPath, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	return &UploadResult{
		FileID: objectPath,
		URL:    fmt.Sprintf("%s/%s/%s", m.publicURL, m.bucket, objectPath),
		Name:   name,
	}, nil
}

func (m *MinioHost) Delete(ctx context.Context, fileID string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, fileID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

var _ ImageHost = (*MinioHost)(nil)

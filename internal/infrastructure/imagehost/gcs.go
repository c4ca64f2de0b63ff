package imagehost

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// GCSHost stores profile pictures in a Google Cloud Storage bucket.
// FileID is the object path inside the bucket.
type GCSHost struct {
	client *storage.Client
	bucket string
}

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

func NewGCSHost(client *storage.Client, bucket string) *GCSHost {
	return &GCSHost{client: client, bucket: bucket}
}

func (g *GCSHost) Upload(ctx context.Context, r io.Reader, size int64, filename, folder, contentType string) (*UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.NewString() + ext
	objectPath := filepath.ToSlash(filepath.Join(folder, name))

	wc := g.client.Bucket(g.bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	if err := wc.Close(); err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	return &UploadResult{
		FileID: objectPath,
		URL:    publicURL(g.bucket, objectPath),
		Name:   name,
	}, nil
}

func (g *GCSHost) Delete(ctx context.Context, fileID string) error {
	if err := g.client.Bucket(g.bucket).Object(fileID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// publicURL builds a public URL for an object (assuming public read access or signed URLs)
func publicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}

var _ ImageHost = (*GCSHost)(nil)

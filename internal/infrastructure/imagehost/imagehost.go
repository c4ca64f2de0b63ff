package imagehost

import (
	"context"
	"io"
)

// UploadResult describes a stored image: FileID is the opaque handle used for
// later deletion, URL is the public address, Name the stored object name.
type UploadResult struct {
	FileID string
	URL    string
	Name   string
}

// ImageHost is the capability the account service uses for profile pictures.
// Implementations wrap an external object store; callers treat Delete as
// best-effort.
type ImageHost interface {
	Upload(ctx context.Context, r io.Reader, size int64, filename, folder, contentType string) (*UploadResult, error)
	Delete(ctx context.Context, fileID string) error
}

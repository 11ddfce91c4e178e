package storage

import (
	"context"
	"io"
)

// PhotoStore captures the file-storage contract the fleet service needs:
// upload a photo under a name and get back its public URL, or delete a
// previously uploaded photo by that URL.
type PhotoStore interface {
	UploadPhoto(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	DeletePhoto(ctx context.Context, url string) error
}

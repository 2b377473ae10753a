package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/go-todo-session/pkg/helpers"
)

const uploadTimeout = 30 * time.Second

// GCSExporter writes todo exports into a Cloud Storage bucket.
type GCSExporter struct {
	Client *storage.Client
	Bucket string
}

func NewGCSExporter(client *storage.Client, bucket string) *GCSExporter {
	return &GCSExporter{Client: client, Bucket: bucket}
}

// Upload streams r into objectPath in one request and returns the object URL.
// A failed copy aborts the write so no partial export is left behind.
func (e *GCSExporter) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := e.Client.Bucket(e.Bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.ContentDisposition = "attachment"
	w.CacheControl = "private, max-age=0"
	w.ChunkSize = 0
	if _, err := io.Copy(w, r); err != nil {
		cancel()
		_ = w.Close()
		return "", fmt.Errorf("gcs write %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs close %s: %w", objectPath, err)
	}
	return helpers.ObjectURL(e.Bucket, objectPath), nil
}

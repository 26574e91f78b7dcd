package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// Asset is the stable reference object storage hands back for an upload.
// ID is the object path inside the bucket and is what Destroy takes.
type Asset struct {
	ID  string
	URL string
}

// GCS uploads and deletes binary assets in a single bucket.
type GCS struct {
	client *gcs.Client
	bucket string
}

// NewClient creates a Google Cloud Storage client. If credsPath is empty,
// Application Default Credentials are used.
func NewClient(ctx context.Context, credsPath string) (*gcs.Client, error) {
	if credsPath == "" {
		return gcs.NewClient(ctx)
	}
	return gcs.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

func NewGCS(client *gcs.Client, bucket string) *GCS {
	return &GCS{client: client, bucket: bucket}
}

// Upload streams r into folder/<uuid><ext> and returns the asset reference.
func (s *GCS) Upload(ctx context.Context, r io.Reader, folder, filename, contentType string) (Asset, error) {
	ext := strings.ToLower(path.Ext(filename))
	objectPath := path.Join(folder, uuid.NewString()+ext)

	wc := s.client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return Asset{}, err
	}
	if err := wc.Close(); err != nil {
		return Asset{}, err
	}
	return Asset{ID: objectPath, URL: publicURL(s.bucket, objectPath)}, nil
}

// Destroy deletes the object by its id. Callers treat failure as
// best-effort; nothing is retried here.
func (s *GCS) Destroy(ctx context.Context, id string) error {
	return s.client.Bucket(s.bucket).Object(id).Delete(ctx)
}

func publicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}

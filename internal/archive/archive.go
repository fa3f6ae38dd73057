package archive

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// Store keeps raw CSV snapshots of fetched sheets in a GCS bucket.
// It assumes Application Default Credentials are configured (gcloud auth application-default login).
type Store struct {
	client *storage.Client
	bucket string
	now    func() time.Time
}

// NewStore creates a Store with its own storage client. Callers must Close it.
func NewStore(ctx context.Context, bucket string) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &Store{client: client, bucket: bucket, now: time.Now}, nil
}

// Close closes the storage client.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// SaveSnapshot writes data under snapshots/YYYY/MM/DD/<runID>.csv and returns its gs:// URI.
func (s *Store) SaveSnapshot(ctx context.Context, runID string, data []byte) (string, error) {
	objectName := ObjectName(s.now(), runID)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = "text/csv"
	w.Metadata = map[string]string{"run_id": runID}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("SaveSnapshot: writing %s: %w", objectName, err)
	}

	// Close to finalize the upload
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("SaveSnapshot: finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", s.bucket, objectName), nil
}

// FetchSnapshot downloads the bytes stored at a gs:// URI.
func (s *Store) FetchSnapshot(ctx context.Context, gcsURI string) ([]byte, error) {
	bucketName, objectPath, err := ParseGCSURI(gcsURI)
	if err != nil {
		return nil, err
	}

	rc, err := s.client.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchSnapshot: reading object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("FetchSnapshot: reading bytes: %w", err)
	}

	return data, nil
}

// ObjectName builds the snapshot object name for a run.
func ObjectName(t time.Time, runID string) string {
	return path.Join("snapshots", t.UTC().Format("2006/01/02"), runID+".csv")
}

// ParseGCSURI splits "gs://bucket/path/to/object" into bucket and object path.
func ParseGCSURI(gcsURI string) (string, string, error) {
	if !strings.HasPrefix(gcsURI, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", gcsURI)
	}

	trimmed := strings.TrimPrefix(gcsURI, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", gcsURI)
	}

	return parts[0], parts[1], nil
}

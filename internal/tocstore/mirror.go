// Package tocstore publishes ingested table-of-contents files to an object
// store so that other catalog replicas can serve them.
package tocstore

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Mirror copies a local file to shared storage under objectName.
type Mirror interface {
	Publish(ctx context.Context, localPath, objectName string) error
}

// Config holds the S3-compatible endpoint settings.
type Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Secure    bool
}

// Enabled reports whether an endpoint and bucket are configured.
func (c Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// MinioMirror publishes to an S3-compatible bucket.
type MinioMirror struct {
	client *minio.Client
	bucket string
}

func NewMinio(cfg Config) (*MinioMirror, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}
	return &MinioMirror{client: client, bucket: cfg.Bucket}, nil
}

func (m *MinioMirror) Publish(ctx context.Context, localPath, objectName string) error {
	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := m.client.FPutObject(ctx, m.bucket, objectName, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", objectName, err)
	}

	slog.Info("Published TOC to object store", "bucket", m.bucket, "object", objectName, "bytes", info.Size)
	return nil
}

// Nop discards every publish.
type Nop struct{}

func (Nop) Publish(context.Context, string, string) error { return nil }

// New returns a MinioMirror when cfg is enabled and Nop otherwise.
func New(cfg Config) (Mirror, error) {
	if !cfg.Enabled() {
		return Nop{}, nil
	}
	return NewMinio(cfg)
}

package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ayush/devcamper/backend/internal/apperr"
)

// MinioStore keeps uploaded bootcamp photos in a MinIO bucket. Object keys
// are the photo name under a fixed prefix.
type MinioStore struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewMinioStore(ctx context.Context, endpoint, accessKey, secretKey, bucket, prefix string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	// Ensure bucket exists
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &MinioStore{client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *MinioStore) key(name string) string {
	return path.Join(s.prefix, name)
}

// PutPhoto streams size bytes from r into the photo called name.
func (s *MinioStore) PutPhoto(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put photo %s: %w", name, err)
	}
	return nil
}

// Photo is an open stored photo. Callers close Body.
type Photo struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// OpenPhoto opens the photo called name for reading.
func (s *MinioStore) OpenPhoto(ctx context.Context, name string) (*Photo, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get photo %s: %w", name, err)
	}

	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return nil, apperr.NotFound("No photo named %s", name)
		}
		return nil, fmt.Errorf("stat photo %s: %w", name, err)
	}
	return &Photo{Body: obj, ContentType: info.ContentType, Size: info.Size}, nil
}

// RemovePhoto deletes the photo called name. Missing photos are not an error.
func (s *MinioStore) RemovePhoto(ctx context.Context, name string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove photo %s: %w", name, err)
	}
	return nil
}

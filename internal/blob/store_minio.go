package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"mobywatel/internal/platform/config"
	id "mobywatel/pkg/domain"
	"mobywatel/pkg/sentinel"
)

// MinIOStore keeps photos in a MinIO bucket, one object per request.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore connects to MinIO and creates the bucket if it is missing.
func NewMinIOStore(ctx context.Context, cfg config.MinIO) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to minio: %w", err)
	}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
	}
	return &MinIOStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *MinIOStore) Store(ctx context.Context, citizenID id.CitizenID, requestID id.RequestID, data []byte, contentType string) (string, error) {
	if err := validatePhoto(data, contentType); err != nil {
		return "", err
	}
	ref := fmt.Sprintf("%s/%s", citizenID, requestID)
	_, err := s.client.PutObject(ctx, s.bucket, ref, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("store photo %q: %w", ref, err)
	}
	return ref, nil
}

func (s *MinIOStore) Resolve(ctx context.Context, ref string) ([]byte, string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, ref, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("fetch photo %q: %w", ref, err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, "", sentinel.ErrNotFound
		}
		return nil, "", fmt.Errorf("stat photo %q: %w", ref, err)
	}
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", fmt.Errorf("read photo %q: %w", ref, err)
	}
	return data, info.ContentType, nil
}

// DeleteByCitizen removes every object under the citizen's prefix, run when
// the citizen record itself is deleted.
func (s *MinIOStore) DeleteByCitizen(ctx context.Context, citizenID id.CitizenID) error {
	prefix := citizenID.String() + "/"
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for obj := range objects {
		if obj.Err != nil {
			return fmt.Errorf("list photos %q: %w", prefix, obj.Err)
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("remove photo %q: %w", obj.Key, err)
		}
	}
	return nil
}

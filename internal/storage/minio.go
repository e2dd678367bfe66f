package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"shopapi/internal/config"
)

const bucketCheckTimeout = 10 * time.Second

// minioBucket writes to one bucket of a MinIO or S3-compatible server.
type minioBucket struct {
	client *minio.Client
	name   string
}

func validateMinIO(cfg config.MinIOConfig) error {
	switch {
	case cfg.Endpoint == "":
		return errors.New("minio: endpoint is required")
	case cfg.AccessKey == "" || cfg.SecretKey == "":
		return errors.New("minio: credentials are required")
	case cfg.Bucket == "":
		return errors.New("minio: bucket is required")
	}
	return nil
}

// NewMinIO connects to the configured server and creates the receipt bucket on first use.
func NewMinIO(ctx context.Context, cfg config.MinIOConfig) (Storage, error) {
	if err := validateMinIO(cfg); err != nil {
		return nil, err
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	b := &minioBucket{client: client, name: cfg.Bucket}
	if err := b.ensure(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *minioBucket) ensure(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, bucketCheckTimeout)
	defer cancel()

	ok, err := b.client.BucketExists(ctx, b.name)
	if err != nil {
		return fmt.Errorf("minio bucket %s: %w", b.name, err)
	}
	if ok {
		return nil
	}
	if err := b.client.MakeBucket(ctx, b.name, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("minio make bucket %s: %w", b.name, err)
	}
	return nil
}

func (b *minioBucket) Put(ctx context.Context, obj Object) (ObjectInfo, error) {
	up, err := b.client.PutObject(ctx, b.name, obj.Key, obj.Body, obj.Size, minio.PutObjectOptions{
		ContentType:  obj.ContentType,
		UserMetadata: obj.Metadata,
	})
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{Key: up.Key, Size: up.Size, ETag: up.ETag}, nil
}

// Package storage mirrors profile images into an S3 compatible bucket so the
// portal can hand out short lived links instead of proxying the gateway.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/config"
)

var ErrObjectNotFound = errors.New("object not found")

type ObjectStore struct {
	client *minio.Client
	cfg    config.StorageConfig
}

func NewObjectStore(cfg config.StorageConfig) (*ObjectStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &ObjectStore{
		client: client,
		cfg:    cfg,
	}, nil
}

func (s *ObjectStore) EnsureBucket(ctx context.Context) error {
	bucket := s.cfg.BucketAvatars
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}
	return nil
}

// ObjectKey normalises a gateway image path ("uploads/a.png", "/uploads/a.png")
// into a bucket key. It returns "" for paths that try to escape the bucket.
func ObjectKey(imagePath string) string {
	p := strings.TrimSpace(imagePath)
	if p == "" || strings.Contains(p, "..") || strings.Contains(p, "://") {
		return ""
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+p), "/")
	if cleaned == "" || cleaned == "." {
		return ""
	}
	return "avatars/" + cleaned
}

func (s *ObjectStore) PutAvatar(ctx context.Context, imagePath string, data []byte, contentType string) error {
	key := ObjectKey(imagePath)
	if key == "" {
		return fmt.Errorf("invalid avatar path %q", imagePath)
	}
	_, err := s.client.PutObject(ctx, s.cfg.BucketAvatars, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "private, max-age=300",
	})
	if err != nil {
		return fmt.Errorf("put avatar %s: %w", key, err)
	}
	return nil
}

// PresignAvatar returns a time limited GET link for a mirrored avatar, or
// ErrObjectNotFound when it was never mirrored.
func (s *ObjectStore) PresignAvatar(ctx context.Context, imagePath string) (*url.URL, error) {
	key := ObjectKey(imagePath)
	if key == "" {
		return nil, ErrObjectNotFound
	}
	if _, err := s.client.StatObject(ctx, s.cfg.BucketAvatars, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("stat avatar %s: %w", key, err)
	}
	ttl := s.cfg.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	u, err := s.client.PresignedGetObject(ctx, s.cfg.BucketAvatars, key, ttl, nil)
	if err != nil {
		return nil, fmt.Errorf("presign avatar %s: %w", key, err)
	}
	return u, nil
}

func (s *ObjectStore) Ping(ctx context.Context) error {
	if _, err := s.client.BucketExists(ctx, s.cfg.BucketAvatars); err != nil {
		return fmt.Errorf("object store: %w", err)
	}
	return nil
}

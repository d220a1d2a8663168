package storage

import (
	"context"
	"time"

	"github.com/contentgallery/internal/config"
	"github.com/gofiber/storage/s3/v2"
)

// S3 keeps payloads in an S3 compatible bucket.
type S3 struct {
	bucket    *s3.Storage
	publicURL string
	now       func() time.Time
}

// NewS3 connects to the bucket described by cfg.
func NewS3(cfg config.S3Config) *S3 {
	bucket := s3.New(s3.Config{
		Endpoint: cfg.Endpoint,
		Bucket:   cfg.Bucket,
		Region:   cfg.Region,
		Credentials: s3.Credentials{
			AccessKey:       cfg.AccessKey,
			SecretAccessKey: cfg.SecretKey,
		},
		MaxAttempts:    3,
		RequestTimeout: 10 * time.Second,
		Reset:          false,
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = cfg.Endpoint + "/" + cfg.Bucket
	}
	return &S3{bucket: bucket, publicURL: publicURL, now: time.Now}
}

// Save uploads data under a fresh key derived from name.
func (s *S3) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := NewKey(name, s.now())
	if err := s.bucket.Set(key, data, 0); err != nil {
		return "", err
	}
	return key, nil
}

// Delete removes the object for key.
func (s *S3) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.bucket.Delete(key)
}

// URL returns the public URL of key.
func (s *S3) URL(key string) string {
	return joinURL(s.publicURL, key)
}

// Close releases the underlying client.
func (s *S3) Close() error {
	return s.bucket.Close()
}

package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ImageCache stores proxied article images in a MinIO bucket so repeat
// requests don't refetch from the upstream publisher.
type ImageCache struct {
	client *minio.Client
	bucket string
}

// NewImageCache creates the MinIO client and ensures the bucket exists.
func NewImageCache(cfg *MinIOConfig) (*ImageCache, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	c := &ImageCache{client: mc, bucket: cfg.Bucket}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
		// tolerate "already exists" style errors
		exist, xerr := mc.BucketExists(ctx, c.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return c, nil
}

// cacheKey derives a stable object key from the source URL.
func cacheKey(srcURL string) string {
	sum := sha256.Sum256([]byte(srcURL))
	return "images/" + hex.EncodeToString(sum[:])
}

// Put stores the image bytes fetched from srcURL.
func (c *ImageCache) Put(ctx context.Context, srcURL string, r io.Reader, size int64, contentType string) error {
	_, err := c.client.PutObject(ctx, c.bucket, cacheKey(srcURL), r, size,
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

// Get returns the cached image for srcURL along with its content type, or an
// error when the object is absent.
func (c *ImageCache) Get(ctx context.Context, srcURL string) (io.ReadCloser, string, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, cacheKey(srcURL), minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, "", err
	}
	return obj, stat.ContentType, nil
}

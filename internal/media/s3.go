// Package media proxies uploaded book assets to an S3-compatible object
// store and hands back public URLs plus opaque keys for later deletion.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/spec-kit/bookstore-service/internal/config"
)

// Asset is the result of a successful upload.
type Asset struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Store abstracts the media host: upload with a folder hint, delete by key.
type Store interface {
	Upload(ctx context.Context, folder, filename, contentType string, body io.Reader) (*Asset, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(rawURL string) string
}

// S3Store implements Store over an S3-compatible endpoint (MinIO in
// development, AWS in production).
type S3Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewS3Store builds the client from service configuration.
func NewS3Store(ctx context.Context, cfg config.MediaConfig) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	base := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.Endpoint, "/"), cfg.Bucket)
	}

	return &S3Store{client: client, bucket: cfg.Bucket, publicBaseURL: base}, nil
}

// Upload stores the object under a timestamped key inside the folder and
// returns its public URL.
func (s *S3Store) Upload(ctx context.Context, folder, filename, contentType string, body io.Reader) (*Asset, error) {
	key := storageKey(folder, filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, err
	}

	return &Asset{URL: s.publicBaseURL + "/" + key, Key: key}, nil
}

// Delete removes the object by key.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// KeyFromURL extracts the storage key from a URL previously returned by
// Upload. Returns "" for URLs outside this store.
func (s *S3Store) KeyFromURL(rawURL string) string {
	prefix := s.publicBaseURL + "/"
	if !strings.HasPrefix(rawURL, prefix) {
		return ""
	}
	return strings.TrimPrefix(rawURL, prefix)
}

func storageKey(folder, filename string) string {
	base := path.Base(filename)
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	base = strings.ReplaceAll(base, " ", "-")
	return fmt.Sprintf("%s/%d-%s", folder, time.Now().UnixMilli(), base)
}

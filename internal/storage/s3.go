package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/dentalcore/backupd/internal/config"
)

// Client stores backup archives as opaque blobs in a single bucket,
// namespaced per tenant via the key prefix. PutObject semantics make
// re-uploads of the same key silent overwrites, which keeps reruns
// idempotent on key collision.
type Client struct {
	logger zerolog.Logger
	s3     *s3.Client
	bucket string
}

// NewClient creates a Client for the configured endpoint and bucket.
func NewClient(logger zerolog.Logger, cfg *config.Config) *Client {
	opts := s3.Options{
		Region:      cfg.S3Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
	}
	if cfg.S3Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.S3Endpoint)
		opts.UsePathStyle = true
	}

	return &Client{
		logger: logger.With().Str("component", "archive-store").Logger(),
		s3:     s3.New(opts),
		bucket: cfg.S3Bucket,
	}
}

// Upload writes the archive bytes under the given key and returns the key as
// the stored location.
func (c *Client) Upload(ctx context.Context, key string, data []byte) (string, error) {
	c.logger.Info().Str("key", key).Int("size", len(data)).Msg("uploading archive")

	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("upload archive %s: %w", key, err)
	}

	return key, nil
}

// Download fetches the archive bytes stored under the given key.
func (c *Client) Download(ctx context.Context, key string) ([]byte, error) {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("download archive %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read archive %s: %w", key, err)
	}
	return data, nil
}

// Delete removes the archive object. Callers must only remove the ledger row
// after Delete succeeds.
func (c *Client) Delete(ctx context.Context, key string) error {
	c.logger.Info().Str("key", key).Msg("deleting archive")

	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete archive %s: %w", key, err)
	}
	return nil
}

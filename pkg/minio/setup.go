package minio

import (
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	// ErrMissingEndpoint is returned when no endpoint is configured.
	ErrMissingEndpoint = errors.New("minio endpoint cannot be empty")

	// ErrBucketNotFound is returned when the configured bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")

	// ErrObjectNotFound is returned by Open when the key does not exist.
	ErrObjectNotFound = errors.New("object not found")
)

// Logger defines the interface for logging operations within the MinIO client.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// Minio reads CSV objects from a single bucket and hands them to the
// postgres COPY import as streams.
type Minio struct {
	// Client is the standard MinIO client for direct access.
	Client *minio.Client

	cfg    Config
	logger Logger
}

// NewClient connects to the configured endpoint and verifies that the bucket
// exists. Unlike an upload target, a missing bucket is an error: there is
// nothing to import from it.
func NewClient(ctx context.Context, cfg Config, logger Logger) (*Minio, error) {
	fields := map[string]interface{}{
		"endpoint": cfg.Connection.Endpoint,
		"region":   cfg.Connection.Region,
		"secure":   cfg.Connection.UseSSL,
		"bucket":   cfg.Connection.BucketName,
	}

	client, err := connectToMinio(cfg, logger)
	if err != nil {
		logger.Error("failed to connect to minio", err, fields)
		return nil, err
	}

	m := &Minio{
		Client: client,
		cfg:    cfg,
		logger: logger,
	}

	if err := m.ensureBucketExists(ctx); err != nil {
		logger.Error("failed to verify bucket", err, fields)
		return nil, err
	}

	return m, nil
}

// connectToMinio creates the MinIO client from static credentials.
func connectToMinio(cfg Config, logger Logger) (*minio.Client, error) {
	if cfg.Connection.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}

	logger.Info("Connecting to MinIO", nil, map[string]interface{}{
		"endpoint": cfg.Connection.Endpoint,
		"region":   cfg.Connection.Region,
		"secure":   cfg.Connection.UseSSL,
	})

	return minio.New(cfg.Connection.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Connection.AccessKeyID, cfg.Connection.SecretAccessKey, ""),
		Secure: cfg.Connection.UseSSL,
		Region: cfg.Connection.Region,
	})
}

// ensureBucketExists checks that the configured bucket is reachable.
func (m *Minio) ensureBucketExists(ctx context.Context) error {
	bucketName := m.cfg.Connection.BucketName
	if bucketName == "" {
		return fmt.Errorf("bucket name is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, connectionValidationTime)
	defer cancel()

	exists, err := m.Client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists, bucket: %v, err: %w", bucketName, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, bucketName)
	}
	return nil
}

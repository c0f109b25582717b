package minio

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
)

// Open returns a stream over the object stored under objectKey.
// The object is stat'ed first so a missing key fails here, wrapping
// ErrObjectNotFound, instead of on the first read. The caller closes the stream.
func (m *Minio) Open(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	object, err := m.Client.GetObject(ctx, m.cfg.Connection.BucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, translateError(objectKey, err)
	}

	info, err := object.Stat()
	if err != nil {
		_ = object.Close()
		return nil, translateError(objectKey, err)
	}

	m.logger.Debug("Opened object", nil, map[string]interface{}{
		"bucket": m.cfg.Connection.BucketName,
		"key":    objectKey,
		"size":   info.Size,
	})
	return object, nil
}

// Put uploads an object to the configured bucket. A zero or missing size
// streams the reader with unknown length.
func (m *Minio) Put(ctx context.Context, objectKey string, reader io.Reader, size ...int64) (int64, error) {
	actualSize := unknownSize
	if len(size) > 0 && size[0] != 0 {
		actualSize = size[0]
	}

	response, err := m.Client.PutObject(ctx, m.cfg.Connection.BucketName, objectKey, reader, actualSize, minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return 0, err
	}
	return response.Size, nil
}

func translateError(objectKey string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, objectKey)
	}
	return fmt.Errorf("failed to get object %s: %w", objectKey, err)
}

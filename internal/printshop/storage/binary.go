// Package storage holds the binary store behind the attachment manager:
// object storage when configured and reachable, a local directory otherwise.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/folkstudio/printflow/internal/printshop/entity"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const remoteRefPrefix = "minio://"

// BinaryStore persists attachment content and resolves the references the
// order record stores. minioClient may be nil; then every write is local.
type BinaryStore struct {
	minioClient *minio.Client
	bucket      string
	localDir    string
	logger      *zap.Logger
}

func NewBinaryStore(minioClient *minio.Client, bucket, localDir string, logger *zap.Logger) *BinaryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BinaryStore{
		minioClient: minioClient,
		bucket:      bucket,
		localDir:    localDir,
		logger:      logger,
	}
}

// Put stores content under key and returns the reference to persist on the
// order. localOnly is true when the bytes only reached the local directory.
func (s *BinaryStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, bool, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", false, fmt.Errorf("read attachment content: %w", err)
	}

	if s.minioClient != nil {
		_, err = s.minioClient.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
			minio.PutObjectOptions{ContentType: contentType})
		if err == nil {
			return remoteRefPrefix + s.bucket + "/" + key, false, nil
		}
		s.logger.Warn("object storage write failed, falling back to local store",
			zap.String("key", key), zap.Error(err))
	}

	if err := s.putLocal(key, data); err != nil {
		return "", false, err
	}
	return entity.LocalRefPrefix + key, true, nil
}

// Get opens the content behind a reference, either form.
func (s *BinaryStore) Get(ctx context.Context, ref string) (io.ReadCloser, error) {
	if key, ok := strings.CutPrefix(ref, entity.LocalRefPrefix); ok {
		return os.Open(filepath.Join(s.localDir, filepath.Base(key)))
	}
	if rest, ok := strings.CutPrefix(ref, remoteRefPrefix); ok {
		bucket, key, found := strings.Cut(rest, "/")
		if !found {
			return nil, fmt.Errorf("malformed attachment ref: %s", ref)
		}
		if s.minioClient == nil {
			return nil, fmt.Errorf("object storage not configured for ref: %s", ref)
		}
		return s.minioClient.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	}
	return nil, fmt.Errorf("unknown attachment ref scheme: %s", ref)
}

func (s *BinaryStore) putLocal(key string, data []byte) error {
	if err := os.MkdirAll(s.localDir, 0755); err != nil {
		return fmt.Errorf("create local attachment dir: %w", err)
	}
	path := filepath.Join(s.localDir, filepath.Base(key))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write local attachment: %w", err)
	}
	return nil
}

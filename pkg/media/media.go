// Package media keeps course and banner assets in a MinIO bucket.
package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"bilingual-lms/pkg/config"
	"bilingual-lms/pkg/logger"
	"bilingual-lms/pkg/store"
)

// ObjectStore is the part of *minio.Client the store uses.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

type Store struct {
	client ObjectStore
	bucket string
	base   string
	log    *logger.Logger
}

func NewClient(cfg *config.Config) (*minio.Client, error) {
	return minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioSecure,
	})
}

// NewStore serves objects of bucket under base, e.g. "http://localhost:9000".
func NewStore(client ObjectStore, bucket, base string, log *logger.Logger) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		base:   strings.TrimRight(base, "/"),
		log:    log.With("service", "MediaStore", "bucket", bucket),
	}
}

func (s *Store) EnsureBucket(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if ok {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	s.log.Info("bucket created")
	return nil
}

// URL is the public address of object.
func (s *Store) URL(object string) string {
	return s.base + "/" + path.Join(s.bucket, object)
}

func (s *Store) Put(ctx context.Context, object string, r io.Reader, size int64, contentType string) (string, error) {
	if _, err := s.client.PutObject(ctx, s.bucket, object, r, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("put %s: %w", object, err)
	}
	return s.URL(object), nil
}

// UploadFile stores the file at local under object unless the object already
// exists.
func (s *Store) UploadFile(ctx context.Context, object, local string) (string, store.Outcome, error) {
	exists, err := s.exists(ctx, object)
	if err != nil {
		return "", store.Failed, err
	}
	if exists {
		return s.URL(object), store.AlreadyExists, nil
	}

	f, err := os.Open(local)
	if err != nil {
		return "", store.Failed, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", store.Failed, err
	}
	contentType := mime.TypeByExtension(filepath.Ext(local))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	u, err := s.Put(ctx, object, f, info.Size(), contentType)
	if err != nil {
		return "", store.Failed, err
	}
	s.log.Info("object uploaded", "object", object, "size", info.Size())
	return u, store.Created, nil
}

func (s *Store) PresignedURL(ctx context.Context, object string, expires time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, object, expires, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", object, err)
	}
	return u.String(), nil
}

func (s *Store) exists(ctx context.Context, object string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, object, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", object, err)
}

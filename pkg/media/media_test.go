package media

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilingual-lms/pkg/logger"
	"bilingual-lms/pkg/store"
)

type fakeMinio struct {
	buckets map[string]bool
	objects map[string][]byte
	types   map[string]string
}

func newFakeMinio() *fakeMinio {
	return &fakeMinio{buckets: map[string]bool{}, objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeMinio) BucketExists(_ context.Context, bucket string) (bool, error) {
	return f.buckets[bucket], nil
}

func (f *fakeMinio) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.buckets[bucket] = true
	return nil
}

func (f *fakeMinio) PutObject(_ context.Context, bucket, object string, r io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.objects[bucket+"/"+object] = b
	f.types[bucket+"/"+object] = opts.ContentType
	return minio.UploadInfo{Bucket: bucket, Key: object, Size: int64(len(b))}, nil
}

func (f *fakeMinio) StatObject(_ context.Context, bucket, object string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	b, ok := f.objects[bucket+"/"+object]
	if !ok {
		return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}
	}
	return minio.ObjectInfo{Key: object, Size: int64(len(b))}, nil
}

func (f *fakeMinio) PresignedGetObject(_ context.Context, bucket, object string, expires time.Duration, _ url.Values) (*url.URL, error) {
	return url.Parse("http://minio.local/" + bucket + "/" + object + "?X-Amz-Expires=" + expires.String())
}

func TestEnsureBucket(t *testing.T) {
	fm := newFakeMinio()
	s := NewStore(fm, "lms-media", "http://minio.local/", logger.NewNop())
	require.NoError(t, s.EnsureBucket(context.Background()))
	require.NoError(t, s.EnsureBucket(context.Background()))
	assert.True(t, fm.buckets["lms-media"])
}

func TestUploadFileOnce(t *testing.T) {
	fm := newFakeMinio()
	s := NewStore(fm, "lms-media", "http://minio.local/", logger.NewNop())
	local := filepath.Join(t.TempDir(), "hero.png")
	require.NoError(t, os.WriteFile(local, []byte("png-bytes"), 0o600))

	u, out, err := s.UploadFile(context.Background(), "banners/hero.png", local)
	require.NoError(t, err)
	assert.Equal(t, store.Created, out)
	assert.Equal(t, "http://minio.local/lms-media/banners/hero.png", u)
	assert.Equal(t, "image/png", fm.types["lms-media/banners/hero.png"])
	assert.Equal(t, []byte("png-bytes"), fm.objects["lms-media/banners/hero.png"])

	u2, out, err := s.UploadFile(context.Background(), "banners/hero.png", local)
	require.NoError(t, err)
	assert.Equal(t, store.AlreadyExists, out)
	assert.Equal(t, u, u2)
}

func TestUploadMissingFile(t *testing.T) {
	s := NewStore(newFakeMinio(), "b", "http://minio.local", logger.NewNop())
	_, out, err := s.UploadFile(context.Background(), "x.png", filepath.Join(t.TempDir(), "absent.png"))
	assert.Error(t, err)
	assert.Equal(t, store.Failed, out)
}

func TestPresignedURL(t *testing.T) {
	s := NewStore(newFakeMinio(), "b", "http://minio.local", logger.NewNop())
	u, err := s.PresignedURL(context.Background(), "docs/a.pdf", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, u, "/b/docs/a.pdf")
}

package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilingual-lms/pkg/i18n"
	"bilingual-lms/pkg/models"
	"bilingual-lms/pkg/store"
	"bilingual-lms/pkg/testutil"
)

type memCache struct {
	data    map[string]string
	ttls    map[string]time.Duration
	hits    int
	misses  int
	readErr error
}

func newMemCache() *memCache {
	return &memCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memCache) Get(_ context.Context, key string) *redis.StringCmd {
	if m.readErr != nil {
		return redis.NewStringResult("", m.readErr)
	}
	v, ok := m.data[key]
	if !ok {
		m.misses++
		return redis.NewStringResult("", redis.Nil)
	}
	m.hits++
	return redis.NewStringResult(v, nil)
}

func (m *memCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	m.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (m *memCache) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestGetReadsThrough(t *testing.T) {
	db := testutil.DB(t)
	cache := newMemCache()
	svc := NewService(db, testutil.Log(), cache, time.Minute)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, &models.SystemSetting{Key: "site_name", ValueAr: "أكاديمية", ValueEn: "Academy"}))

	first, err := svc.Get(ctx, "site_name")
	require.NoError(t, err)
	assert.Equal(t, "Academy", first.ValueEn)
	assert.Equal(t, 1, cache.misses)
	assert.Equal(t, time.Minute, cache.ttls["settings:site_name"])

	// A hit must not touch the database.
	require.NoError(t, db.Model(&models.SystemSetting{}).Where("id = ?", first.ID).UpdateColumn("value_en", "Changed").Error)
	second, err := svc.Get(ctx, "site_name")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, "Academy", second.ValueEn)
}

func TestSetInvalidates(t *testing.T) {
	db := testutil.DB(t)
	cache := newMemCache()
	svc := NewService(db, testutil.Log(), cache, time.Minute)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, &models.SystemSetting{Key: "support_email", Value: "help@example.com"}))
	_, err := svc.Get(ctx, "support_email")
	require.NoError(t, err)
	require.Contains(t, cache.data, "settings:support_email")

	require.NoError(t, svc.Set(ctx, &models.SystemSetting{Key: "support_email", Value: "support@example.com"}))
	assert.NotContains(t, cache.data, "settings:support_email")
	got, err := svc.Get(ctx, "support_email")
	require.NoError(t, err)
	assert.Equal(t, "support@example.com", got.Value)
	assert.EqualValues(t, 1, testutil.Count(t, db, &models.SystemSetting{}))
}

func TestCacheFailureFallsBackToDB(t *testing.T) {
	db := testutil.DB(t)
	cache := newMemCache()
	cache.readErr = errors.New("connection refused")
	svc := NewService(db, testutil.Log(), cache, time.Minute)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, &models.SystemSetting{Key: "currency", Value: "KWD"}))
	got, err := svc.Get(ctx, "currency")
	require.NoError(t, err)
	assert.Equal(t, "KWD", got.Value)
}

func TestLocalized(t *testing.T) {
	db := testutil.DB(t)
	svc := NewService(db, testutil.Log(), nil, 0)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, &models.SystemSetting{Key: "welcome", ValueAr: "أهلا", ValueEn: "Hello"}))
	require.NoError(t, svc.Set(ctx, &models.SystemSetting{Key: "tagline", ValueEn: "Learn anything"}))
	require.NoError(t, svc.Set(ctx, &models.SystemSetting{Key: "currency", Value: "KWD"}))

	cases := []struct {
		key  string
		lang i18n.Lang
		want string
	}{
		{"welcome", i18n.AR, "أهلا"},
		{"welcome", i18n.EN, "Hello"},
		{"tagline", i18n.AR, "Learn anything"},
		{"currency", i18n.AR, "KWD"},
	}
	for _, tc := range cases {
		got, err := svc.Localized(ctx, tc.key, tc.lang)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.key)
	}

	_, err := svc.Localized(ctx, "missing", i18n.EN)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureKeepsExisting(t *testing.T) {
	db := testutil.DB(t)
	svc := NewService(db, testutil.Log(), nil, 0)
	ctx := context.Background()

	out, err := svc.Ensure(ctx, &models.SystemSetting{Key: "max_devices", Value: "2"})
	require.NoError(t, err)
	assert.Equal(t, store.Created, out)

	again := &models.SystemSetting{Key: "max_devices", Value: "5"}
	out, err = svc.Ensure(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, store.AlreadyExists, out)
	assert.Equal(t, "2", again.Value)
}

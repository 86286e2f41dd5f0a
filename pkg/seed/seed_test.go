package seed

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bilingual-lms/pkg/goauth"
	"bilingual-lms/pkg/kfka"
	"bilingual-lms/pkg/logger"
	"bilingual-lms/pkg/media"
	"bilingual-lms/pkg/models"
	"bilingual-lms/pkg/testutil"
)

func deps(db *gorm.DB) Deps {
	return Deps{
		DB:       db,
		Log:      testutil.Log(),
		Hasher:   goauth.NewHasher(bcrypt.MinCost),
		Password: "Passw0rd!",
	}
}

func tableCounts(t *testing.T, db *gorm.DB) map[string]int64 {
	t.Helper()
	counts := map[string]int64{}
	for _, m := range models.All() {
		stmt := &gorm.Statement{DB: db}
		require.NoError(t, stmt.Parse(m))
		counts[stmt.Schema.Table] = testutil.Count(t, db, m)
	}
	return counts
}

func TestSeedTwiceIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	data, err := Default()
	require.NoError(t, err)
	ctx := context.Background()

	first, err := NewRunner(deps(db), data).Run(ctx, nil)
	require.NoError(t, err)
	require.Len(t, first, len(Steps))
	after := tableCounts(t, db)

	second, err := NewRunner(deps(db), data).Run(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, after, tableCounts(t, db))

	for i, rep := range second {
		assert.Zero(t, rep.Created, rep.Step)
		assert.Equal(t, first[i].Created+first[i].Existing, rep.Existing, rep.Step)
	}

	assert.EqualValues(t, len(data.Users), after["users"])
	assert.EqualValues(t, len(data.Purchases), after["purchases"])
	assert.EqualValues(t, len(data.Purchases), after["payments"])
	assert.EqualValues(t, 3, after["exam_questions"])
	assert.EqualValues(t, 2, after["quiz_questions"])
}

func TestSeededInvariants(t *testing.T) {
	db := testutil.DB(t)
	data, err := Default()
	require.NoError(t, err)
	_, err = NewRunner(deps(db), data).Run(context.Background(), nil)
	require.NoError(t, err)

	var course models.Course
	require.NoError(t, db.Where("slug = ?", "go-fundamentals").Take(&course).Error)
	assert.Equal(t, 90.0, course.FinalPrice)

	var purchases []models.Purchase
	require.NoError(t, db.Where("course_id = ?", course.ID).Find(&purchases).Error)
	require.Len(t, purchases, 2)
	for _, p := range purchases {
		assert.Equal(t, course.FinalPrice, p.Amount)
		var pay models.Payment
		require.NoError(t, db.Where("purchase_id = ?", p.ID).Take(&pay).Error)
		assert.Equal(t, p.Amount, pay.Amount)
		assert.Equal(t, models.PaymentCompleted, pay.Status)
	}

	var layla models.User
	require.NoError(t, db.Where("email = ?", "layla@student.example").Take(&layla).Error)
	assert.True(t, goauth.Matches(layla.PasswordHash, "Passw0rd!"))

	var pending models.Payment
	require.NoError(t, db.Where("student_id = ? AND status = ?", layla.ID, models.PaymentPending).Take(&pending).Error)
	assert.Nil(t, pending.PaidAt)

	var welcome models.Notification
	require.NoError(t, db.Where("external_key = ?", "welcome-2026").Take(&welcome).Error)
	var recipients int64
	require.NoError(t, db.Model(&models.NotificationRecipient{}).Where("notification_id = ?", welcome.ID).Count(&recipients).Error)
	assert.EqualValues(t, 3, recipients)

	var resolved models.Ticket
	require.NoError(t, db.Where("external_key = ?", "ticket-invoice").Take(&resolved).Error)
	assert.Equal(t, models.TicketResolved, resolved.Status)
	require.NotNil(t, resolved.AdminReply)

	var setting models.SystemSetting
	require.NoError(t, db.Where(&models.SystemSetting{Key: "site_name"}).Take(&setting).Error)
	assert.Equal(t, "Knowledge Academy", setting.ValueEn)
}

func TestOnlyRunsSelectedSteps(t *testing.T) {
	db := testutil.DB(t)
	data, err := Default()
	require.NoError(t, err)
	ctx := context.Background()

	only, err := ParseOnly("users, categories")
	require.NoError(t, err)
	reports, err := NewRunner(deps(db), data).Run(ctx, only)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "users", reports[0].Step)
	assert.Equal(t, len(data.Users), reports[0].Created)
	assert.Zero(t, testutil.Count(t, db, &models.Course{}))

	// Later steps resolve earlier rows from the database.
	reports, err = NewRunner(deps(db), data).Run(ctx, []string{"courses"})
	require.NoError(t, err)
	assert.Equal(t, len(data.Courses), reports[0].Created)

	_, err = ParseOnly("users,lessons")
	assert.ErrorIs(t, err, ErrUnknownStep)
	_, err = NewRunner(deps(db), data).Run(ctx, []string{"lessons"})
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestFirstErrorAborts(t *testing.T) {
	db := testutil.DB(t)
	data := &Dataset{
		Users: []UserRow{{Email: "t@example.com", NameAr: "م", NameEn: "T", Role: models.RoleTeacher}},
		Courses: []CourseRow{
			{TitleAr: "د", TitleEn: "Orphan", Teacher: "t@example.com", Category: "Missing"},
		},
		Tickets: []TicketRow{{Key: "k", User: "t@example.com", Title: "x", Message: "y"}},
	}
	reports, err := NewRunner(deps(db), data).Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrMissingRef)
	assert.Contains(t, err.Error(), "seed courses")
	require.Len(t, reports, 3)
	assert.Equal(t, "categories", reports[2].Step)
	assert.Zero(t, testutil.Count(t, db, &models.Ticket{}))
}

func TestInvalidRowAborts(t *testing.T) {
	db := testutil.DB(t)
	data := &Dataset{Users: []UserRow{{Email: "not-an-email", NameAr: "م", NameEn: "X", Role: models.RoleStudent}}}
	_, err := NewRunner(deps(db), data).Run(context.Background(), []string{"users"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

type fakeMinio struct{ objects map[string]int64 }

func (f *fakeMinio) BucketExists(context.Context, string) (bool, error) { return true, nil }
func (f *fakeMinio) MakeBucket(context.Context, string, minio.MakeBucketOptions) error {
	return nil
}

func (f *fakeMinio) PutObject(_ context.Context, bucket, object string, r io.Reader, size int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	_, _ = io.Copy(io.Discard, r)
	f.objects[bucket+"/"+object] = size
	return minio.UploadInfo{Key: object, Size: size}, nil
}

func (f *fakeMinio) StatObject(_ context.Context, bucket, object string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if size, ok := f.objects[bucket+"/"+object]; ok {
		return minio.ObjectInfo{Key: object, Size: size}, nil
	}
	return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"}
}

func (f *fakeMinio) PresignedGetObject(context.Context, string, string, time.Duration, url.Values) (*url.URL, error) {
	return &url.URL{}, nil
}

func TestBannerAssetsUpload(t *testing.T) {
	db := testutil.DB(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go-launch.png"), []byte("png"), 0o600))
	fm := &fakeMinio{objects: map[string]int64{}}

	d := deps(db)
	d.AssetsDir = dir
	d.Media = media.NewStore(fm, "lms-media", "http://minio.local", logger.NewNop())
	data := &Dataset{Banners: []BannerRow{
		{Key: "local", Image: "go-launch.png", TitleAr: "ج", TitleEn: "Local", Active: true},
		{Key: "remote", Image: "https://cdn.example/b.png", TitleAr: "ب", TitleEn: "Remote"},
	}}

	for i := 0; i < 2; i++ {
		_, err := NewRunner(d, data).Run(context.Background(), []string{"banners"})
		require.NoError(t, err)
	}

	var local, remote models.Banner
	require.NoError(t, db.Where("external_key = ?", "local").Take(&local).Error)
	require.NoError(t, db.Where("external_key = ?", "remote").Take(&remote).Error)
	assert.Equal(t, "http://minio.local/lms-media/banners/go-launch.png", local.Image)
	assert.Equal(t, "https://cdn.example/b.png", remote.Image)
	assert.False(t, remote.Active)
	assert.Len(t, fm.objects, 1)
	assert.EqualValues(t, 2, testutil.Count(t, db, &models.Banner{}))
}

type eventLog struct{ msgs []kafka.Message }

func (e *eventLog) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	e.msgs = append(e.msgs, msgs...)
	return nil
}

func (e *eventLog) forNotification(t *testing.T, id uint) []kfka.Event {
	t.Helper()
	var out []kfka.Event
	for _, m := range e.msgs {
		var ev kfka.Event
		require.NoError(t, json.Unmarshal(m.Value, &ev))
		if ev.NotificationID == id {
			out = append(out, ev)
		}
	}
	return out
}

func TestSeedPublishesEventsOnce(t *testing.T) {
	db := testutil.DB(t)
	data, err := Default()
	require.NoError(t, err)
	events := &eventLog{}
	d := deps(db)
	d.Events = events

	_, err = NewRunner(d, data).Run(context.Background(), nil)
	require.NoError(t, err)
	published := len(events.msgs)
	require.NotZero(t, published)

	var welcome models.Notification
	require.NoError(t, db.Where("external_key = ?", "welcome-2026").Take(&welcome).Error)
	got := events.forNotification(t, welcome.ID)
	require.Len(t, got, 3)
	for _, ev := range got {
		assert.NotEmpty(t, ev.Email)
		assert.Equal(t, welcome.TitleEn, ev.TitleEn)
	}

	_, err = NewRunner(d, data).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, events.msgs, published)
}

type settingsCache struct{ data map[string]string }

func (c *settingsCache) Get(_ context.Context, key string) *redis.StringCmd {
	if v, ok := c.data[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (c *settingsCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	if b, ok := value.([]byte); ok {
		c.data[key] = string(b)
	}
	return redis.NewStatusResult("OK", nil)
}

func (c *settingsCache) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(c.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestSeedSettingsInvalidatesCache(t *testing.T) {
	db := testutil.DB(t)
	data, err := Default()
	require.NoError(t, err)
	cache := &settingsCache{data: map[string]string{
		"settings:site_name": `{"key":"site_name","valueEn":"Stale"}`,
	}}
	d := deps(db)
	d.Cache = cache
	d.CacheTTL = time.Minute

	_, err = NewRunner(d, data).Run(context.Background(), []string{"settings"})
	require.NoError(t, err)
	assert.NotContains(t, cache.data, "settings:site_name")
}

package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilingual-lms/pkg/kfka"
	"bilingual-lms/pkg/models"
	"bilingual-lms/pkg/store"
	"bilingual-lms/pkg/testutil"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func welcome(sender uint, key string) *models.Notification {
	n := &models.Notification{
		SenderID:  sender,
		TitleAr:   "مرحبا",
		TitleEn:   "Welcome",
		MessageAr: "أهلا بك في المنصة",
		MessageEn: "Welcome to the platform",
	}
	if key != "" {
		n.ExternalKey = &key
	}
	return n
}

func TestSendFansOutOnce(t *testing.T) {
	db := testutil.DB(t)
	w := &fakeWriter{}
	svc := NewService(db, testutil.Log(), w)
	ctx := context.Background()
	admin := testutil.User(t, db, models.RoleAdmin, "admin@example.com")
	a, b := testutil.Student(t, db), testutil.Student(t, db)

	n := welcome(admin.ID, "welcome")
	out, err := svc.Send(ctx, n, []uint{a.ID, b.ID, a.ID})
	require.NoError(t, err)
	assert.Equal(t, store.Created, out)
	assert.Equal(t, models.NotificationSystem, n.Type)
	assert.EqualValues(t, 2, testutil.Count(t, db, &models.NotificationRecipient{}))
	require.Len(t, w.msgs, 2)

	var e kfka.Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &e))
	assert.Equal(t, n.ID, e.NotificationID)
	assert.Equal(t, "SYSTEM", e.EventType)
	assert.Equal(t, "Welcome", e.TitleEn)
	assert.NotEmpty(t, e.Email)

	again := welcome(admin.ID, "welcome")
	out, err = svc.Send(ctx, again, []uint{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, store.AlreadyExists, out)
	assert.Equal(t, n.ID, again.ID)
	assert.EqualValues(t, 1, testutil.Count(t, db, &models.Notification{}))
	assert.EqualValues(t, 2, testutil.Count(t, db, &models.NotificationRecipient{}))
	assert.Len(t, w.msgs, 2, "no events for recipients already attached")
}

func TestSendSurvivesPublishFailure(t *testing.T) {
	db := testutil.DB(t)
	w := &fakeWriter{err: errors.New("broker down")}
	svc := NewService(db, testutil.Log(), w)
	admin := testutil.User(t, db, models.RoleAdmin, "admin@example.com")
	s := testutil.Student(t, db)

	out, err := svc.Send(context.Background(), welcome(admin.ID, ""), []uint{s.ID})
	require.NoError(t, err)
	assert.Equal(t, store.Created, out)
	assert.EqualValues(t, 1, testutil.Count(t, db, &models.NotificationRecipient{}))
}

func TestSendRejectsInvalid(t *testing.T) {
	db := testutil.DB(t)
	svc := NewService(db, testutil.Log(), nil)
	n := welcome(1, "")
	n.TitleEn = ""

	out, err := svc.Send(context.Background(), n, []uint{1})
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, store.Failed, out)
	assert.Zero(t, testutil.Count(t, db, &models.NotificationRecipient{}))
}

func TestReadFlags(t *testing.T) {
	db := testutil.DB(t)
	svc := NewService(db, testutil.Log(), nil)
	ctx := context.Background()
	admin := testutil.User(t, db, models.RoleAdmin, "admin@example.com")
	s := testutil.Student(t, db)

	first := welcome(admin.ID, "")
	_, err := svc.Send(ctx, first, []uint{s.ID})
	require.NoError(t, err)
	second := welcome(admin.ID, "")
	second.Type = models.NotificationCourse
	_, err = svc.Send(ctx, second, []uint{s.ID})
	require.NoError(t, err)

	unread, err := svc.Unread(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.Equal(t, second.ID, unread[0].ID)

	require.NoError(t, svc.MarkRead(ctx, first.ID, s.ID))
	require.NoError(t, svc.MarkRead(ctx, first.ID, s.ID))
	assert.ErrorIs(t, svc.MarkRead(ctx, first.ID, admin.ID), ErrNotFound)

	unread, err = svc.Unread(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, second.ID, unread[0].ID)

	n, err := svc.MarkAllRead(ctx, s.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	unread, err = svc.Unread(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

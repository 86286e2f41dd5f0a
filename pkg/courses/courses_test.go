package courses

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilingual-lms/pkg/models"
	"bilingual-lms/pkg/store"
	"bilingual-lms/pkg/testutil"
)

type fakeIndex struct {
	mu      sync.Mutex
	indexed []uint
	deleted []uint
	err     error
}

func (f *fakeIndex) IndexCourse(_ context.Context, c *models.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, c.ID)
	return f.err
}

func (f *fakeIndex) DeleteCourse(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.err
}

type fakeNotifier struct {
	sent       []*models.Notification
	recipients [][]uint
}

func (f *fakeNotifier) Send(_ context.Context, n *models.Notification, to []uint) (store.Outcome, error) {
	f.sent = append(f.sent, n)
	f.recipients = append(f.recipients, to)
	return store.Created, nil
}

func newCourse(teacher, category uint) *models.Course {
	return &models.Course{
		TitleAr: "أساسيات جو", TitleEn: "Go Fundamentals",
		TeacherID: teacher, CategoryID: category,
		Price: 120, Discount: 25,
	}
}

func TestCreateCourse(t *testing.T) {
	db := testutil.DB(t)
	ix := &fakeIndex{}
	svc := NewService(db, testutil.Log(), ix, nil)
	ctx := context.Background()
	teacher := testutil.Teacher(t, db)
	cat := testutil.Category(t, db)

	c := newCourse(teacher.ID, cat.ID)
	out, err := svc.Create(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, store.Created, out)
	assert.Equal(t, 90.0, c.FinalPrice)
	assert.Equal(t, "go-fundamentals", c.Slug)
	assert.Equal(t, []uint{c.ID}, ix.indexed)

	again := newCourse(teacher.ID, cat.ID)
	out, err = svc.Create(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, store.AlreadyExists, out)
	assert.Equal(t, c.ID, again.ID)
	assert.Len(t, ix.indexed, 1)

	found, err := svc.BySlug(ctx, "go-fundamentals")
	require.NoError(t, err)
	assert.Equal(t, c.ID, found.ID)
	_, err = svc.BySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCreateCourseRequiresTeacher(t *testing.T) {
	db := testutil.DB(t)
	svc := NewService(db, testutil.Log(), nil, nil)
	student := testutil.Student(t, db)
	cat := testutil.Category(t, db)

	_, err := svc.Create(context.Background(), newCourse(student.ID, cat.ID))
	assert.ErrorIs(t, err, ErrNotTeacher)
	_, err = svc.Create(context.Background(), newCourse(9999, cat.ID))
	assert.ErrorIs(t, err, ErrNotTeacher)
}

func TestUpdatePricingRederivesFinalPrice(t *testing.T) {
	db := testutil.DB(t)
	svc := NewService(db, testutil.Log(), nil, nil)
	ctx := context.Background()
	course := testutil.Course(t, db, 100, 0)

	updated, err := svc.UpdatePricing(ctx, course.ID, 200, 10)
	require.NoError(t, err)
	assert.Equal(t, models.FinalPrice(200, 10), updated.FinalPrice)

	stored, err := svc.ByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 200.0, stored.Price)
	assert.Equal(t, models.FinalPrice(200, 10), stored.FinalPrice)

	discount := 50.0
	updated, err = svc.UpdateFields(ctx, course.ID, Update{Discount: &discount})
	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.FinalPrice)
}

func TestUpdatePricingRejectsBadDiscount(t *testing.T) {
	db := testutil.DB(t)
	svc := NewService(db, testutil.Log(), nil, nil)
	course := testutil.Course(t, db, 100, 20)

	_, err := svc.UpdatePricing(context.Background(), course.ID, 100, 120)
	assert.ErrorIs(t, err, models.ErrValidation)

	stored, err := svc.ByID(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, stored.Discount)
	assert.Equal(t, 80.0, stored.FinalPrice)
}

func TestUpdateMissingCourse(t *testing.T) {
	db := testutil.DB(t)
	svc := NewService(db, testutil.Log(), nil, nil)
	_, err := svc.Publish(context.Background(), 404)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestPublish(t *testing.T) {
	db := testutil.DB(t)
	svc := NewService(db, testutil.Log(), nil, nil)
	teacher := testutil.Teacher(t, db)
	cat := testutil.Category(t, db)
	c := newCourse(teacher.ID, cat.ID)
	_, err := svc.Create(context.Background(), c)
	require.NoError(t, err)
	assert.False(t, c.Published())

	published, err := svc.Publish(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, published.Published())
	assert.Equal(t, 90.0, published.FinalPrice)
}

func TestDeleteCourse(t *testing.T) {
	db := testutil.DB(t)
	ix := &fakeIndex{err: errors.New("es down")}
	svc := NewService(db, testutil.Log(), ix, nil)
	course := testutil.Course(t, db, 10, 0)

	require.NoError(t, svc.Delete(context.Background(), course.ID))
	assert.Equal(t, []uint{course.ID}, ix.deleted)
	_, err := svc.ByID(context.Background(), course.ID)
	assert.ErrorIs(t, err, ErrCourseNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), course.ID), ErrCourseNotFound)
}

func TestAddChapterAndContent(t *testing.T) {
	db := testutil.DB(t)
	notifier := &fakeNotifier{}
	svc := NewService(db, testutil.Log(), nil, notifier)
	ctx := context.Background()
	course := testutil.Course(t, db, 50, 0)
	buyer := testutil.Student(t, db)
	testutil.Purchase(t, db, buyer.ID, course)

	ch := &models.Chapter{CourseID: course.ID, TitleAr: "البداية", TitleEn: "Getting started", Order: 1}
	out, err := svc.AddChapter(ctx, ch)
	require.NoError(t, err)
	assert.Equal(t, store.Created, out)

	out, err = svc.AddChapter(ctx, &models.Chapter{CourseID: course.ID, TitleAr: "آخر", TitleEn: "Other", Order: 1})
	require.NoError(t, err)
	assert.Equal(t, store.AlreadyExists, out)

	lesson := &models.CourseContent{
		CourseID: course.ID, ChapterID: &ch.ID, Type: models.ContentVideo,
		TitleAr: "التثبيت", TitleEn: "Installing Go", VideoURL: "https://cdn.example.com/install.mp4", Duration: 12,
	}
	out, err = svc.AddContent(ctx, lesson)
	require.NoError(t, err)
	assert.Equal(t, store.Created, out)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, []uint{buyer.ID}, notifier.recipients[0])
	assert.Equal(t, "New content was added to the course", notifier.sent[0].MessageEn)
	assert.Equal(t, models.NotificationCourse, notifier.sent[0].Type)

	out, err = svc.AddContent(ctx, &models.CourseContent{
		CourseID: course.ID, ChapterID: &ch.ID, Type: models.ContentVideo,
		TitleAr: "التثبيت", TitleEn: "Installing Go", VideoURL: "https://cdn.example.com/other.mp4",
	})
	require.NoError(t, err)
	assert.Equal(t, store.AlreadyExists, out)
	assert.Len(t, notifier.sent, 1)
}

func TestAddContentChapterMismatch(t *testing.T) {
	db := testutil.DB(t)
	svc := NewService(db, testutil.Log(), nil, nil)
	ctx := context.Background()
	a := testutil.Course(t, db, 10, 0)
	b := testutil.Course(t, db, 10, 0)
	ch := &models.Chapter{CourseID: b.ID, TitleAr: "ف", TitleEn: "B chapter", Order: 1}
	_, err := svc.AddChapter(ctx, ch)
	require.NoError(t, err)

	_, err = svc.AddContent(ctx, &models.CourseContent{
		CourseID: a.ID, ChapterID: &ch.ID, Type: models.ContentText, TitleAr: "ن", TitleEn: "Text",
	})
	assert.ErrorIs(t, err, ErrChapterMismatch)

	missing := uint(999)
	_, err = svc.AddContent(ctx, &models.CourseContent{
		CourseID: a.ID, ChapterID: &missing, Type: models.ContentText, TitleAr: "ن", TitleEn: "Text",
	})
	assert.ErrorIs(t, err, ErrChapterMismatch)
}

func TestOutline(t *testing.T) {
	db := testutil.DB(t)
	svc := NewService(db, testutil.Log(), nil, nil)
	ctx := context.Background()
	course := testutil.Course(t, db, 10, 0)

	second := &models.Chapter{CourseID: course.ID, TitleAr: "٢", TitleEn: "Second", Order: 2}
	first := &models.Chapter{CourseID: course.ID, TitleAr: "١", TitleEn: "First", Order: 1}
	for _, ch := range []*models.Chapter{second, first} {
		_, err := svc.AddChapter(ctx, ch)
		require.NoError(t, err)
	}
	items := []*models.CourseContent{
		{CourseID: course.ID, Type: models.ContentVideo, TitleAr: "مقدمة", TitleEn: "Intro", VideoURL: "v", IsIntroVideo: true},
		{CourseID: course.ID, ChapterID: &second.ID, Type: models.ContentText, TitleAr: "ب", TitleEn: "B1", Order: 1},
		{CourseID: course.ID, ChapterID: &first.ID, Type: models.ContentText, TitleAr: "أ٢", TitleEn: "A2", Order: 2},
		{CourseID: course.ID, ChapterID: &first.ID, Type: models.ContentText, TitleAr: "أ١", TitleEn: "A1", Order: 1},
		{CourseID: course.ID, Type: models.ContentPDF, TitleAr: "ملحق", TitleEn: "Appendix", FileURL: "f", Order: 9},
	}
	for _, c := range items {
		_, err := svc.AddContent(ctx, c)
		require.NoError(t, err)
	}

	o, err := svc.Outline(ctx, course.ID)
	require.NoError(t, err)
	require.NotNil(t, o.Intro)
	assert.Equal(t, "Intro", o.Intro.TitleEn)
	require.Len(t, o.Chapters, 2)
	assert.Equal(t, "First", o.Chapters[0].Chapter.TitleEn)
	require.Len(t, o.Chapters[0].Contents, 2)
	assert.Equal(t, "A1", o.Chapters[0].Contents[0].TitleEn)
	assert.Equal(t, "A2", o.Chapters[0].Contents[1].TitleEn)
	assert.Equal(t, "B1", o.Chapters[1].Contents[0].TitleEn)
	require.Len(t, o.Loose, 1)
	assert.Equal(t, "Appendix", o.Loose[0].TitleEn)
}

package courses

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bilingual-lms/pkg/i18n"
	"bilingual-lms/pkg/logger"
	"bilingual-lms/pkg/models"
	"bilingual-lms/pkg/store"
)

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrNotTeacher      = errors.New("course owner is not a teacher")
	ErrChapterMismatch = errors.New("chapter belongs to another course")
)

// Indexer receives course documents after every committed write.
type Indexer interface {
	IndexCourse(ctx context.Context, course *models.Course) error
	DeleteCourse(ctx context.Context, id uint) error
}

// Notifier fans a notification out to users.
type Notifier interface {
	Send(ctx context.Context, n *models.Notification, recipients []uint) (store.Outcome, error)
}

type Service struct {
	db       *gorm.DB
	log      *logger.Logger
	index    Indexer
	notifier Notifier
}

// NewService wires the course writes. index and notifier may be nil.
func NewService(db *gorm.DB, log *logger.Logger, index Indexer, notifier Notifier) *Service {
	return &Service{db: db, log: log.With("service", "CourseService"), index: index, notifier: notifier}
}

// Create inserts c keyed on its slug. The slug is derived from TitleEn when
// empty.
func (s *Service) Create(ctx context.Context, c *models.Course) (store.Outcome, error) {
	var teacher models.User
	if err := s.db.WithContext(ctx).First(&teacher, c.TeacherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.Failed, ErrNotTeacher
		}
		return store.Failed, err
	}
	if teacher.Role != models.RoleTeacher {
		return store.Failed, ErrNotTeacher
	}

	out, err := store.UpsertByKey(ctx, s.db, c, "Slug")
	if err != nil {
		return out, fmt.Errorf("create course %q: %w", c.TitleEn, err)
	}
	s.log.Info("course "+out.String(), "course_id", c.ID, "slug", c.Slug)
	if out == store.Created {
		s.reindex(ctx, c)
	}
	return out, nil
}

func (s *Service) ByID(ctx context.Context, id uint) (*models.Course, error) {
	var c models.Course
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Service) BySlug(ctx context.Context, slug string) (*models.Course, error) {
	var c models.Course
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).Take(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Update lists the writable course fields; nil leaves a field unchanged.
// The slug is fixed at creation.
type Update struct {
	TitleAr       *string
	TitleEn       *string
	DescriptionAr *string
	DescriptionEn *string
	Thumbnail     *string
	CategoryID    *uint
	Level         *models.CourseLevel
	Status        *models.CourseStatus
	Price         *float64
	Discount      *float64
}

func (u Update) apply(c *models.Course) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.TitleAr, u.TitleAr)
	set(&c.TitleEn, u.TitleEn)
	set(&c.DescriptionAr, u.DescriptionAr)
	set(&c.DescriptionEn, u.DescriptionEn)
	set(&c.Thumbnail, u.Thumbnail)
	if u.CategoryID != nil {
		c.CategoryID = *u.CategoryID
	}
	if u.Level != nil {
		c.Level = *u.Level
	}
	if u.Status != nil {
		c.Status = *u.Status
	}
	if u.Price != nil {
		c.Price = *u.Price
	}
	if u.Discount != nil {
		c.Discount = *u.Discount
	}
}

// UpdateFields applies u under a row lock. The full save runs the course
// hooks, so final_price is re-derived in the same transaction whenever price
// or discount change.
func (s *Service) UpdateFields(ctx context.Context, id uint, u Update) (*models.Course, error) {
	var course models.Course
	err := store.InTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&course, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}
		u.apply(&course)
		return tx.Omit(clause.Associations).Save(&course).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("course updated", "course_id", course.ID, "final_price", course.FinalPrice)
	s.reindex(ctx, &course)
	return &course, nil
}

func (s *Service) UpdatePricing(ctx context.Context, id uint, price, discount float64) (*models.Course, error) {
	return s.UpdateFields(ctx, id, Update{Price: &price, Discount: &discount})
}

func (s *Service) Publish(ctx context.Context, id uint) (*models.Course, error) {
	status := models.CoursePublished
	return s.UpdateFields(ctx, id, Update{Status: &status})
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Course{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCourseNotFound
	}
	if s.index != nil {
		if err := s.index.DeleteCourse(ctx, id); err != nil {
			s.log.Warn("search delete failed", "course_id", id, "error", err)
		}
	}
	return nil
}

func (s *Service) reindex(ctx context.Context, c *models.Course) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexCourse(ctx, c); err != nil {
		s.log.Warn("search index failed", "course_id", c.ID, "error", err)
	}
}

// notifyPurchasers tells every buyer of the course about new material.
func (s *Service) notifyPurchasers(ctx context.Context, course *models.Course, key string) {
	if s.notifier == nil || !course.Published() {
		return
	}
	var students []uint
	if err := s.db.WithContext(ctx).Model(&models.Purchase{}).
		Where("course_id = ?", course.ID).
		Pluck("student_id", &students).Error; err != nil {
		s.log.Warn("list purchasers failed", "course_id", course.ID, "error", err)
		return
	}
	if len(students) == 0 {
		return
	}
	msg := i18n.Bilingual(key)
	n := &models.Notification{
		SenderID:  course.TeacherID,
		TitleAr:   course.TitleAr,
		TitleEn:   course.TitleEn,
		MessageAr: msg.Ar,
		MessageEn: msg.En,
		Type:      models.NotificationCourse,
		CourseID:  &course.ID,
	}
	if _, err := s.notifier.Send(ctx, n, students); err != nil {
		s.log.Warn("notify purchasers failed", "course_id", course.ID, "error", err)
	}
}

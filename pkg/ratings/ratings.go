package ratings

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bilingual-lms/pkg/logger"
	"bilingual-lms/pkg/models"
	"bilingual-lms/pkg/store"
)

var (
	ErrAccessDenied = errors.New("course not purchased")
	ErrNotTeacher   = errors.New("rated user is not a teacher")
)

type Access interface {
	HasAccess(ctx context.Context, studentID, courseID uint) (bool, error)
}

type Service struct {
	db     *gorm.DB
	log    *logger.Logger
	access Access
}

func NewService(db *gorm.DB, log *logger.Logger, access Access) *Service {
	return &Service{db: db, log: log.With("service", "RatingService"), access: access}
}

// SubmitCourseRating stores one rating per (student, course). A repeated
// submission is AlreadyExists and leaves the first rating in r.
func (s *Service) SubmitCourseRating(ctx context.Context, r *models.Rating) (store.Outcome, error) {
	if err := models.Validate(r); err != nil {
		return store.Failed, err
	}
	ok, err := s.access.HasAccess(ctx, r.StudentID, r.CourseID)
	if err != nil {
		return store.Failed, err
	}
	if !ok {
		return store.Failed, ErrAccessDenied
	}
	out, err := store.UpsertByKey(ctx, s.db, r, "StudentID", "CourseID")
	if err != nil {
		return out, err
	}
	s.log.Info("course rating "+out.String(), "student_id", r.StudentID, "course_id", r.CourseID, "rating", r.Rating)
	return out, nil
}

func (s *Service) SubmitTeacherRating(ctx context.Context, r *models.TeacherRating) (store.Outcome, error) {
	if err := models.Validate(r); err != nil {
		return store.Failed, err
	}
	var teacher models.User
	if err := s.db.WithContext(ctx).Select("id", "role").First(&teacher, r.TeacherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.Failed, ErrNotTeacher
		}
		return store.Failed, err
	}
	if teacher.Role != models.RoleTeacher {
		return store.Failed, ErrNotTeacher
	}
	out, err := store.UpsertByKey(ctx, s.db, r, "StudentID", "TeacherID")
	if err != nil {
		return out, err
	}
	s.log.Info("teacher rating "+out.String(), "student_id", r.StudentID, "teacher_id", r.TeacherID, "rating", r.Rating)
	return out, nil
}

type Summary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

func (s *Service) CourseAverage(ctx context.Context, courseID uint) (Summary, error) {
	return s.summary(ctx, &models.Rating{}, "course_id", courseID)
}

func (s *Service) TeacherAverage(ctx context.Context, teacherID uint) (Summary, error) {
	return s.summary(ctx, &models.TeacherRating{}, "teacher_id", teacherID)
}

func (s *Service) summary(ctx context.Context, model any, column string, id uint) (Summary, error) {
	var row struct {
		Average float64
		Count   int64
	}
	err := s.db.WithContext(ctx).Model(model).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where(column+" = ?", id).
		Scan(&row).Error
	return Summary{Average: row.Average, Count: row.Count}, err
}

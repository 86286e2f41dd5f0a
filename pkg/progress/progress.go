package progress

import (
	"context"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"bilingual-lms/pkg/logger"
	"bilingual-lms/pkg/models"
	"bilingual-lms/pkg/store"
)

var (
	ErrContentNotFound = errors.New("content not found")
	ErrAccessDenied    = errors.New("course not purchased")
	ErrQuizNotPassed   = errors.New("quiz must be passed first")
)

type Access interface {
	HasAccess(ctx context.Context, studentID, courseID uint) (bool, error)
}

// QuizGate reports whether a content item carries a quiz and whether the
// student passed it.
type QuizGate interface {
	QuizStatus(ctx context.Context, studentID, contentID uint) (required, passed bool, err error)
}

type Service struct {
	db     *gorm.DB
	log    *logger.Logger
	access Access
	gate   QuizGate
}

func NewService(db *gorm.DB, log *logger.Logger, access Access, gate QuizGate) *Service {
	return &Service{db: db, log: log.With("service", "ProgressService"), access: access, gate: gate}
}

func clamp(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return math.Max(0, math.Min(100, p))
}

// Record stores percent for the content item. Stored progress never goes
// down, and reaching 100 marks the item completed. Completing an item with a
// quiz requires a passed attempt.
func (s *Service) Record(ctx context.Context, studentID, contentID uint, percent float64) (*models.Progress, error) {
	var content models.CourseContent
	if err := s.db.WithContext(ctx).Select("id", "course_id").First(&content, contentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	ok, err := s.access.HasAccess(ctx, studentID, content.CourseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAccessDenied
	}

	percent = clamp(percent)
	if percent == 100 && s.gate != nil {
		required, passed, err := s.gate.QuizStatus(ctx, studentID, contentID)
		if err != nil {
			return nil, err
		}
		if required && !passed {
			return nil, ErrQuizNotPassed
		}
	}

	var p models.Progress
	err = store.InTx(ctx, s.db, func(tx *gorm.DB) error {
		p = models.Progress{StudentID: studentID, CourseID: content.CourseID, ContentID: contentID, Progress: percent, Completed: percent == 100}
		out, err := store.UpsertByKey(ctx, tx, &p, "StudentID", "ContentID")
		if err != nil || out == store.Created {
			return err
		}
		if percent <= p.Progress {
			return nil
		}
		p.Progress = percent
		p.Completed = p.Completed || percent == 100
		// The guard keeps a concurrent higher value from being overwritten.
		return tx.Model(&p).Where("progress < ?", percent).UpdateColumns(map[string]interface{}{
			"progress":   p.Progress,
			"completed":  p.Completed,
			"updated_at": time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("progress recorded", "student_id", studentID, "content_id", contentID, "progress", p.Progress, "completed", p.Completed)
	return &p, nil
}

type Completion struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Percent   float64 `json:"percent"`
}

// CourseCompletion counts completed content items of a course.
func (s *Service) CourseCompletion(ctx context.Context, studentID, courseID uint) (Completion, error) {
	var total, done int64
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.CourseContent{}).Where("course_id = ?", courseID).Count(&total).Error; err != nil {
		return Completion{}, err
	}
	if err := db.Model(&models.Progress{}).
		Where("student_id = ? AND course_id = ? AND completed = ?", studentID, courseID, true).
		Count(&done).Error; err != nil {
		return Completion{}, err
	}
	c := Completion{Total: int(total), Completed: int(done)}
	if total > 0 {
		c.Percent = float64(done) / float64(total) * 100
	}
	return c, nil
}

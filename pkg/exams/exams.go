package exams

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"bilingual-lms/pkg/logger"
	"bilingual-lms/pkg/models"
	"bilingual-lms/pkg/store"
)

var (
	ErrExamNotFound   = errors.New("exam not found")
	ErrQuizNotFound   = errors.New("quiz not found")
	ErrAccessDenied   = errors.New("course not purchased")
	ErrExamNotStarted = errors.New("exam has not started")
	ErrExamEnded      = errors.New("exam has ended")
	ErrTimeExceeded   = errors.New("quiz time limit exceeded")
	ErrAttemptClosed  = errors.New("attempt already submitted")
)

// Access decides whether a student may sit assessments of a course.
type Access interface {
	HasAccess(ctx context.Context, studentID, courseID uint) (bool, error)
}

type Service struct {
	db     *gorm.DB
	log    *logger.Logger
	access Access
	now    func() time.Time
}

func NewService(db *gorm.DB, log *logger.Logger, access Access) *Service {
	return &Service{db: db, log: log.With("service", "ExamService"), access: access, now: time.Now}
}

func (s *Service) checkAccess(ctx context.Context, studentID, courseID uint) error {
	ok, err := s.access.HasAccess(ctx, studentID, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAccessDenied
	}
	return nil
}

// SubmitExam grades answers and records the next attempt for the student.
// Submissions are accepted only inside the exam window.
func (s *Service) SubmitExam(ctx context.Context, studentID, examID uint, answers []Answer) (*models.ExamAttempt, Result, error) {
	var exam models.Exam
	if err := s.db.WithContext(ctx).First(&exam, examID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Result{}, ErrExamNotFound
		}
		return nil, Result{}, err
	}
	if err := s.checkAccess(ctx, studentID, exam.CourseID); err != nil {
		return nil, Result{}, err
	}
	now := s.now().UTC()
	if !exam.Open(now) {
		if exam.StartDate != nil && now.Before(*exam.StartDate) {
			return nil, Result{}, ErrExamNotStarted
		}
		return nil, Result{}, ErrExamEnded
	}

	var questions []models.ExamQuestion
	if err := s.db.WithContext(ctx).Where("exam_id = ?", exam.ID).Order("sort_order").Find(&questions).Error; err != nil {
		return nil, Result{}, err
	}
	res := Grade(examQuestions(questions), answers, exam.PassingScore)
	raw, err := json.Marshal(answers)
	if err != nil {
		return nil, Result{}, err
	}

	attempt := &models.ExamAttempt{
		ExamID:        exam.ID,
		StudentID:     studentID,
		Score:         res.Score,
		Passed:        res.Passed,
		PendingReview: res.PendingReview,
		Answers:       datatypes.JSON(raw),
		SubmittedAt:   now,
	}
	err = store.InTx(ctx, s.db, func(tx *gorm.DB) error {
		var last int
		if err := tx.Model(&models.ExamAttempt{}).
			Where("exam_id = ? AND student_id = ?", exam.ID, studentID).
			Select("COALESCE(MAX(attempt), 0)").Scan(&last).Error; err != nil {
			return err
		}
		attempt.Attempt = last + 1
		return tx.Create(attempt).Error
	})
	if err != nil {
		return nil, Result{}, fmt.Errorf("record exam attempt: %w", err)
	}
	s.log.Info("exam submitted",
		"exam_id", exam.ID, "student_id", studentID, "attempt", attempt.Attempt,
		"score", res.Score, "passed", res.Passed, "pending_review", res.PendingReview)
	return attempt, res, nil
}

// StartQuiz opens an attempt; the time limit runs from now.
func (s *Service) StartQuiz(ctx context.Context, studentID, quizID uint) (*models.QuizAttempt, error) {
	quiz, err := s.quiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	var content models.CourseContent
	if err := s.db.WithContext(ctx).Select("id", "course_id").First(&content, quiz.ContentID).Error; err != nil {
		return nil, fmt.Errorf("quiz %d content: %w", quiz.ID, err)
	}
	if err := s.checkAccess(ctx, studentID, content.CourseID); err != nil {
		return nil, err
	}
	attempt := &models.QuizAttempt{QuizID: quiz.ID, StudentID: studentID, StartedAt: s.now().UTC()}
	if err := s.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return nil, err
	}
	return attempt, nil
}

// SubmitQuiz grades an open attempt. A late submission closes the attempt
// as failed and returns ErrTimeExceeded.
func (s *Service) SubmitQuiz(ctx context.Context, studentID, attemptID uint, answers []Answer) (*models.QuizAttempt, Result, error) {
	var attempt models.QuizAttempt
	if err := s.db.WithContext(ctx).Where("id = ? AND student_id = ?", attemptID, studentID).Take(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Result{}, ErrQuizNotFound
		}
		return nil, Result{}, err
	}
	if attempt.SubmittedAt != nil {
		return &attempt, Result{}, ErrAttemptClosed
	}
	quiz, err := s.quiz(ctx, attempt.QuizID)
	if err != nil {
		return nil, Result{}, err
	}

	now := s.now().UTC()
	attempt.SubmittedAt = &now
	if deadline, ok := attempt.Deadline(quiz.TimeLimit); ok && now.After(deadline) {
		attempt.TimedOut = true
		if err := s.closeAttempt(ctx, &attempt); err != nil {
			return nil, Result{}, err
		}
		s.log.Info("quiz timed out", "quiz_id", quiz.ID, "student_id", studentID, "attempt_id", attempt.ID)
		return &attempt, Result{}, ErrTimeExceeded
	}

	res := Grade(quizQuestions(quiz.Questions), answers, quiz.PassingScore)
	raw, err := json.Marshal(answers)
	if err != nil {
		return nil, Result{}, err
	}
	attempt.Score = res.Score
	attempt.Passed = res.Passed
	attempt.PendingReview = res.PendingReview
	attempt.Answers = datatypes.JSON(raw)
	if err := s.closeAttempt(ctx, &attempt); err != nil {
		return nil, Result{}, err
	}
	s.log.Info("quiz submitted", "quiz_id", quiz.ID, "student_id", studentID, "score", res.Score, "passed", res.Passed)
	return &attempt, res, nil
}

// closeAttempt stores the outcome only while the attempt is still open, so
// one of two concurrent submissions wins and the other gets ErrAttemptClosed.
func (s *Service) closeAttempt(ctx context.Context, a *models.QuizAttempt) error {
	res := s.db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Where("id = ? AND submitted_at IS NULL", a.ID).
		Updates(map[string]interface{}{
			"submitted_at":   a.SubmittedAt,
			"timed_out":      a.TimedOut,
			"score":          a.Score,
			"passed":         a.Passed,
			"pending_review": a.PendingReview,
			"answers":        a.Answers,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAttemptClosed
	}
	return nil
}

func (s *Service) quiz(ctx context.Context, id uint) (*models.Quiz, error) {
	var q models.Quiz
	err := s.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order") }).
		First(&q, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuizNotFound
	}
	return &q, err
}

// QuizStatus reports whether contentID carries a quiz and, if so, whether
// the student has passed it.
func (s *Service) QuizStatus(ctx context.Context, studentID, contentID uint) (required, passed bool, err error) {
	var quiz models.Quiz
	err = s.db.WithContext(ctx).Select("id").Where("content_id = ?", contentID).Take(&quiz).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	var n int64
	err = s.db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Where("quiz_id = ? AND student_id = ? AND passed = ?", quiz.ID, studentID, true).
		Count(&n).Error
	return true, n > 0, err
}

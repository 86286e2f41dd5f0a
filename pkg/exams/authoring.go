package exams

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"bilingual-lms/pkg/models"
	"bilingual-lms/pkg/store"
)

// CreateExam stores an exam keyed on (course, English title) together with
// its questions keyed on (exam, order). The returned outcome is the exam's.
func (s *Service) CreateExam(ctx context.Context, exam *models.Exam, questions []models.ExamQuestion) (store.Outcome, error) {
	var out store.Outcome
	err := store.InTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		out, err = store.UpsertByKey(ctx, tx, exam, "CourseID", "TitleEn")
		if err != nil {
			return err
		}
		for i := range questions {
			q := &questions[i]
			q.ExamID = exam.ID
			if _, err := store.UpsertByKey(ctx, tx, q, "ExamID", "Order"); err != nil {
				return fmt.Errorf("question %d: %w", q.Order, err)
			}
		}
		return nil
	})
	if err != nil {
		return store.Failed, fmt.Errorf("create exam %q: %w", exam.TitleEn, err)
	}
	s.log.Info("exam "+out.String(), "exam_id", exam.ID, "course_id", exam.CourseID, "questions", len(questions))
	return out, nil
}

// CreateQuiz attaches a quiz to a content item. A content item carries at
// most one quiz.
func (s *Service) CreateQuiz(ctx context.Context, quiz *models.Quiz, questions []models.QuizQuestion) (store.Outcome, error) {
	var out store.Outcome
	err := store.InTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		out, err = store.UpsertByKey(ctx, tx, quiz, "ContentID")
		if err != nil {
			return err
		}
		for i := range questions {
			q := &questions[i]
			q.QuizID = quiz.ID
			if _, err := store.UpsertByKey(ctx, tx, q, "QuizID", "Order"); err != nil {
				return fmt.Errorf("question %d: %w", q.Order, err)
			}
		}
		return nil
	})
	if err != nil {
		return store.Failed, fmt.Errorf("create quiz %q: %w", quiz.TitleEn, err)
	}
	s.log.Info("quiz "+out.String(), "quiz_id", quiz.ID, "content_id", quiz.ContentID, "questions", len(questions))
	return out, nil
}

package commerce

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bilingual-lms/pkg/models"
	"bilingual-lms/pkg/store"
)

func (s *Service) AddToWishlist(ctx context.Context, studentID, courseID uint) (store.Outcome, error) {
	if err := s.db.WithContext(ctx).Select("id").First(&models.Course{}, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.Failed, ErrCourseUnavailable
		}
		return store.Failed, err
	}
	return store.UpsertByKey(ctx, s.db, &models.WishlistItem{StudentID: studentID, CourseID: courseID}, "StudentID", "CourseID")
}

func (s *Service) RemoveFromWishlist(ctx context.Context, studentID, courseID uint) error {
	return s.db.WithContext(ctx).Unscoped().
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Delete(&models.WishlistItem{}).Error
}

// Wishlist lists wished-for courses, most recent first.
func (s *Service) Wishlist(ctx context.Context, studentID uint) ([]models.Course, error) {
	var courses []models.Course
	err := s.db.WithContext(ctx).
		Joins("JOIN wishlist_items ON wishlist_items.course_id = courses.id").
		Where("wishlist_items.student_id = ?", studentID).
		Order("wishlist_items.id DESC").
		Find(&courses).Error
	return courses, err
}

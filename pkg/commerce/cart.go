// Package commerce covers carts, wishlists, purchases and payments. A
// purchase row is what grants a student access to a course.
package commerce

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bilingual-lms/pkg/logger"
	"bilingual-lms/pkg/models"
	"bilingual-lms/pkg/store"
)

var (
	ErrCourseUnavailable  = errors.New("course is not available for purchase")
	ErrAlreadyPurchased   = errors.New("course already purchased")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrPaymentTransition  = errors.New("payment status cannot change")
	ErrUnsupportedPayment = errors.New("unsupported payment method")
)

// Notifier delivers purchase confirmations.
type Notifier interface {
	Send(ctx context.Context, n *models.Notification, recipients []uint) (store.Outcome, error)
}

type Service struct {
	db       *gorm.DB
	log      *logger.Logger
	notifier Notifier
}

func NewService(db *gorm.DB, log *logger.Logger, notifier Notifier) *Service {
	return &Service{db: db, log: log.With("service", "CommerceService"), notifier: notifier}
}

// GetOrCreateCart returns the single cart of the student, creating it if
// needed. Concurrent callers all receive the same row.
func (s *Service) GetOrCreateCart(ctx context.Context, studentID uint) (*models.Cart, error) {
	cart := &models.Cart{StudentID: studentID}
	if _, err := store.UpsertByKey(ctx, s.db, cart, "StudentID"); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) purchasable(ctx context.Context, db *gorm.DB, studentID, courseID uint) (*models.Course, error) {
	var course models.Course
	if err := db.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseUnavailable
		}
		return nil, err
	}
	if !course.Published() {
		return nil, ErrCourseUnavailable
	}
	owned, err := hasPurchase(ctx, db, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if owned {
		return &course, ErrAlreadyPurchased
	}
	return &course, nil
}

// AddToCart puts a published, not yet purchased course in the cart. Adding
// it twice reports AlreadyExists.
func (s *Service) AddToCart(ctx context.Context, studentID, courseID uint) (store.Outcome, error) {
	if _, err := s.purchasable(ctx, s.db, studentID, courseID); err != nil {
		return store.Failed, err
	}
	cart, err := s.GetOrCreateCart(ctx, studentID)
	if err != nil {
		return store.Failed, err
	}
	out, err := store.UpsertByKey(ctx, s.db, &models.CartItem{CartID: cart.ID, CourseID: courseID}, "CartID", "CourseID")
	if err != nil {
		return out, err
	}
	s.log.Debug("cart item "+out.String(), "student_id", studentID, "course_id", courseID)
	return out, nil
}

// RemoveFromCart deletes the item for good so it can be added again later.
func (s *Service) RemoveFromCart(ctx context.Context, studentID, courseID uint) error {
	return removeFromCart(ctx, s.db, studentID, courseID)
}

func removeFromCart(ctx context.Context, db *gorm.DB, studentID, courseID uint) error {
	return db.WithContext(ctx).Unscoped().
		Where("course_id = ? AND cart_id IN (?)", courseID,
			db.Model(&models.Cart{}).Select("id").Where("student_id = ?", studentID)).
		Delete(&models.CartItem{}).Error
}

// CartCourses lists the courses in the cart, oldest item first.
func (s *Service) CartCourses(ctx context.Context, studentID uint) ([]models.Course, error) {
	var courses []models.Course
	err := s.db.WithContext(ctx).
		Joins("JOIN cart_items ON cart_items.course_id = courses.id").
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.student_id = ?", studentID).
		Order("cart_items.id").
		Find(&courses).Error
	return courses, err
}

// CartTotal sums the final prices of the courses in the cart.
func (s *Service) CartTotal(ctx context.Context, studentID uint) (float64, error) {
	courses, err := s.CartCourses(ctx, studentID)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, c := range courses {
		total += c.FinalPrice
	}
	return total, nil
}

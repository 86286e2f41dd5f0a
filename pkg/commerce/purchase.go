package commerce

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bilingual-lms/pkg/i18n"
	"bilingual-lms/pkg/models"
	"bilingual-lms/pkg/store"
)

var txNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("bilingual-lms/payments"))

// TransactionID derives a stable payment transaction id from parts, so that
// replaying the same purchase never creates a second payment.
func TransactionID(parts ...string) string {
	return uuid.NewSHA1(txNamespace, []byte(strings.Join(parts, ":"))).String()
}

type PurchaseRequest struct {
	StudentID uint
	CourseID  uint
	Method    models.PaymentMethod
	// Status defaults to COMPLETED.
	Status models.PaymentStatus
	// TransactionID defaults to one derived from student and course.
	TransactionID string
}

type Receipt struct {
	Purchase models.Purchase
	Payment  models.Payment
}

func validMethod(m models.PaymentMethod) bool {
	switch m {
	case models.PaymentVisa, models.PaymentKnet, models.PaymentMastercard:
		return true
	}
	return false
}

// RecordPurchase writes the purchase and its payment in one transaction and
// drops the course from the cart. The purchase amount is the course final
// price and the payment amount is the purchase amount. Replaying a purchase
// returns the stored receipt with AlreadyExists.
func (s *Service) RecordPurchase(ctx context.Context, req PurchaseRequest) (*Receipt, store.Outcome, error) {
	if !validMethod(req.Method) {
		return nil, store.Failed, ErrUnsupportedPayment
	}
	if req.Status == "" {
		req.Status = models.PaymentCompleted
	}
	if req.TransactionID == "" {
		req.TransactionID = TransactionID("purchase", fmt.Sprint(req.StudentID), fmt.Sprint(req.CourseID))
	}

	var (
		rcpt   Receipt
		out    store.Outcome
		course *models.Course
	)
	err := store.InTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		course, err = s.purchasable(ctx, tx, req.StudentID, req.CourseID)
		if errors.Is(err, ErrAlreadyPurchased) {
			out = store.AlreadyExists
			return loadReceipt(ctx, tx, req.StudentID, req.CourseID, &rcpt)
		}
		if err != nil {
			return err
		}

		rcpt.Purchase = models.Purchase{StudentID: req.StudentID, CourseID: course.ID, Amount: course.FinalPrice}
		out, err = store.UpsertByKey(ctx, tx, &rcpt.Purchase, "StudentID", "CourseID")
		if err != nil {
			return err
		}
		rcpt.Payment = models.Payment{
			StudentID:     req.StudentID,
			PurchaseID:    rcpt.Purchase.ID,
			Amount:        rcpt.Purchase.Amount,
			Method:        req.Method,
			Status:        req.Status,
			TransactionID: req.TransactionID,
		}
		if req.Status == models.PaymentCompleted {
			now := time.Now().UTC()
			rcpt.Payment.PaidAt = &now
		}
		if _, err := store.UpsertByKey(ctx, tx, &rcpt.Payment, "TransactionID"); err != nil {
			return err
		}
		return removeFromCart(ctx, tx, req.StudentID, req.CourseID)
	})
	if err != nil {
		return nil, store.Failed, err
	}

	s.log.Info("purchase "+out.String(),
		"student_id", req.StudentID, "course_id", req.CourseID,
		"amount", rcpt.Purchase.Amount, "transaction_id", rcpt.Payment.TransactionID)
	if out == store.Created {
		s.confirm(ctx, course, &rcpt)
	}
	return &rcpt, out, nil
}

func loadReceipt(ctx context.Context, db *gorm.DB, studentID, courseID uint, r *Receipt) error {
	if err := db.WithContext(ctx).Where("student_id = ? AND course_id = ?", studentID, courseID).Take(&r.Purchase).Error; err != nil {
		return err
	}
	err := db.WithContext(ctx).Where("purchase_id = ?", r.Purchase.ID).Order("id DESC").Take(&r.Payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// Checkout purchases every course in the cart. Courses bought in the
// meantime are skipped.
func (s *Service) Checkout(ctx context.Context, studentID uint, method models.PaymentMethod) ([]Receipt, error) {
	courses, err := s.CartCourses(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, ErrCartEmpty
	}
	receipts := make([]Receipt, 0, len(courses))
	for _, c := range courses {
		r, out, err := s.RecordPurchase(ctx, PurchaseRequest{StudentID: studentID, CourseID: c.ID, Method: method})
		if err != nil {
			return receipts, fmt.Errorf("checkout course %d: %w", c.ID, err)
		}
		if out == store.AlreadyExists {
			continue
		}
		receipts = append(receipts, *r)
	}
	return receipts, nil
}

// SetPaymentStatus settles a pending payment. Settled payments are final.
func (s *Service) SetPaymentStatus(ctx context.Context, transactionID string, status models.PaymentStatus) error {
	if status != models.PaymentCompleted && status != models.PaymentFailed {
		return ErrPaymentTransition
	}
	return store.InTx(ctx, s.db, func(tx *gorm.DB) error {
		var p models.Payment
		if err := tx.Where("transaction_id = ?", transactionID).Take(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		if p.Status == status {
			return nil
		}
		if p.Status != models.PaymentPending {
			return ErrPaymentTransition
		}
		cols := map[string]interface{}{"status": status, "updated_at": time.Now().UTC()}
		if status == models.PaymentCompleted {
			cols["paid_at"] = time.Now().UTC()
		}
		return tx.Model(&p).UpdateColumns(cols).Error
	})
}

// HasAccess reports whether the student bought the course.
func (s *Service) HasAccess(ctx context.Context, studentID, courseID uint) (bool, error) {
	return hasPurchase(ctx, s.db, studentID, courseID)
}

func hasPurchase(ctx context.Context, db *gorm.DB, studentID, courseID uint) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&models.Purchase{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&n).Error
	return n > 0, err
}

func (s *Service) confirm(ctx context.Context, course *models.Course, r *Receipt) {
	if s.notifier == nil || course == nil {
		return
	}
	msg := i18n.Bilingual("PAYMENT.SUCCESS")
	title := i18n.Bilingual("PAYMENT.RECEIPT")
	n := &models.Notification{
		SenderID:  course.TeacherID,
		TitleAr:   title.Ar,
		TitleEn:   title.En,
		MessageAr: msg.Ar + ": " + course.TitleAr,
		MessageEn: msg.En + ": " + course.TitleEn,
		Type:      models.NotificationPayment,
		CourseID:  &course.ID,
	}
	if _, err := s.notifier.Send(ctx, n, []uint{r.Purchase.StudentID}); err != nil {
		s.log.Warn("purchase confirmation failed", "purchase_id", r.Purchase.ID, "error", err)
	}
}

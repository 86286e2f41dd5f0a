package models

import (
	"time"

	"gorm.io/gorm"
)

// Purchase grants a student access to every content item of a course.
// Amount is the course FinalPrice at purchase time.
type Purchase struct {
	gorm.Model
	StudentID   uint      `gorm:"not null;uniqueIndex:idx_purchases_student_course" json:"studentId" validate:"required"`
	CourseID    uint      `gorm:"not null;uniqueIndex:idx_purchases_student_course" json:"courseId" validate:"required"`
	Amount      float64   `gorm:"not null;check:amount >= 0" json:"amount" validate:"gte=0"`
	PurchasedAt time.Time `gorm:"not null" json:"purchasedAt"`
}

func (p *Purchase) BeforeSave(tx *gorm.DB) error {
	if p.PurchasedAt.IsZero() {
		p.PurchasedAt = time.Now().UTC()
	}
	return Validate(p)
}

type Payment struct {
	gorm.Model
	StudentID     uint          `gorm:"not null;index" json:"studentId" validate:"required"`
	PurchaseID    uint          `gorm:"not null;index" json:"purchaseId" validate:"required"`
	Amount        float64       `gorm:"not null;check:amount >= 0" json:"amount" validate:"gte=0"`
	Method        PaymentMethod `gorm:"type:varchar(16);not null;check:method IN ('VISA','KNET','MASTERCARD')" json:"method" validate:"oneof=VISA KNET MASTERCARD"`
	Status        PaymentStatus `gorm:"type:varchar(16);not null;index;check:status IN ('PENDING','COMPLETED','FAILED')" json:"status" validate:"oneof=PENDING COMPLETED FAILED"`
	TransactionID string        `gorm:"uniqueIndex;not null" json:"transactionId" validate:"required"`
	PaidAt        *time.Time    `json:"paidAt"`
}

func (p *Payment) BeforeSave(tx *gorm.DB) error {
	if p.Status == "" {
		p.Status = PaymentPending
	}
	return Validate(p)
}

type Cart struct {
	gorm.Model
	StudentID uint       `gorm:"not null;uniqueIndex" json:"studentId" validate:"required"`
	Items     []CartItem `gorm:"foreignKey:CartID" json:"items,omitempty" validate:"-"`
}

func (c *Cart) BeforeSave(tx *gorm.DB) error {
	return Validate(c)
}

type CartItem struct {
	gorm.Model
	CartID   uint `gorm:"not null;uniqueIndex:idx_cart_items_cart_course" json:"cartId" validate:"required"`
	CourseID uint `gorm:"not null;uniqueIndex:idx_cart_items_cart_course" json:"courseId" validate:"required"`
}

func (c *CartItem) BeforeSave(tx *gorm.DB) error {
	return Validate(c)
}

type WishlistItem struct {
	gorm.Model
	StudentID uint `gorm:"not null;uniqueIndex:idx_wishlist_student_course" json:"studentId" validate:"required"`
	CourseID  uint `gorm:"not null;uniqueIndex:idx_wishlist_student_course" json:"courseId" validate:"required"`
}

func (w *WishlistItem) BeforeSave(tx *gorm.DB) error {
	return Validate(w)
}

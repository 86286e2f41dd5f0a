package models

import (
	"time"

	"gorm.io/gorm"
)

type Progress struct {
	gorm.Model
	StudentID uint    `gorm:"not null;uniqueIndex:idx_progress_student_content" json:"studentId" validate:"required"`
	CourseID  uint    `gorm:"not null;index" json:"courseId" validate:"required"`
	ContentID uint    `gorm:"not null;uniqueIndex:idx_progress_student_content" json:"contentId" validate:"required"`
	Completed bool    `gorm:"not null;default:false" json:"completed"`
	Progress  float64 `gorm:"not null;default:0;check:progress >= 0 AND progress <= 100" json:"progress" validate:"gte=0,lte=100"`
}

func (Progress) TableName() string { return "progress" }

func (p *Progress) BeforeSave(tx *gorm.DB) error {
	return Validate(p)
}

type Rating struct {
	gorm.Model
	StudentID uint      `gorm:"not null;uniqueIndex:idx_ratings_student_course" json:"studentId" validate:"required"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_ratings_student_course" json:"courseId" validate:"required"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating" validate:"gte=1,lte=5"`
	CommentAr string    `gorm:"type:text" json:"commentAr"`
	CommentEn string    `gorm:"type:text" json:"commentEn"`
	Date      time.Time `gorm:"not null" json:"date"`
}

func (r *Rating) BeforeSave(tx *gorm.DB) error {
	if r.Date.IsZero() {
		r.Date = time.Now().UTC()
	}
	return Validate(r)
}

type TeacherRating struct {
	gorm.Model
	StudentID uint      `gorm:"not null;uniqueIndex:idx_teacher_ratings_student_teacher" json:"studentId" validate:"required"`
	TeacherID uint      `gorm:"not null;uniqueIndex:idx_teacher_ratings_student_teacher" json:"teacherId" validate:"required"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating" validate:"gte=1,lte=5"`
	CommentAr string    `gorm:"type:text" json:"commentAr"`
	CommentEn string    `gorm:"type:text" json:"commentEn"`
	Date      time.Time `gorm:"not null" json:"date"`
}

func (r *TeacherRating) BeforeSave(tx *gorm.DB) error {
	if r.Date.IsZero() {
		r.Date = time.Now().UTC()
	}
	return Validate(r)
}

type Notification struct {
	gorm.Model
	SenderID    uint                    `gorm:"not null;index" json:"senderId" validate:"required"`
	TitleAr     string                  `gorm:"not null" json:"titleAr" validate:"required"`
	TitleEn     string                  `gorm:"not null" json:"titleEn" validate:"required"`
	MessageAr   string                  `gorm:"type:text;not null" json:"messageAr" validate:"required"`
	MessageEn   string                  `gorm:"type:text;not null" json:"messageEn" validate:"required"`
	Type        NotificationType        `gorm:"type:varchar(16);not null;check:type IN ('SYSTEM','COURSE','EXAM','PAYMENT')" json:"type" validate:"oneof=SYSTEM COURSE EXAM PAYMENT"`
	CourseID    *uint                   `gorm:"index" json:"courseId"`
	ExternalKey *string                 `gorm:"uniqueIndex" json:"externalKey,omitempty"`
	Recipients  []NotificationRecipient `gorm:"foreignKey:NotificationID" json:"recipients,omitempty" validate:"-"`
}

func (n *Notification) BeforeSave(tx *gorm.DB) error {
	if n.Type == "" {
		n.Type = NotificationSystem
	}
	return Validate(n)
}

type NotificationRecipient struct {
	gorm.Model
	NotificationID uint       `gorm:"not null;uniqueIndex:idx_recipients_notification_user" json:"notificationId" validate:"required"`
	UserID         uint       `gorm:"not null;uniqueIndex:idx_recipients_notification_user;index" json:"userId" validate:"required"`
	Read           bool       `gorm:"not null;default:false" json:"read"`
	ReadAt         *time.Time `json:"readAt"`
}

func (r *NotificationRecipient) BeforeSave(tx *gorm.DB) error {
	return Validate(r)
}

type Ticket struct {
	gorm.Model
	UserID      uint         `gorm:"not null;index" json:"userId" validate:"required"`
	Title       string       `gorm:"not null" json:"title" validate:"required"`
	Message     string       `gorm:"type:text;not null" json:"message" validate:"required"`
	Status      TicketStatus `gorm:"type:varchar(16);not null;index;check:status IN ('OPEN','IN_PROGRESS','RESOLVED')" json:"status" validate:"oneof=OPEN IN_PROGRESS RESOLVED"`
	AdminReply  *string      `gorm:"type:text" json:"adminReply"`
	ResolvedAt  *time.Time   `json:"resolvedAt"`
	ExternalKey *string      `gorm:"uniqueIndex" json:"externalKey,omitempty"`
}

func (t *Ticket) BeforeSave(tx *gorm.DB) error {
	if t.Status == "" {
		t.Status = TicketOpen
	}
	return Validate(t)
}

type Banner struct {
	gorm.Model
	Image       string  `gorm:"not null" json:"image" validate:"required"`
	TitleAr     string  `gorm:"not null" json:"titleAr" validate:"required"`
	TitleEn     string  `gorm:"not null" json:"titleEn" validate:"required"`
	Link        string  `json:"link"`
	Order       int     `gorm:"column:sort_order;not null;default:0" json:"order" validate:"gte=0"`
	Active      bool    `gorm:"not null" json:"active"`
	ExternalKey *string `gorm:"uniqueIndex" json:"externalKey,omitempty"`
}

func (b *Banner) BeforeSave(tx *gorm.DB) error {
	return Validate(b)
}

// SystemSetting holds either a single Value or a localized ValueAr/ValueEn pair.
type SystemSetting struct {
	gorm.Model
	Key         string `gorm:"column:key;uniqueIndex;not null" json:"key" validate:"required"`
	Value       string `gorm:"type:text" json:"value"`
	ValueAr     string `gorm:"type:text" json:"valueAr"`
	ValueEn     string `gorm:"type:text" json:"valueEn"`
	Description string `json:"description"`
}

func (SystemSetting) TableName() string { return "system_settings" }

func (s *SystemSetting) BeforeSave(tx *gorm.DB) error {
	return Validate(s)
}

// All lists every model in migration order.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Course{},
		&Chapter{},
		&CourseContent{},
		&Exam{},
		&ExamQuestion{},
		&Quiz{},
		&QuizQuestion{},
		&ExamAttempt{},
		&QuizAttempt{},
		&Purchase{},
		&Payment{},
		&Cart{},
		&CartItem{},
		&WishlistItem{},
		&Progress{},
		&Rating{},
		&TeacherRating{},
		&Notification{},
		&NotificationRecipient{},
		&Ticket{},
		&Banner{},
		&SystemSetting{},
	}
}

package models

// Enumeration literals are persisted verbatim and read by other layers.

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

type UserStatus string

const (
	UserActive    UserStatus = "ACTIVE"
	UserInactive  UserStatus = "INACTIVE"
	UserSuspended UserStatus = "SUSPENDED"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

type CourseLevel string

const (
	LevelBeginner     CourseLevel = "BEGINNER"
	LevelIntermediate CourseLevel = "INTERMEDIATE"
	LevelAdvanced     CourseLevel = "ADVANCED"
)

type CourseStatus string

const (
	CourseDraft     CourseStatus = "DRAFT"
	CoursePublished CourseStatus = "PUBLISHED"
)

type ContentType string

const (
	ContentVideo      ContentType = "VIDEO"
	ContentPDF        ContentType = "PDF"
	ContentText       ContentType = "TEXT"
	ContentAssignment ContentType = "ASSIGNMENT"
)

type QuestionType string

const (
	QuestionMCQ       QuestionType = "MCQ"
	QuestionTrueFalse QuestionType = "TRUE_FALSE"
	QuestionEssay     QuestionType = "ESSAY"
)

type PaymentMethod string

const (
	PaymentVisa       PaymentMethod = "VISA"
	PaymentKnet       PaymentMethod = "KNET"
	PaymentMastercard PaymentMethod = "MASTERCARD"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

type NotificationType string

const (
	NotificationSystem  NotificationType = "SYSTEM"
	NotificationCourse  NotificationType = "COURSE"
	NotificationExam    NotificationType = "EXAM"
	NotificationPayment NotificationType = "PAYMENT"
)

type TicketStatus string

const (
	TicketOpen       TicketStatus = "OPEN"
	TicketInProgress TicketStatus = "IN_PROGRESS"
	TicketResolved   TicketStatus = "RESOLVED"
)

package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/datatypes"

	"bilingual-lms/pkg/models"
)

//go:embed data/dataset.json
var defaultDataset []byte

// Dataset is the seed input. Rows refer to each other by natural key: users by
// email, categories by English name, courses by slug and content by English
// title within its course.
type Dataset struct {
	Settings       []SettingRow       `json:"settings"`
	Users          []UserRow          `json:"users"`
	Categories     []CategoryRow      `json:"categories"`
	Courses        []CourseRow        `json:"courses"`
	Purchases      []PurchaseRow      `json:"purchases"`
	Progress       []ProgressRow      `json:"progress"`
	Ratings        []RatingRow        `json:"ratings"`
	TeacherRatings []TeacherRatingRow `json:"teacherRatings"`
	Carts          []CourseListRow    `json:"carts"`
	Wishlists      []CourseListRow    `json:"wishlists"`
	Notifications  []NotificationRow  `json:"notifications"`
	Tickets        []TicketRow        `json:"tickets"`
	Banners        []BannerRow        `json:"banners"`
}

type SettingRow struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	ValueAr     string `json:"valueAr"`
	ValueEn     string `json:"valueEn"`
	Description string `json:"description"`
}

type UserRow struct {
	Email      string            `json:"email"`
	NameAr     string            `json:"nameAr"`
	NameEn     string            `json:"nameEn"`
	Phone      string            `json:"phone"`
	Password   string            `json:"password,omitempty"`
	Role       models.Role       `json:"role"`
	Status     models.UserStatus `json:"status,omitempty"`
	Department string            `json:"department,omitempty"`
	Gender     models.Gender     `json:"gender,omitempty"`
}

type CategoryRow struct {
	NameAr        string `json:"nameAr"`
	NameEn        string `json:"nameEn"`
	DescriptionAr string `json:"descriptionAr"`
	DescriptionEn string `json:"descriptionEn"`
}

type CourseRow struct {
	Slug          string              `json:"slug,omitempty"`
	TitleAr       string              `json:"titleAr"`
	TitleEn       string              `json:"titleEn"`
	DescriptionAr string              `json:"descriptionAr"`
	DescriptionEn string              `json:"descriptionEn"`
	Teacher       string              `json:"teacher"`
	Category      string              `json:"category"`
	Price         float64             `json:"price"`
	Discount      float64             `json:"discount"`
	Level         models.CourseLevel  `json:"level,omitempty"`
	Status        models.CourseStatus `json:"status,omitempty"`
	Thumbnail     string              `json:"thumbnail,omitempty"`
	Chapters      []ChapterRow        `json:"chapters"`
	Contents      []ContentRow        `json:"contents"`
	Exams         []ExamRow           `json:"exams"`
}

// Key is the course slug, derived from the English title when not given.
func (c CourseRow) Key() string {
	if c.Slug != "" {
		return c.Slug
	}
	return slug.Make(c.TitleEn)
}

type ChapterRow struct {
	Order   int    `json:"order"`
	TitleAr string `json:"titleAr"`
	TitleEn string `json:"titleEn"`
}

type ContentRow struct {
	// Chapter is the order of the owning chapter; nil for course-level items.
	Chapter       *int               `json:"chapter,omitempty"`
	Type          models.ContentType `json:"type"`
	TitleAr       string             `json:"titleAr"`
	TitleEn       string             `json:"titleEn"`
	DescriptionAr string             `json:"descriptionAr,omitempty"`
	DescriptionEn string             `json:"descriptionEn,omitempty"`
	Order         int                `json:"order"`
	Duration      int                `json:"duration,omitempty"`
	FileURL       string             `json:"fileUrl,omitempty"`
	VideoURL      string             `json:"videoUrl,omitempty"`
	Intro         bool               `json:"intro,omitempty"`
	Quiz          *QuizRow           `json:"quiz,omitempty"`
}

type ExamRow struct {
	TitleAr       string        `json:"titleAr"`
	TitleEn       string        `json:"titleEn"`
	DescriptionAr string        `json:"descriptionAr,omitempty"`
	DescriptionEn string        `json:"descriptionEn,omitempty"`
	Duration      int           `json:"duration"`
	PassingScore  int           `json:"passingScore"`
	StartDate     *time.Time    `json:"startDate,omitempty"`
	EndDate       *time.Time    `json:"endDate,omitempty"`
	Questions     []QuestionRow `json:"questions"`
}

type QuizRow struct {
	TitleAr      string        `json:"titleAr"`
	TitleEn      string        `json:"titleEn"`
	PassingScore int           `json:"passingScore"`
	TimeLimit    int           `json:"timeLimit"`
	Questions    []QuestionRow `json:"questions"`
}

// QuestionRow keeps Options raw so any accepted option shape passes through.
type QuestionRow struct {
	Order         int                 `json:"order"`
	Type          models.QuestionType `json:"type"`
	QuestionAr    string              `json:"questionAr"`
	QuestionEn    string              `json:"questionEn"`
	Options       json.RawMessage     `json:"options,omitempty"`
	CorrectAnswer string              `json:"correctAnswer,omitempty"`
	Points        int                 `json:"points,omitempty"`
}

func (q QuestionRow) body() models.QuestionBody {
	b := models.QuestionBody{
		Type:          q.Type,
		QuestionAr:    q.QuestionAr,
		QuestionEn:    q.QuestionEn,
		CorrectAnswer: q.CorrectAnswer,
		Points:        q.Points,
	}
	if len(q.Options) > 0 && string(q.Options) != "null" {
		b.Options = datatypes.JSON(q.Options)
	}
	if b.Points == 0 {
		b.Points = 1
	}
	return b
}

type PurchaseRow struct {
	Student string               `json:"student"`
	Course  string               `json:"course"`
	Method  models.PaymentMethod `json:"method"`
	Status  models.PaymentStatus `json:"status,omitempty"`
}

type ProgressRow struct {
	Student string  `json:"student"`
	Course  string  `json:"course"`
	Content string  `json:"content"`
	Percent float64 `json:"percent"`
}

type RatingRow struct {
	Student   string `json:"student"`
	Course    string `json:"course"`
	Rating    int    `json:"rating"`
	CommentAr string `json:"commentAr,omitempty"`
	CommentEn string `json:"commentEn,omitempty"`
}

type TeacherRatingRow struct {
	Student   string `json:"student"`
	Teacher   string `json:"teacher"`
	Rating    int    `json:"rating"`
	CommentAr string `json:"commentAr,omitempty"`
	CommentEn string `json:"commentEn,omitempty"`
}

type CourseListRow struct {
	Student string   `json:"student"`
	Courses []string `json:"courses"`
}

type NotificationRow struct {
	Key       string                  `json:"key"`
	Sender    string                  `json:"sender"`
	Type      models.NotificationType `json:"type,omitempty"`
	Course    string                  `json:"course,omitempty"`
	TitleAr   string                  `json:"titleAr"`
	TitleEn   string                  `json:"titleEn"`
	MessageAr string                  `json:"messageAr"`
	MessageEn string                  `json:"messageEn"`
	// Recipients are emails; Roles adds every user holding one of them.
	Recipients []string      `json:"recipients,omitempty"`
	Roles      []models.Role `json:"roles,omitempty"`
}

type TicketRow struct {
	Key        string              `json:"key"`
	User       string              `json:"user"`
	Title      string              `json:"title"`
	Message    string              `json:"message"`
	Status     models.TicketStatus `json:"status,omitempty"`
	AdminReply string              `json:"adminReply,omitempty"`
}

type BannerRow struct {
	Key     string `json:"key"`
	Image   string `json:"image"`
	TitleAr string `json:"titleAr"`
	TitleEn string `json:"titleEn"`
	Link    string `json:"link,omitempty"`
	Order   int    `json:"order"`
	Active  bool   `json:"active"`
}

// Default returns the built-in dataset.
func Default() (*Dataset, error) {
	return Parse(defaultDataset)
}

// Load reads a dataset from path, or the built-in one when path is empty.
func Load(path string) (*Dataset, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Dataset, error) {
	var d Dataset
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return &d, nil
}

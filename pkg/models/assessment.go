package models

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Exam struct {
	gorm.Model
	CourseID      uint           `gorm:"not null;uniqueIndex:idx_exams_course_title" json:"courseId" validate:"required"`
	TitleAr       string         `gorm:"not null" json:"titleAr" validate:"required"`
	TitleEn       string         `gorm:"not null;uniqueIndex:idx_exams_course_title" json:"titleEn" validate:"required"`
	DescriptionAr string         `gorm:"type:text" json:"descriptionAr"`
	DescriptionEn string         `gorm:"type:text" json:"descriptionEn"`
	Duration      int            `gorm:"not null;default:0" json:"duration" validate:"gte=0"`
	PassingScore  int            `gorm:"not null;check:passing_score >= 0 AND passing_score <= 100" json:"passingScore" validate:"gte=0,lte=100"`
	StartDate     *time.Time     `json:"startDate"`
	EndDate       *time.Time     `json:"endDate"`
	Questions     []ExamQuestion `gorm:"foreignKey:ExamID" json:"questions,omitempty" validate:"-"`
}

func (e *Exam) BeforeSave(tx *gorm.DB) error {
	if err := Validate(e); err != nil {
		return err
	}
	if e.StartDate != nil && e.EndDate != nil && e.EndDate.Before(*e.StartDate) {
		return invalid("endDate: before startDate")
	}
	return nil
}

// Open reports whether at falls inside the exam window. A missing bound is
// unbounded on that side.
func (e *Exam) Open(at time.Time) bool {
	if e.StartDate != nil && at.Before(*e.StartDate) {
		return false
	}
	if e.EndDate != nil && at.After(*e.EndDate) {
		return false
	}
	return true
}

type Quiz struct {
	gorm.Model
	ContentID    uint           `gorm:"not null;uniqueIndex" json:"contentId" validate:"required"`
	TitleAr      string         `gorm:"not null" json:"titleAr" validate:"required"`
	TitleEn      string         `gorm:"not null" json:"titleEn" validate:"required"`
	PassingScore int            `gorm:"not null;check:passing_score >= 0 AND passing_score <= 100" json:"passingScore" validate:"gte=0,lte=100"`
	TimeLimit    int            `gorm:"not null;default:0" json:"timeLimit" validate:"gte=0"`
	Questions    []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions,omitempty" validate:"-"`
}

func (q *Quiz) BeforeSave(tx *gorm.DB) error {
	return Validate(q)
}

// Option is one MCQ choice.
type Option struct {
	Key string `json:"key"`
	Ar  string `json:"ar"`
	En  string `json:"en"`
}

// QuestionBody is the shape shared by exam and quiz questions.
type QuestionBody struct {
	Type          QuestionType   `gorm:"type:varchar(16);not null" json:"type" validate:"oneof=MCQ TRUE_FALSE ESSAY"`
	QuestionAr    string         `gorm:"type:text;not null" json:"questionAr" validate:"required"`
	QuestionEn    string         `gorm:"type:text;not null" json:"questionEn" validate:"required"`
	Options       datatypes.JSON `json:"options,omitempty"`
	CorrectAnswer string         `gorm:"type:text" json:"correctAnswer"`
	Points        int            `gorm:"not null;default:1" json:"points" validate:"gte=0"`
}

// Question is implemented by ExamQuestion and QuizQuestion.
type Question interface {
	QuestionID() uint
	Body() *QuestionBody
}

// ParsedOptions decodes Options. Stored options may be a list of plain
// strings (keyed by index), a list of Option objects, or an object mapping
// key to {ar, en}; the last form is returned sorted by key.
func (q *QuestionBody) ParsedOptions() ([]Option, error) {
	raw := strings.TrimSpace(string(q.Options))
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var texts []string
	if err := json.Unmarshal(q.Options, &texts); err == nil {
		out := make([]Option, len(texts))
		for i, t := range texts {
			out[i] = Option{Key: strconv.Itoa(i), Ar: t, En: t}
		}
		return out, nil
	}
	var list []Option
	if err := json.Unmarshal(q.Options, &list); err == nil {
		return list, nil
	}
	var byKey map[string]struct {
		Ar string `json:"ar"`
		En string `json:"en"`
	}
	if err := json.Unmarshal(q.Options, &byKey); err != nil {
		return nil, invalid("options: %v", err)
	}
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Option, 0, len(keys))
	for _, k := range keys {
		out = append(out, Option{Key: k, Ar: byKey[k].Ar, En: byKey[k].En})
	}
	return out, nil
}

// EncodeOptions stores opts in the list-of-objects form.
func EncodeOptions(opts []Option) datatypes.JSON {
	if len(opts) == 0 {
		return nil
	}
	b, _ := json.Marshal(opts)
	return datatypes.JSON(b)
}

// Check enforces the per-type rules on options and the correct answer.
func (q *QuestionBody) Check() error {
	opts, err := q.ParsedOptions()
	if err != nil {
		return err
	}
	switch q.Type {
	case QuestionMCQ:
		if len(opts) < 2 {
			return invalid("options: MCQ needs at least two options")
		}
		seen := make(map[string]bool, len(opts))
		for _, o := range opts {
			if o.Key == "" || seen[o.Key] {
				return invalid("options: empty or repeated key %q", o.Key)
			}
			seen[o.Key] = true
		}
		if !seen[q.CorrectAnswer] {
			return invalid("correctAnswer: %q is not an option key", q.CorrectAnswer)
		}
	case QuestionTrueFalse:
		if len(opts) > 0 {
			return invalid("options: only MCQ questions carry options")
		}
		if !isTrueFalse(q.CorrectAnswer) {
			return invalid("correctAnswer: TRUE_FALSE answer must be true or false")
		}
	case QuestionEssay:
		if len(opts) > 0 {
			return invalid("options: only MCQ questions carry options")
		}
	}
	return nil
}

func isTrueFalse(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "false"
}

type ExamQuestion struct {
	gorm.Model
	ExamID uint `gorm:"not null;uniqueIndex:idx_exam_questions_order" json:"examId" validate:"required"`
	Order  int  `gorm:"column:sort_order;not null;uniqueIndex:idx_exam_questions_order" json:"order" validate:"gte=0"`
	QuestionBody
}

func (q *ExamQuestion) BeforeSave(tx *gorm.DB) error {
	if err := Validate(q); err != nil {
		return err
	}
	return q.Check()
}

func (q *ExamQuestion) QuestionID() uint    { return q.ID }
func (q *ExamQuestion) Body() *QuestionBody { return &q.QuestionBody }

type QuizQuestion struct {
	gorm.Model
	QuizID uint `gorm:"not null;uniqueIndex:idx_quiz_questions_order" json:"quizId" validate:"required"`
	Order  int  `gorm:"column:sort_order;not null;uniqueIndex:idx_quiz_questions_order" json:"order" validate:"gte=0"`
	QuestionBody
}

func (q *QuizQuestion) BeforeSave(tx *gorm.DB) error {
	if err := Validate(q); err != nil {
		return err
	}
	return q.Check()
}

func (q *QuizQuestion) QuestionID() uint    { return q.ID }
func (q *QuizQuestion) Body() *QuestionBody { return &q.QuestionBody }

// ExamAttempt is one graded exam submission.
type ExamAttempt struct {
	gorm.Model
	ExamID        uint           `gorm:"not null;uniqueIndex:idx_exam_attempts_number" json:"examId"`
	StudentID     uint           `gorm:"not null;uniqueIndex:idx_exam_attempts_number" json:"studentId"`
	Attempt       int            `gorm:"not null;uniqueIndex:idx_exam_attempts_number" json:"attempt"`
	Score         float64        `gorm:"not null" json:"score"`
	Passed        bool           `gorm:"not null" json:"passed"`
	PendingReview bool           `gorm:"not null" json:"pendingReview"`
	Answers       datatypes.JSON `json:"answers"`
	SubmittedAt   time.Time      `gorm:"not null" json:"submittedAt"`
}

// QuizAttempt is opened when a student starts a quiz and graded on submit.
type QuizAttempt struct {
	gorm.Model
	QuizID        uint           `gorm:"not null;index:idx_quiz_attempts_student" json:"quizId"`
	StudentID     uint           `gorm:"not null;index:idx_quiz_attempts_student" json:"studentId"`
	Score         float64        `gorm:"not null" json:"score"`
	Passed        bool           `gorm:"not null" json:"passed"`
	PendingReview bool           `gorm:"not null" json:"pendingReview"`
	Answers       datatypes.JSON `json:"answers"`
	TimedOut      bool           `gorm:"not null" json:"timedOut"`
	StartedAt     time.Time      `gorm:"not null" json:"startedAt"`
	SubmittedAt   *time.Time     `json:"submittedAt"`
}

// Deadline is when the attempt stops accepting answers; ok is false when the
// quiz has no time limit.
func (a *QuizAttempt) Deadline(limitMinutes int) (deadline time.Time, ok bool) {
	if limitMinutes <= 0 {
		return time.Time{}, false
	}
	return a.StartedAt.Add(time.Duration(limitMinutes) * time.Minute), true
}

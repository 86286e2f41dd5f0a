package exams

import (
	"strings"

	"bilingual-lms/pkg/models"
)

type Answer struct {
	QuestionID uint   `json:"questionId"`
	Answer     string `json:"answer"`
}

type Detail struct {
	QuestionID  uint                `json:"questionId"`
	Type        models.QuestionType `json:"type"`
	Answer      string              `json:"answer"`
	Correct     bool                `json:"correct"`
	Points      int                 `json:"points"`
	Earned      int                 `json:"earned"`
	NeedsReview bool                `json:"needsReview"`
}

// Result of automatic grading. Essay questions never count toward Earned or
// Total; an answered essay sets PendingReview.
type Result struct {
	Score         float64  `json:"score"`
	Earned        int      `json:"earned"`
	Total         int      `json:"total"`
	Passed        bool     `json:"passed"`
	PendingReview bool     `json:"pendingReview"`
	Details       []Detail `json:"details"`
}

// Grade scores answers against questions. Answers to unknown questions are
// ignored, and unanswered questions earn nothing.
func Grade(questions []models.Question, answers []Answer, passingScore int) Result {
	given := make(map[uint]string, len(answers))
	for _, a := range answers {
		given[a.QuestionID] = strings.TrimSpace(a.Answer)
	}

	res := Result{Details: make([]Detail, 0, len(questions))}
	for _, q := range questions {
		body := q.Body()
		ans := given[q.QuestionID()]
		d := Detail{QuestionID: q.QuestionID(), Type: body.Type, Answer: ans, Points: body.Points}

		switch body.Type {
		case models.QuestionMCQ:
			d.Correct = ans != "" && ans == strings.TrimSpace(body.CorrectAnswer)
		case models.QuestionTrueFalse:
			d.Correct = ans != "" && strings.EqualFold(ans, strings.TrimSpace(body.CorrectAnswer))
		case models.QuestionEssay:
			d.NeedsReview = ans != ""
			res.PendingReview = res.PendingReview || d.NeedsReview
			res.Details = append(res.Details, d)
			continue
		}
		res.Total += body.Points
		if d.Correct {
			d.Earned = body.Points
			res.Earned += body.Points
		}
		res.Details = append(res.Details, d)
	}

	if res.Total > 0 {
		res.Score = float64(res.Earned) / float64(res.Total) * 100
	}
	res.Passed = res.Score >= float64(passingScore)
	return res
}

func examQuestions(qs []models.ExamQuestion) []models.Question {
	out := make([]models.Question, len(qs))
	for i := range qs {
		out[i] = &qs[i]
	}
	return out
}

func quizQuestions(qs []models.QuizQuestion) []models.Question {
	out := make([]models.Question, len(qs))
	for i := range qs {
		out[i] = &qs[i]
	}
	return out
}

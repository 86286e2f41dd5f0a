package courses

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"bilingual-lms/pkg/models"
	"bilingual-lms/pkg/store"
)

// AddChapter inserts ch keyed on (course, order).
func (s *Service) AddChapter(ctx context.Context, ch *models.Chapter) (store.Outcome, error) {
	if _, err := s.ByID(ctx, ch.CourseID); err != nil {
		return store.Failed, err
	}
	out, err := store.UpsertByKey(ctx, s.db, ch, "CourseID", "Order")
	if err != nil {
		return out, fmt.Errorf("add chapter %q: %w", ch.TitleEn, err)
	}
	s.log.Info("chapter "+out.String(), "course_id", ch.CourseID, "order", ch.Order)
	return out, nil
}

// AddContent inserts c keyed on (course, English title). A chapter-scoped
// item must point at a chapter of the same course.
func (s *Service) AddContent(ctx context.Context, c *models.CourseContent) (store.Outcome, error) {
	course, err := s.ByID(ctx, c.CourseID)
	if err != nil {
		return store.Failed, err
	}
	if c.ChapterID != nil {
		var ch models.Chapter
		if err := s.db.WithContext(ctx).First(&ch, *c.ChapterID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.Failed, ErrChapterMismatch
			}
			return store.Failed, err
		}
		if ch.CourseID != c.CourseID {
			return store.Failed, ErrChapterMismatch
		}
	}

	out, err := store.UpsertByKey(ctx, s.db, c, "CourseID", "TitleEn")
	if err != nil {
		return out, fmt.Errorf("add content %q: %w", c.TitleEn, err)
	}
	s.log.Info("content "+out.String(), "course_id", c.CourseID, "content_id", c.ID, "type", c.Type)
	if out == store.Created {
		s.notifyPurchasers(ctx, course, "COURSE.NEW_CONTENT")
	}
	return out, nil
}

type ChapterOutline struct {
	Chapter  models.Chapter
	Contents []models.CourseContent
}

// Outline is a course in display order.
type Outline struct {
	Course   models.Course
	Intro    *models.CourseContent
	Chapters []ChapterOutline
	// Loose holds course-level items that are neither the intro nor in a chapter.
	Loose []models.CourseContent
}

func (s *Service) Outline(ctx context.Context, courseID uint) (*Outline, error) {
	course, err := s.ByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var chapters []models.Chapter
	if err := db.Where("course_id = ?", courseID).Order("sort_order").Find(&chapters).Error; err != nil {
		return nil, err
	}
	var contents []models.CourseContent
	if err := db.Where("course_id = ?", courseID).Order("sort_order, id").Find(&contents).Error; err != nil {
		return nil, err
	}

	out := &Outline{Course: *course, Chapters: make([]ChapterOutline, len(chapters))}
	pos := make(map[uint]int, len(chapters))
	for i, ch := range chapters {
		out.Chapters[i].Chapter = ch
		pos[ch.ID] = i
	}
	for i := range contents {
		c := contents[i]
		switch {
		case c.IsCourseIntro() && out.Intro == nil:
			out.Intro = &c
		case c.ChapterID != nil:
			if p, ok := pos[*c.ChapterID]; ok {
				out.Chapters[p].Contents = append(out.Chapters[p].Contents, c)
			}
		default:
			out.Loose = append(out.Loose, c)
		}
	}
	return out, nil
}

package seed

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"bilingual-lms/pkg/models"
)

// ErrMissingRef is returned when a row names an entity that does not exist.
var ErrMissingRef = errors.New("seed: unknown reference")

type chapterKey struct {
	course uint
	order  int
}

type contentKey struct {
	course uint
	title  string
}

// refs resolves natural keys to rows, remembering what earlier steps wrote so
// that a full run needs few lookups and a partial run still works.
type refs struct {
	db         *gorm.DB
	users      map[string]*models.User
	categories map[string]uint
	courses    map[string]*models.Course
	chapters   map[chapterKey]uint
	contents   map[contentKey]uint
}

func newRefs(db *gorm.DB) *refs {
	return &refs{
		db:         db,
		users:      map[string]*models.User{},
		categories: map[string]uint{},
		courses:    map[string]*models.Course{},
		chapters:   map[chapterKey]uint{},
		contents:   map[contentKey]uint{},
	}
}

func (r *refs) user(ctx context.Context, email string) (*models.User, error) {
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	var u models.User
	if err := r.take(ctx, &u, "email = ?", email); err != nil {
		return nil, fmt.Errorf("user %q: %w", email, err)
	}
	r.users[email] = &u
	return &u, nil
}

func (r *refs) category(ctx context.Context, nameEn string) (uint, error) {
	if id, ok := r.categories[nameEn]; ok {
		return id, nil
	}
	var c models.Category
	if err := r.take(ctx, &c, "name_en = ?", nameEn); err != nil {
		return 0, fmt.Errorf("category %q: %w", nameEn, err)
	}
	r.categories[nameEn] = c.ID
	return c.ID, nil
}

func (r *refs) course(ctx context.Context, slug string) (*models.Course, error) {
	if c, ok := r.courses[slug]; ok {
		return c, nil
	}
	var c models.Course
	if err := r.take(ctx, &c, "slug = ?", slug); err != nil {
		return nil, fmt.Errorf("course %q: %w", slug, err)
	}
	r.courses[slug] = &c
	return &c, nil
}

func (r *refs) chapter(ctx context.Context, courseID uint, order int) (uint, error) {
	k := chapterKey{courseID, order}
	if id, ok := r.chapters[k]; ok {
		return id, nil
	}
	var ch models.Chapter
	if err := r.take(ctx, &ch, "course_id = ? AND sort_order = ?", courseID, order); err != nil {
		return 0, fmt.Errorf("chapter %d of course %d: %w", order, courseID, err)
	}
	r.chapters[k] = ch.ID
	return ch.ID, nil
}

func (r *refs) content(ctx context.Context, courseID uint, titleEn string) (uint, error) {
	k := contentKey{courseID, titleEn}
	if id, ok := r.contents[k]; ok {
		return id, nil
	}
	var c models.CourseContent
	if err := r.take(ctx, &c, "course_id = ? AND title_en = ?", courseID, titleEn); err != nil {
		return 0, fmt.Errorf("content %q of course %d: %w", titleEn, courseID, err)
	}
	r.contents[k] = c.ID
	return c.ID, nil
}

func (r *refs) usersWithRoles(ctx context.Context, roles []models.Role) ([]uint, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("role IN ?", roles).Order("id").Pluck("id", &ids).Error
	return ids, err
}

func (r *refs) take(ctx context.Context, dst any, query string, args ...any) error {
	err := r.db.WithContext(ctx).Where(query, args...).Take(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrMissingRef
	}
	return err
}

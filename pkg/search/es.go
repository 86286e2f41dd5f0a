package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"gorm.io/gorm"

	"bilingual-lms/pkg/i18n"
	"bilingual-lms/pkg/logger"
	"bilingual-lms/pkg/models"
)

// CourseDoc is the indexed form of a course.
type CourseDoc struct {
	ID            uint    `json:"id"`
	Slug          string  `json:"slug"`
	TitleAr       string  `json:"titleAr"`
	TitleEn       string  `json:"titleEn"`
	DescriptionAr string  `json:"descriptionAr"`
	DescriptionEn string  `json:"descriptionEn"`
	CategoryID    uint    `json:"categoryId"`
	TeacherID     uint    `json:"teacherId"`
	Level         string  `json:"level"`
	FinalPrice    float64 `json:"finalPrice"`
	Published     bool    `json:"published"`
}

func DocFromCourse(c *models.Course) CourseDoc {
	return CourseDoc{
		ID:            c.ID,
		Slug:          c.Slug,
		TitleAr:       c.TitleAr,
		TitleEn:       c.TitleEn,
		DescriptionAr: c.DescriptionAr,
		DescriptionEn: c.DescriptionEn,
		CategoryID:    c.CategoryID,
		TeacherID:     c.TeacherID,
		Level:         string(c.Level),
		FinalPrice:    c.FinalPrice,
		Published:     c.Published(),
	}
}

type Index struct {
	es   *elasticsearch.Client
	name string
	log  *logger.Logger
}

func NewIndex(es *elasticsearch.Client, name string, log *logger.Logger) *Index {
	return &Index{es: es, name: name, log: log.With("service", "SearchIndex", "index", name)}
}

func (ix *Index) IndexCourse(ctx context.Context, course *models.Course) error {
	data, err := json.Marshal(DocFromCourse(course))
	if err != nil {
		return err
	}
	res, err := ix.es.Index(
		ix.name,
		bytes.NewReader(data),
		ix.es.Index.WithContext(ctx),
		ix.es.Index.WithDocumentID(strconv.FormatUint(uint64(course.ID), 10)),
		ix.es.Index.WithRefresh("true"),
	)
	if err != nil {
		ix.log.Warn("index course failed", "course_id", course.ID, "error", err)
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		ix.log.Warn("index course rejected", "course_id", course.ID, "status", res.StatusCode)
		return fmt.Errorf("elasticsearch index: %s", res.String())
	}
	return nil
}

func (ix *Index) DeleteCourse(ctx context.Context, id uint) error {
	res, err := ix.es.Delete(
		ix.name,
		strconv.FormatUint(uint64(id), 10),
		ix.es.Delete.WithContext(ctx),
		ix.es.Delete.WithRefresh("true"),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("elasticsearch delete: %s", res.String())
	}
	return nil
}

// CourseQuery matches published courses whose title or description contains
// q. Fields of lang are boosted over the other language.
func CourseQuery(q string, lang i18n.Lang) map[string]interface{} {
	primary, secondary := "En", "Ar"
	if lang == i18n.AR {
		primary, secondary = "Ar", "En"
	}
	wildcard := func(field string, boost float64) map[string]interface{} {
		return map[string]interface{}{
			"wildcard": map[string]interface{}{
				field: map[string]interface{}{
					"value":            "*" + q + "*",
					"case_insensitive": true,
					"boost":            boost,
				},
			},
		}
	}
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"published": true}},
				},
				"should": []interface{}{
					wildcard("title"+primary, 4),
					wildcard("description"+primary, 2),
					wildcard("title"+secondary, 1),
					wildcard("description"+secondary, 0.5),
				},
				"minimum_should_match": 1,
			},
		},
	}
}

func (ix *Index) SearchCourses(ctx context.Context, q string, lang i18n.Lang) ([]CourseDoc, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(CourseQuery(q, lang)); err != nil {
		return nil, err
	}
	res, err := ix.es.Search(
		ix.es.Search.WithContext(ctx),
		ix.es.Search.WithIndex(ix.name),
		ix.es.Search.WithBody(&buf),
		ix.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search: %s", res.String())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source CourseDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}
	results := make([]CourseDoc, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		results = append(results, h.Source)
	}
	return results, nil
}

// Reindex pushes every course in db to the index and returns how many were
// written.
func (ix *Index) Reindex(ctx context.Context, db *gorm.DB) (int, error) {
	var courses []models.Course
	if err := db.WithContext(ctx).Order("id").Find(&courses).Error; err != nil {
		return 0, err
	}
	for i := range courses {
		if err := ix.IndexCourse(ctx, &courses[i]); err != nil {
			return i, err
		}
	}
	ix.log.Info("reindexed courses", "count", len(courses))
	return len(courses), nil
}

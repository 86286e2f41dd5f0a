package models

import (
	"reflect"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type Course struct {
	gorm.Model
	TitleAr       string          `gorm:"not null" json:"titleAr" validate:"required"`
	TitleEn       string          `gorm:"not null" json:"titleEn" validate:"required"`
	Slug          string          `gorm:"uniqueIndex;not null" json:"slug"`
	DescriptionAr string          `gorm:"type:text" json:"descriptionAr"`
	DescriptionEn string          `gorm:"type:text" json:"descriptionEn"`
	TeacherID     uint            `gorm:"index;not null" json:"teacherId" validate:"required"`
	CategoryID    uint            `gorm:"index;not null" json:"categoryId" validate:"required"`
	Price         float64         `gorm:"not null;default:0;check:price >= 0" json:"price" validate:"gte=0"`
	Discount      float64         `gorm:"not null;default:0;check:discount >= 0 AND discount <= 100" json:"discount" validate:"gte=0,lte=100"`
	FinalPrice    float64         `gorm:"not null;default:0" json:"finalPrice"`
	Level         CourseLevel     `gorm:"type:varchar(16);not null;check:level IN ('BEGINNER','INTERMEDIATE','ADVANCED')" json:"level" validate:"oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Status        CourseStatus    `gorm:"type:varchar(16);not null;index;check:status IN ('DRAFT','PUBLISHED')" json:"status" validate:"oneof=DRAFT PUBLISHED"`
	Thumbnail     string          `json:"thumbnail"`
	Chapters      []Chapter       `gorm:"foreignKey:CourseID" json:"chapters,omitempty" validate:"-"`
	Contents      []CourseContent `gorm:"foreignKey:CourseID" json:"contents,omitempty" validate:"-"`
}

// FinalPrice applies a percentage discount to price.
func FinalPrice(price, discount float64) float64 {
	return price * (1 - discount/100)
}

// BeforeSave derives FinalPrice on every create and full save.
func (c *Course) BeforeSave(tx *gorm.DB) error {
	if c.Level == "" {
		c.Level = LevelBeginner
	}
	if c.Status == "" {
		c.Status = CourseDraft
	}
	if c.Slug == "" {
		c.Slug = slug.Make(c.TitleEn)
	}
	if err := Validate(c); err != nil {
		return err
	}
	if c.Slug == "" {
		return invalid("slug: cannot derive from title %q", c.TitleEn)
	}
	c.FinalPrice = FinalPrice(c.Price, c.Discount)
	return nil
}

// BeforeUpdate re-derives final_price when a partial update (Update or
// Updates) changes price or discount. UpdateColumn skips hooks and must not
// touch either column.
func (c *Course) BeforeUpdate(tx *gorm.DB) error {
	if !tx.Statement.Changed("Price", "Discount") {
		return nil
	}
	price, err := updatedFloat(tx.Statement, "Price", c.Price)
	if err != nil {
		return err
	}
	discount, err := updatedFloat(tx.Statement, "Discount", c.Discount)
	if err != nil {
		return err
	}
	if price < 0 {
		return invalid("price: %v below 0", price)
	}
	if discount < 0 || discount > 100 {
		return invalid("discount: %v outside 0..100", discount)
	}
	tx.Statement.SetColumn("final_price", FinalPrice(price, discount))
	return nil
}

// updatedFloat returns the value an update assigns to the named field, or
// current when the update leaves it alone.
func updatedFloat(stmt *gorm.Statement, name string, current float64) (float64, error) {
	field := stmt.Schema.LookUpField(name)
	if field == nil {
		return current, nil
	}
	if m, ok := stmt.Dest.(map[string]interface{}); ok {
		for _, k := range []string{field.Name, field.DBName} {
			if v, ok := m[k]; ok {
				return toFloat(field.DBName, v)
			}
		}
		return current, nil
	}
	rv := reflect.Indirect(reflect.ValueOf(stmt.Dest))
	if rv.Kind() != reflect.Struct || rv.Type() != stmt.Schema.ModelType {
		return current, nil
	}
	v, zero := field.ValueOf(stmt.Context, rv)
	if zero {
		return current, nil
	}
	return toFloat(field.DBName, v)
}

func toFloat(column string, v any) (float64, error) {
	rv := reflect.Indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	}
	return 0, invalid("%s: cannot derive final_price from %T", column, v)
}

// Published reports whether students can see and buy the course.
func (c *Course) Published() bool {
	return c.Status == CoursePublished
}

type Chapter struct {
	gorm.Model
	CourseID uint            `gorm:"not null;uniqueIndex:idx_chapters_course_order" json:"courseId" validate:"required"`
	TitleAr  string          `gorm:"not null" json:"titleAr" validate:"required"`
	TitleEn  string          `gorm:"not null" json:"titleEn" validate:"required"`
	Order    int             `gorm:"column:sort_order;not null;uniqueIndex:idx_chapters_course_order" json:"order" validate:"gte=0"`
	Contents []CourseContent `gorm:"foreignKey:ChapterID" json:"contents,omitempty" validate:"-"`
}

func (c *Chapter) BeforeSave(tx *gorm.DB) error {
	return Validate(c)
}

// CourseContent with IsIntroVideo set and no chapter is the course intro;
// everything else with a ChapterID is chapter-scoped.
type CourseContent struct {
	gorm.Model
	CourseID      uint        `gorm:"not null;uniqueIndex:idx_contents_course_title" json:"courseId" validate:"required"`
	ChapterID     *uint       `gorm:"index" json:"chapterId"`
	Type          ContentType `gorm:"type:varchar(16);not null;check:type IN ('VIDEO','PDF','TEXT','ASSIGNMENT')" json:"type" validate:"oneof=VIDEO PDF TEXT ASSIGNMENT"`
	TitleAr       string      `gorm:"not null" json:"titleAr" validate:"required"`
	TitleEn       string      `gorm:"not null;uniqueIndex:idx_contents_course_title" json:"titleEn" validate:"required"`
	DescriptionAr string      `gorm:"type:text" json:"descriptionAr"`
	DescriptionEn string      `gorm:"type:text" json:"descriptionEn"`
	Order         int         `gorm:"column:sort_order;not null;default:0" json:"order" validate:"gte=0"`
	Duration      int         `gorm:"not null;default:0" json:"duration" validate:"gte=0"`
	FileURL       string      `json:"fileUrl"`
	VideoURL      string      `json:"videoUrl"`
	IsIntroVideo  bool        `gorm:"not null;default:false" json:"isIntroVideo"`
}

func (c *CourseContent) BeforeSave(tx *gorm.DB) error {
	if err := Validate(c); err != nil {
		return err
	}
	switch c.Type {
	case ContentVideo:
		if c.VideoURL == "" {
			return invalid("videoUrl: required for %s content", c.Type)
		}
	case ContentPDF, ContentAssignment:
		if c.FileURL == "" {
			return invalid("fileUrl: required for %s content", c.Type)
		}
	}
	if c.IsIntroVideo && c.Type != ContentVideo {
		return invalid("isIntroVideo: only VIDEO content can be an intro")
	}
	return nil
}

// IsCourseIntro reports whether the item is the course-level intro video.
func (c *CourseContent) IsCourseIntro() bool {
	return c.IsIntroVideo && c.ChapterID == nil
}

package testutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bilingual-lms/pkg/models"
)

func User(t testing.TB, db *gorm.DB, role models.Role, email string) *models.User {
	t.Helper()
	u := &models.User{
		NameAr:       "مستخدم " + email,
		NameEn:       "User " + email,
		Email:        email,
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func Teacher(t testing.TB, db *gorm.DB) *models.User {
	return User(t, db, models.RoleTeacher, fmt.Sprintf("teacher%d@example.com", dbSeq.Add(1)))
}

func Student(t testing.TB, db *gorm.DB) *models.User {
	return User(t, db, models.RoleStudent, fmt.Sprintf("student%d@example.com", dbSeq.Add(1)))
}

func Category(t testing.TB, db *gorm.DB) *models.Category {
	t.Helper()
	n := dbSeq.Add(1)
	c := &models.Category{NameAr: fmt.Sprintf("تصنيف %d", n), NameEn: fmt.Sprintf("Category %d", n)}
	require.NoError(t, db.Create(c).Error)
	return c
}

// Course creates a published course with its own teacher and category.
func Course(t testing.TB, db *gorm.DB, price, discount float64) *models.Course {
	t.Helper()
	n := dbSeq.Add(1)
	c := &models.Course{
		TitleAr:    fmt.Sprintf("دورة %d", n),
		TitleEn:    fmt.Sprintf("Course %d", n),
		TeacherID:  Teacher(t, db).ID,
		CategoryID: Category(t, db).ID,
		Price:      price,
		Discount:   discount,
		Status:     models.CoursePublished,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func Content(t testing.TB, db *gorm.DB, courseID uint, order int) *models.CourseContent {
	t.Helper()
	c := &models.CourseContent{
		CourseID: courseID,
		Type:     models.ContentText,
		TitleAr:  fmt.Sprintf("درس %d", order),
		TitleEn:  fmt.Sprintf("Lesson %d", order),
		Order:    order,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func Purchase(t testing.TB, db *gorm.DB, studentID uint, course *models.Course) *models.Purchase {
	t.Helper()
	p := &models.Purchase{StudentID: studentID, CourseID: course.ID, Amount: course.FinalPrice}
	require.NoError(t, db.Create(p).Error)
	return p
}

func Count(t testing.TB, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

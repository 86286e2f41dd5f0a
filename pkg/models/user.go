package models

import (
	"gorm.io/gorm"
)

// User accounts are never hard-deleted while other rows reference them; set
// Status instead.
type User struct {
	gorm.Model
	NameAr       string     `gorm:"not null" json:"nameAr" validate:"required"`
	NameEn       string     `gorm:"not null" json:"nameEn" validate:"required"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	Phone        string     `json:"phone"`
	PasswordHash string     `gorm:"not null" json:"-" validate:"required"`
	Role         Role       `gorm:"type:varchar(16);not null;index;check:role IN ('ADMIN','TEACHER','STUDENT')" json:"role" validate:"oneof=ADMIN TEACHER STUDENT"`
	Status       UserStatus `gorm:"type:varchar(16);not null;check:status IN ('ACTIVE','INACTIVE','SUSPENDED')" json:"status" validate:"oneof=ACTIVE INACTIVE SUSPENDED"`
	Department   string     `json:"department"`
	Gender       Gender     `gorm:"type:varchar(8)" json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE"`
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleStudent
	}
	if u.Status == "" {
		u.Status = UserActive
	}
	return Validate(u)
}

type Category struct {
	gorm.Model
	NameAr        string   `gorm:"not null" json:"nameAr" validate:"required"`
	NameEn        string   `gorm:"uniqueIndex;not null" json:"nameEn" validate:"required"`
	DescriptionAr string   `gorm:"type:text" json:"descriptionAr"`
	DescriptionEn string   `gorm:"type:text" json:"descriptionEn"`
	Courses       []Course `gorm:"foreignKey:CategoryID" json:"courses,omitempty" validate:"-"`
}

func (c *Category) BeforeSave(tx *gorm.DB) error {
	return Validate(c)
}

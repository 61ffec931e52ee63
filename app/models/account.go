package models

import "gorm.io/gorm"

// Account is a registered customer or administrator.
type Account struct {
	gorm.Model
	Name     string `gorm:"size:255;not null" json:"name"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt hash, never serialised
	Role     string `gorm:"size:50;default:CUSTOMER" json:"role"`
	Address  string `gorm:"size:500" json:"address"`
}

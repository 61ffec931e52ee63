package models

import "gorm.io/gorm"

// Price is a shared, deduplicated price value. The uniqueIndex on Amount is
// what makes resolve-or-create safe under concurrent first use: a losing
// insert fails with a duplicated-key error and re-reads the winner's row.
// A price row lives while any product or any order item references it.
type Price struct {
	gorm.Model
	Amount float64 `gorm:"uniqueIndex;not null" json:"amount"`
}

// Category is a shared, deduplicated category name, linked to products
// through ProductCategory rows and reference-counted the same way as Price.
type Category struct {
	gorm.Model
	Name string `gorm:"uniqueIndex;size:255;not null" json:"name"`
}

// Product represents a product in the catalogue. Stock never goes negative
// at any committed state.
type Product struct {
	gorm.Model
	Name        string `gorm:"size:255;not null;index" json:"name"`
	Description string `gorm:"type:text"               json:"description"`
	Stock       int    `gorm:"not null;default:0"      json:"stock"`
	Thumbnail   string `gorm:"size:500"                json:"thumbnail"`
	PriceID     uint   `gorm:"not null;index"          json:"-"`
	Price       Price  `json:"price"`
}

// ProductCategory links a product to a category. Kept as an explicit model
// (rather than a many2many tag) because the garbage collector counts and
// deletes these rows directly.
type ProductCategory struct {
	ProductID  uint `gorm:"primaryKey" json:"product_id"`
	CategoryID uint `gorm:"primaryKey" json:"category_id"`
}

func (ProductCategory) TableName() string { return "product_categories" }

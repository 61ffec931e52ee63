package seeders

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/config"
	"github.com/shashiranjanraj/vyapar/pkg/auth"
)

func init() {
	Register("admin", SeedAdmin)
	Register("catalog", SeedCatalog)
}

// SeedAdmin creates the bootstrap admin account if it does not exist.
// Credentials come from ADMIN_EMAIL / ADMIN_PASSWORD.
func SeedAdmin(db *gorm.DB) error {
	email := config.Get("ADMIN_EMAIL", "admin@vyapar.local")

	var n int64
	if err := db.Model(&models.Account{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := auth.HashPassword(config.Get("ADMIN_PASSWORD", "change-me-now"))
	if err != nil {
		return err
	}

	return db.Create(&models.Account{
		Name:     "Administrator",
		Email:    email,
		Password: hash,
		Role:     auth.RoleAdmin,
	}).Error
}

// SeedCatalog inserts a small demo catalog. Idempotent: skips entirely when
// any product already exists.
func SeedCatalog(db *gorm.DB) error {
	var n int64
	if err := db.Model(&models.Product{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	demo := []struct {
		name        string
		description string
		amount      float64
		stock       int
		category    string
	}{
		{"Mechanical Keyboard", "Hot-swappable 87-key board", 79.99, 25, "electronics"},
		{"Wireless Mouse", "2.4 GHz, 1600 DPI", 24.99, 60, "electronics"},
		{"Desk Lamp", "Adjustable warm-white LED", 34.50, 15, "home"},
		{"Ceramic Mug", "350 ml, dishwasher safe", 9.99, 120, "home"},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, d := range demo {
			var price models.Price
			if err := tx.Where(models.Price{Amount: d.amount}).
				FirstOrCreate(&price, models.Price{Amount: d.amount}).Error; err != nil {
				return err
			}

			var category models.Category
			if err := tx.Where(models.Category{Name: d.category}).
				FirstOrCreate(&category, models.Category{Name: d.category}).Error; err != nil {
				return err
			}

			product := models.Product{
				Name:        d.name,
				Description: d.description,
				Stock:       d.stock,
				PriceID:     price.ID,
			}
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.ProductCategory{
				ProductID:  product.ID,
				CategoryID: category.ID,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

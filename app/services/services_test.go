package services_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/pkg/auth"
	"github.com/shashiranjanraj/vyapar/pkg/database"
	"github.com/shashiranjanraj/vyapar/pkg/storage"
)

var (
	admin    = auth.Principal{ID: 1, Role: auth.RoleAdmin}
	customer = auth.Principal{ID: 2, Role: auth.RoleCustomer}
)

// newTestDB opens a private in-memory store with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.OpenMemory()
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Account{},
		&models.Price{},
		&models.Category{},
		&models.Product{},
		&models.ProductCategory{},
		&models.Order{},
		&models.OrderItem{},
	))
	return db
}

// useTempStorage points the storage manager at a per-test directory.
func useTempStorage(t *testing.T) {
	t.Helper()
	storage.RegisterDisk("local", storage.NewLocalDisk(t.TempDir(), "http://localhost:8080/storage"))
}

// seedAccount inserts an account row so aggregation joins resolve.
func seedAccount(t *testing.T, db *gorm.DB, id uint, email, role string) {
	t.Helper()
	account := models.Account{
		Model:    gorm.Model{ID: id},
		Name:     "seeded",
		Email:    email,
		Password: "x",
		Role:     role,
	}
	require.NoError(t, db.Create(&account).Error)
}

// seedProduct inserts a product with a resolved price and linked category.
func seedProduct(t *testing.T, db *gorm.DB, name string, amount float64, stock int, category string) models.Product {
	t.Helper()

	var price models.Price
	require.NoError(t, db.Where(models.Price{Amount: amount}).FirstOrCreate(&price, models.Price{Amount: amount}).Error)

	var cat models.Category
	require.NoError(t, db.Where(models.Category{Name: category}).FirstOrCreate(&cat, models.Category{Name: category}).Error)

	product := models.Product{
		Name:        name,
		Description: name + " description",
		Stock:       stock,
		PriceID:     price.ID,
	}
	require.NoError(t, db.Create(&product).Error)
	require.NoError(t, db.Create(&models.ProductCategory{ProductID: product.ID, CategoryID: cat.ID}).Error)

	product.Price = price
	return product
}

// currentStock reloads a product's stock.
func currentStock(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var product models.Product
	require.NoError(t, db.First(&product, productID).Error)
	return product.Stock
}

// count returns the number of rows for the model matching query.
func count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

package migrations

import (
	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20260301000000_create_accounts_table", &CreateAccountsTable{})
	migration.Register("20260301000001_create_catalog_tables", &CreateCatalogTables{})
	migration.Register("20260301000002_create_order_tables", &CreateOrderTables{})
}

// -------- 0000: accounts --------

type CreateAccountsTable struct{}

func (m *CreateAccountsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Account{})
}

func (m *CreateAccountsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("accounts")
}

// -------- 0001: prices, categories, products, product_categories --------

type CreateCatalogTables struct{}

func (m *CreateCatalogTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Price{},
		&models.Category{},
		&models.Product{},
		&models.ProductCategory{},
	)
}

func (m *CreateCatalogTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("product_categories", "products", "categories", "prices")
}

// -------- 0002: orders, order_items --------

type CreateOrderTables struct{}

func (m *CreateOrderTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{}, &models.OrderItem{})
}

func (m *CreateOrderTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("order_items", "orders")
}

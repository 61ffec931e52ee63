package repositories

import (
	"errors"

	"github.com/shashiranjanraj/vyapar/app/models"
	"gorm.io/gorm"
)

// CatalogRepository handles database operations for products and the shared
// Price/Category reference data. Every method takes the transaction handle
// it must run on; nothing here touches a global connection.
type CatalogRepository struct{}

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{}
}

// ── Resolve-or-create ────────────────────────────────────────────────────────

// ResolvePrice returns the id of the price row holding amount, inserting a
// new row if none exists. Relies on the uniqueness constraint: a concurrent
// first use loses the insert with gorm.ErrDuplicatedKey and reuses the
// winner's row instead.
func (r *CatalogRepository) ResolvePrice(tx *gorm.DB, amount float64) (uint, error) {
	var price models.Price
	err := tx.Where("amount = ?", amount).First(&price).Error
	if err == nil {
		return price.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	price = models.Price{Amount: amount}
	if err := tx.Create(&price).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing models.Price
			if err := tx.Where("amount = ?", amount).First(&existing).Error; err != nil {
				return 0, err
			}
			return existing.ID, nil
		}
		return 0, err
	}
	return price.ID, nil
}

// ResolveCategory returns the id of the category row with this name,
// inserting a new row if none exists. Same conflict handling as ResolvePrice.
func (r *CatalogRepository) ResolveCategory(tx *gorm.DB, name string) (uint, error) {
	var category models.Category
	err := tx.Where("name = ?", name).First(&category).Error
	if err == nil {
		return category.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	category = models.Category{Name: name}
	if err := tx.Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing models.Category
			if err := tx.Where("name = ?", name).First(&existing).Error; err != nil {
				return 0, err
			}
			return existing.ID, nil
		}
		return 0, err
	}
	return category.ID, nil
}

// ── Reference counting / GC ──────────────────────────────────────────────────

// refSource is one "does anything point at this row" query.
type refSource struct {
	model  interface{}
	column string
}

// referenced is the single reference check every GC path goes through.
// The first source with a matching row short-circuits.
func referenced(tx *gorm.DB, id uint, sources ...refSource) (bool, error) {
	for _, src := range sources {
		var count int64
		if err := tx.Model(src.model).Where(src.column+" = ?", id).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

// PriceReferenced reports whether any product or order item still references
// the price row.
func (r *CatalogRepository) PriceReferenced(tx *gorm.DB, priceID uint) (bool, error) {
	return referenced(tx, priceID,
		refSource{&models.Product{}, "price_id"},
		refSource{&models.OrderItem{}, "price_id"},
	)
}

// CategoryReferenced reports whether any product link still references the
// category row.
func (r *CatalogRepository) CategoryReferenced(tx *gorm.DB, categoryID uint) (bool, error) {
	return referenced(tx, categoryID,
		refSource{&models.ProductCategory{}, "category_id"},
	)
}

// DeletePriceIfOrphaned removes the price row when nothing references it.
func (r *CatalogRepository) DeletePriceIfOrphaned(tx *gorm.DB, priceID uint) error {
	used, err := r.PriceReferenced(tx, priceID)
	if err != nil || used {
		return err
	}
	return tx.Unscoped().Delete(&models.Price{}, priceID).Error
}

// DeleteCategoryIfOrphaned removes the category row when nothing references it.
func (r *CatalogRepository) DeleteCategoryIfOrphaned(tx *gorm.DB, categoryID uint) error {
	used, err := r.CategoryReferenced(tx, categoryID)
	if err != nil || used {
		return err
	}
	return tx.Unscoped().Delete(&models.Category{}, categoryID).Error
}

// ── Products ─────────────────────────────────────────────────────────────────

// FindProduct loads a product with its price by primary key.
func (r *CatalogRepository) FindProduct(tx *gorm.DB, id uint) (models.Product, error) {
	var product models.Product
	err := tx.Preload("Price").First(&product, id).Error
	return product, err
}

// CreateProduct persists a new product row.
func (r *CatalogRepository) CreateProduct(tx *gorm.DB, product *models.Product) error {
	return tx.Create(product).Error
}

// UpdateProductFields applies a partial column update to a product.
func (r *CatalogRepository) UpdateProductFields(tx *gorm.DB, id uint, fields map[string]interface{}) error {
	return tx.Model(&models.Product{}).Where("id = ?", id).Updates(fields).Error
}

// DeleteProduct removes the product row.
func (r *CatalogRepository) DeleteProduct(tx *gorm.DB, id uint) error {
	return tx.Unscoped().Delete(&models.Product{}, id).Error
}

// ── Category links ───────────────────────────────────────────────────────────

// CategoryIDs returns the ids of every category linked to the product.
func (r *CatalogRepository) CategoryIDs(tx *gorm.DB, productID uint) ([]uint, error) {
	var ids []uint
	err := tx.Model(&models.ProductCategory{}).
		Where("product_id = ?", productID).
		Pluck("category_id", &ids).Error
	return ids, err
}

// LinkCategory inserts a product–category association.
func (r *CatalogRepository) LinkCategory(tx *gorm.DB, productID, categoryID uint) error {
	return tx.Create(&models.ProductCategory{ProductID: productID, CategoryID: categoryID}).Error
}

// UnlinkCategories removes every association the product holds.
func (r *CatalogRepository) UnlinkCategories(tx *gorm.DB, productID uint) error {
	return tx.Where("product_id = ?", productID).Delete(&models.ProductCategory{}).Error
}

// ── Read surface ─────────────────────────────────────────────────────────────

// ProductView is the flattened shape the catalog read endpoints return.
type ProductView struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Thumbnail   string  `json:"thumbnail"`
	Category    string  `json:"category"`
}

const productViewSelect = `
SELECT p.id, p.name, p.description, pr.amount AS price, p.stock, p.thumbnail, c.name AS category
FROM products p
JOIN prices pr ON pr.id = p.price_id
JOIN product_categories pc ON pc.product_id = p.id
JOIN categories c ON c.id = pc.category_id`

// ListProducts returns up to limit products (0 = no limit).
func (r *CatalogRepository) ListProducts(tx *gorm.DB, limit int) ([]ProductView, error) {
	sql := productViewSelect + " ORDER BY p.id"
	q := tx.Raw(sql)
	if limit > 0 {
		q = tx.Raw(sql+" LIMIT ?", limit)
	}

	var out []ProductView
	err := q.Scan(&out).Error
	return out, err
}

// SearchProducts returns products whose name contains q.
func (r *CatalogRepository) SearchProducts(tx *gorm.DB, q string) ([]ProductView, error) {
	var out []ProductView
	err := tx.Raw(productViewSelect+" WHERE p.name LIKE ? ORDER BY p.id", "%"+q+"%").
		Scan(&out).Error
	return out, err
}

// ProductsByCategory returns products linked to the named category.
func (r *CatalogRepository) ProductsByCategory(tx *gorm.DB, category string) ([]ProductView, error) {
	var out []ProductView
	err := tx.Raw(productViewSelect+" WHERE c.name = ? ORDER BY p.id", category).
		Scan(&out).Error
	return out, err
}

// GetProductView returns the flattened view of one product.
func (r *CatalogRepository) GetProductView(tx *gorm.DB, id uint) (ProductView, error) {
	var out []ProductView
	err := tx.Raw(productViewSelect+" WHERE p.id = ?", id).Scan(&out).Error
	if err != nil {
		return ProductView{}, err
	}
	if len(out) == 0 {
		return ProductView{}, gorm.ErrRecordNotFound
	}
	return out[0], nil
}

package services

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"path"
	"strings"
	"time"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/app/repositories"
	"github.com/shashiranjanraj/vyapar/pkg/apperr"
	"github.com/shashiranjanraj/vyapar/pkg/auth"
	"github.com/shashiranjanraj/vyapar/pkg/cache"
	"github.com/shashiranjanraj/vyapar/pkg/logger"
	"github.com/shashiranjanraj/vyapar/pkg/storage"
	"gorm.io/gorm"
)

// Thumbnail upload policy.
const (
	MaxThumbnailBytes = 2 << 20 // 2 MB
	productCacheKey   = "catalog:products"
	productCacheTTL   = 5 * time.Minute
)

var allowedThumbnailExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
}

// CatalogService owns the product lifecycle and the shared Price/Category
// reference data it leans on. Mutations that touch more than one row run in
// a single transaction; dedup-or-create and orphan GC go through
// CatalogRepository so every path shares the same reference check.
type CatalogService struct {
	db      *gorm.DB
	catalog *repositories.CatalogRepository
	orders  *repositories.OrderRepository
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{
		db:      db,
		catalog: repositories.NewCatalogRepository(),
		orders:  repositories.NewOrderRepository(),
	}
}

// Thumbnail is an uploaded product image.
type Thumbnail struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// UploadProductInput is the request shape for Upload.
type UploadProductInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description" validate:"nullable,max=2000"`
	Category    string  `json:"category" validate:"required,max=255"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

// Upload stores the thumbnail, then creates the product with its resolved
// price and category links in one transaction. A failed transaction removes
// the stored file again. Admin only.
func (s *CatalogService) Upload(principal auth.Principal, in UploadProductInput, file Thumbnail) (uint, error) {
	if !principal.IsAdmin() {
		return 0, apperr.Unauthorized("admin role required")
	}

	thumbPath, err := storeThumbnail(file)
	if err != nil {
		return 0, err
	}

	var productID uint
	err = s.db.Transaction(func(tx *gorm.DB) error {
		priceID, err := s.catalog.ResolvePrice(tx, in.Price)
		if err != nil {
			return apperr.Persistencef(err, "resolve price %v", in.Price)
		}

		product := models.Product{
			Name:        in.Name,
			Description: in.Description,
			Stock:       in.Stock,
			Thumbnail:   thumbPath,
			PriceID:     priceID,
		}
		if err := s.catalog.CreateProduct(tx, &product); err != nil {
			return apperr.Persistencef(err, "insert product")
		}

		categoryID, err := s.catalog.ResolveCategory(tx, in.Category)
		if err != nil {
			return apperr.Persistencef(err, "resolve category %q", in.Category)
		}
		if err := s.catalog.LinkCategory(tx, product.ID, categoryID); err != nil {
			return apperr.Persistencef(err, "link category %d", categoryID)
		}

		productID = product.ID
		return nil
	})
	if err != nil {
		// The row writes rolled back; take the file with them.
		if delErr := storage.Delete(thumbPath); delErr != nil {
			logger.Warn("orphaned thumbnail left behind", "path", thumbPath, "error", delErr)
		}
		return 0, err
	}

	s.invalidateCache()
	logger.Info("product uploaded", "product_id", productID, "name", in.Name)
	return productID, nil
}

// storeThumbnail polices the upload and writes it to the storage disk under
// a collision-free name. Mirrors the limits enforced at the HTTP edge.
func storeThumbnail(file Thumbnail) (string, error) {
	ext := strings.ToLower(path.Ext(file.Filename))
	if !allowedThumbnailExts[ext] {
		return "", apperr.Validationf("thumbnail", "file must be in .jpg, .jpeg, .png or .webp format")
	}
	if file.Size > MaxThumbnailBytes {
		return "", apperr.Validationf("thumbnail", "file exceeds %d bytes", MaxThumbnailBytes)
	}
	if file.Content == nil {
		return "", apperr.Validationf("thumbnail", "no file uploaded")
	}

	name := fmt.Sprintf("thumbnails/thumbnail-%d-%d%s", time.Now().UnixMilli(), rand.Intn(1_000_000_000), ext)
	if err := storage.PutStream(name, io.LimitReader(file.Content, MaxThumbnailBytes)); err != nil {
		return "", apperr.Persistencef(err, "store thumbnail")
	}
	return name, nil
}

// UpdateProductInput is the request shape for Update. Nil pointers mean the
// field was absent from the request and stays untouched; Price is always
// present and always re-resolved.
type UpdateProductInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Stock       *int    `json:"stock"`
	Category    *string `json:"category"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// changedFields computes the minimal changed-field set between the existing
// product and the requested fields: a key is included only when it is
// present in the request and its value differs.
func changedFields(existing models.Product, in UpdateProductInput) map[string]interface{} {
	changed := make(map[string]interface{})

	if in.Name != nil && *in.Name != existing.Name {
		changed["name"] = *in.Name
	}
	if in.Description != nil && *in.Description != existing.Description {
		changed["description"] = *in.Description
	}
	if in.Stock != nil && *in.Stock != existing.Stock {
		changed["stock"] = *in.Stock
	}

	return changed
}

// Update applies a partial product diff. A category change relinks the join
// rows and collects the orphaned old category; the price value is always
// resolved and set; an empty diff with an unchanged price skips the write
// entirely. Admin only.
func (s *CatalogService) Update(principal auth.Principal, productID uint, in UpdateProductInput) error {
	if !principal.IsAdmin() {
		return apperr.Unauthorized("admin role required")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return apperr.Validationf("stock", "must not be negative")
	}
	if in.Price < 0 {
		return apperr.Validationf("price", "must not be negative")
	}
	if in.Category != nil && strings.TrimSpace(*in.Category) == "" {
		return apperr.Validationf("category", "must not be empty")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		product, err := s.catalog.FindProduct(tx, productID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("product %d not found", productID)
		}
		if err != nil {
			return apperr.Persistencef(err, "load product %d", productID)
		}

		if in.Category != nil {
			oldCategoryIDs, err := s.catalog.CategoryIDs(tx, productID)
			if err != nil {
				return apperr.Persistencef(err, "load category links for product %d", productID)
			}

			if err := s.catalog.UnlinkCategories(tx, productID); err != nil {
				return apperr.Persistencef(err, "unlink categories for product %d", productID)
			}

			categoryID, err := s.catalog.ResolveCategory(tx, *in.Category)
			if err != nil {
				return apperr.Persistencef(err, "resolve category %q", *in.Category)
			}
			if err := s.catalog.LinkCategory(tx, productID, categoryID); err != nil {
				return apperr.Persistencef(err, "link category %d", categoryID)
			}

			for _, oldID := range oldCategoryIDs {
				if oldID == categoryID {
					continue
				}
				if err := s.catalog.DeleteCategoryIfOrphaned(tx, oldID); err != nil {
					return apperr.Persistencef(err, "collect orphaned category %d", oldID)
				}
			}
		}

		priceID, err := s.catalog.ResolvePrice(tx, in.Price)
		if err != nil {
			return apperr.Persistencef(err, "resolve price %v", in.Price)
		}

		changed := changedFields(product, in)
		oldPriceID := product.PriceID
		if priceID != oldPriceID {
			changed["price_id"] = priceID
		}

		if len(changed) == 0 {
			return nil // nothing actually differs; skip the write
		}

		if err := s.catalog.UpdateProductFields(tx, productID, changed); err != nil {
			return apperr.Persistencef(err, "update product %d", productID)
		}

		if priceID != oldPriceID {
			if err := s.catalog.DeletePriceIfOrphaned(tx, oldPriceID); err != nil {
				return apperr.Persistencef(err, "collect orphaned price %d", oldPriceID)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateCache()
	return nil
}

// Delete removes a product and everything only it was holding alive: its
// order-item references, its category links, and — when no other product or
// order item still needs them — the shared category and price rows. The
// category and price orphan checks are independent and both always run.
// Admin only.
func (s *CatalogService) Delete(principal auth.Principal, productID uint) error {
	if !principal.IsAdmin() {
		return apperr.Unauthorized("admin role required")
	}

	var thumbnail string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		product, err := s.catalog.FindProduct(tx, productID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("product %d not found", productID)
		}
		if err != nil {
			return apperr.Persistencef(err, "load product %d", productID)
		}
		thumbnail = product.Thumbnail

		deletedItems, err := s.orders.DeleteItemsForProduct(tx, productID)
		if err != nil {
			return apperr.Persistencef(err, "delete order items for product %d", productID)
		}

		// Orders emptied by the item sweep are removed, same as when their
		// last item is deleted directly. Orders with other lines survive
		// and keep their historical total.
		checkedOrders := make(map[uint]bool, len(deletedItems))
		for _, item := range deletedItems {
			if checkedOrders[item.OrderID] {
				continue
			}
			checkedOrders[item.OrderID] = true

			remaining, err := s.orders.CountItems(tx, item.OrderID)
			if err != nil {
				return apperr.Persistencef(err, "count items for order %d", item.OrderID)
			}
			if remaining == 0 {
				if err := s.orders.DeleteOrder(tx, item.OrderID); err != nil {
					return apperr.Persistencef(err, "delete emptied order %d", item.OrderID)
				}
			}
		}

		categoryIDs, err := s.catalog.CategoryIDs(tx, productID)
		if err != nil {
			return apperr.Persistencef(err, "load category links for product %d", productID)
		}
		if err := s.catalog.UnlinkCategories(tx, productID); err != nil {
			return apperr.Persistencef(err, "unlink categories for product %d", productID)
		}

		if err := s.catalog.DeleteProduct(tx, productID); err != nil {
			return apperr.Persistencef(err, "delete product %d", productID)
		}

		for _, categoryID := range categoryIDs {
			if err := s.catalog.DeleteCategoryIfOrphaned(tx, categoryID); err != nil {
				return apperr.Persistencef(err, "collect orphaned category %d", categoryID)
			}
		}

		priceIDs := map[uint]bool{product.PriceID: true}
		for _, item := range deletedItems {
			priceIDs[item.PriceID] = true
		}
		for priceID := range priceIDs {
			if err := s.catalog.DeletePriceIfOrphaned(tx, priceID); err != nil {
				return apperr.Persistencef(err, "collect orphaned price %d", priceID)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	if thumbnail != "" {
		if err := storage.Delete(thumbnail); err != nil {
			logger.Warn("stale thumbnail left behind", "path", thumbnail, "error", err)
		}
	}
	s.invalidateCache()
	logger.Info("product deleted", "product_id", productID)
	return nil
}

// ── Read surface ─────────────────────────────────────────────────────────────

// List returns up to limit products (0 = all), cache-aside through Redis.
func (s *CatalogService) List(limit int) ([]repositories.ProductView, error) {
	if limit == 0 {
		var cached []repositories.ProductView
		if cache.Get(productCacheKey, &cached) {
			return cached, nil
		}
	}

	products, err := s.catalog.ListProducts(s.db, limit)
	if err != nil {
		return nil, apperr.Persistencef(err, "list products")
	}

	if limit == 0 {
		_ = cache.Set(productCacheKey, products, productCacheTTL)
	}
	return products, nil
}

// Get returns one product's flattened view.
func (s *CatalogService) Get(productID uint) (repositories.ProductView, error) {
	view, err := s.catalog.GetProductView(s.db, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ProductView{}, apperr.NotFoundf("product %d not found", productID)
	}
	if err != nil {
		return repositories.ProductView{}, apperr.Persistencef(err, "load product %d", productID)
	}
	return view, nil
}

// Search returns products whose name contains q.
func (s *CatalogService) Search(q string) ([]repositories.ProductView, error) {
	if strings.TrimSpace(q) == "" {
		return nil, apperr.Validationf("q", "is required")
	}

	products, err := s.catalog.SearchProducts(s.db, q)
	if err != nil {
		return nil, apperr.Persistencef(err, "search products")
	}
	return products, nil
}

// ByCategory returns products linked to the named category.
func (s *CatalogService) ByCategory(category string) ([]repositories.ProductView, error) {
	products, err := s.catalog.ProductsByCategory(s.db, category)
	if err != nil {
		return nil, apperr.Persistencef(err, "list products by category")
	}
	return products, nil
}

func (s *CatalogService) invalidateCache() {
	_ = cache.Del(productCacheKey)
}

package repositories

import (
	"time"

	"github.com/shashiranjanraj/vyapar/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository handles database operations for orders and order items.
// Like CatalogRepository, every method runs on the handle it is given so a
// service transaction spans all of them.
type OrderRepository struct{}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

// ProductForUpdate loads a product row with its price under a row lock, so
// the stock check and the later decrement act on a value no concurrent
// order can also be checking. sqlite has no FOR UPDATE; its single writer
// serializes the check-and-decrement anyway.
func (r *OrderRepository) ProductForUpdate(tx *gorm.DB, id uint) (models.Product, error) {
	q := tx
	if tx.Dialector.Name() != "sqlite" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var product models.Product
	err := q.Preload("Price").First(&product, id).Error
	return product, err
}

// DecrementStock subtracts quantity from the product's stock. Callers must
// hold the row lock from ProductForUpdate and have verified the bound.
func (r *OrderRepository) DecrementStock(tx *gorm.DB, productID uint, quantity int) error {
	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock - ?", quantity)).Error
}

// IncrementStock restores quantity units to the product's stock.
func (r *OrderRepository) IncrementStock(tx *gorm.DB, productID uint, quantity int) error {
	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", quantity)).Error
}

// CreateOrder inserts the order row and its items in one go.
func (r *OrderRepository) CreateOrder(tx *gorm.DB, order *models.Order) error {
	return tx.Create(order).Error
}

// FindOrder loads an order by primary key.
func (r *OrderRepository) FindOrder(tx *gorm.DB, id uint) (models.Order, error) {
	var order models.Order
	err := tx.First(&order, id).Error
	return order, err
}

// FindItem loads an order item by primary key.
func (r *OrderRepository) FindItem(tx *gorm.DB, id uint) (models.OrderItem, error) {
	var item models.OrderItem
	err := tx.First(&item, id).Error
	return item, err
}

// ItemsForOrder returns every item belonging to the order.
func (r *OrderRepository) ItemsForOrder(tx *gorm.DB, orderID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := tx.Where("order_id = ?", orderID).Find(&items).Error
	return items, err
}

// CountItems returns how many items remain on the order.
func (r *OrderRepository) CountItems(tx *gorm.DB, orderID uint) (int64, error) {
	var count int64
	err := tx.Model(&models.OrderItem{}).Where("order_id = ?", orderID).Count(&count).Error
	return count, err
}

// DeleteItem removes one order item row.
func (r *OrderRepository) DeleteItem(tx *gorm.DB, id uint) error {
	return tx.Unscoped().Delete(&models.OrderItem{}, id).Error
}

// DeleteItemsForProduct removes every order item referencing the product and
// returns the removed rows so callers can compensate stock or GC prices.
func (r *OrderRepository) DeleteItemsForProduct(tx *gorm.DB, productID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	if err := tx.Where("product_id = ?", productID).Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	err := tx.Unscoped().Where("product_id = ?", productID).Delete(&models.OrderItem{}).Error
	return items, err
}

// DeleteOrder removes the order row.
func (r *OrderRepository) DeleteOrder(tx *gorm.DB, id uint) error {
	return tx.Unscoped().Delete(&models.Order{}, id).Error
}

// UpdateStatus sets the order's status column.
func (r *OrderRepository) UpdateStatus(tx *gorm.DB, id uint, status string) error {
	return tx.Model(&models.Order{}).Where("id = ?", id).Update("status", status).Error
}

// ── Aggregation ──────────────────────────────────────────────────────────────

// OrderRow is one flat row of the order aggregation join. The service folds
// these by order id.
type OrderRow struct {
	OrderID            uint      `json:"order_id"`
	TotalAmount        float64   `json:"total_amount"`
	Address            string    `json:"address"`
	OrderDate          time.Time `json:"order_date"`
	Status             string    `json:"status"`
	Customer           string    `json:"customer"`
	Quantity           int       `json:"quantity"`
	Price              float64   `json:"price"`
	ProductName        string    `json:"product_name"`
	ProductDescription string    `json:"product_description"`
}

const orderRowSelect = `
SELECT o.id AS order_id, o.total_amount, o.address, o.created_at AS order_date, o.status,
       a.email AS customer, oi.quantity, pr.amount AS price,
       p.name AS product_name, p.description AS product_description
FROM orders o
JOIN order_items oi ON oi.order_id = o.id
JOIN products p ON p.id = oi.product_id
JOIN prices pr ON pr.id = oi.price_id
JOIN accounts a ON a.id = o.account_id`

const orderRowOrder = ` ORDER BY o.created_at DESC, o.id DESC, oi.id ASC`

// RowsForAccount returns the aggregation rows for one customer's orders,
// newest order first.
func (r *OrderRepository) RowsForAccount(tx *gorm.DB, accountID uint) ([]OrderRow, error) {
	var rows []OrderRow
	err := tx.Raw(orderRowSelect+" WHERE o.account_id = ?"+orderRowOrder, accountID).
		Scan(&rows).Error
	return rows, err
}

// RowsForAll returns the aggregation rows across every account.
func (r *OrderRepository) RowsForAll(tx *gorm.DB) ([]OrderRow, error) {
	var rows []OrderRow
	err := tx.Raw(orderRowSelect + orderRowOrder).Scan(&rows).Error
	return rows, err
}

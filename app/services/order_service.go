package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/app/repositories"
	"github.com/shashiranjanraj/vyapar/pkg/apperr"
	"github.com/shashiranjanraj/vyapar/pkg/auth"
	"github.com/shashiranjanraj/vyapar/pkg/logger"
	"github.com/shashiranjanraj/vyapar/pkg/metrics"
	"gorm.io/gorm"
)

// OrderService owns every mutation that spans order, item, and stock rows.
// Each operation runs inside a single transaction: any validation, conflict,
// or store error rolls the whole thing back, so a concurrent reader never
// observes a partial order or an intermediate stock value.
type OrderService struct {
	db      *gorm.DB
	orders  *repositories.OrderRepository
	catalog *repositories.CatalogRepository
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{
		db:      db,
		orders:  repositories.NewOrderRepository(),
		catalog: repositories.NewCatalogRepository(),
	}
}

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderInput is the request shape for Create.
type CreateOrderInput struct {
	Address string           `json:"address" validate:"required"`
	Items   []OrderItemInput `json:"items"`
}

// Create places an order for the principal. Items are processed in request
// order; the first failing item aborts the whole transaction. On success the
// order row, its items (with price snapshots), and the stock decrements all
// commit together and the new order id is returned.
func (s *OrderService) Create(principal auth.Principal, in CreateOrderInput) (uint, error) {
	if len(in.Items) == 0 {
		metrics.OrdersRejected.WithLabelValues("validation").Inc()
		return 0, apperr.Validationf("items", "must contain at least one item")
	}
	for i, item := range in.Items {
		if item.Quantity <= 0 {
			metrics.OrdersRejected.WithLabelValues("validation").Inc()
			return 0, apperr.Validationf(fmt.Sprintf("items[%d].quantity", i), "must be positive")
		}
	}

	var orderID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var total float64
		items := make([]models.OrderItem, 0, len(in.Items))
		// A product may appear on several lines; the bound check has to
		// hold for the lines' combined quantity, not each line alone.
		requested := make(map[uint]int, len(in.Items))

		for _, req := range in.Items {
			product, err := s.orders.ProductForUpdate(tx, req.ProductID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("product %d not found", req.ProductID)
			}
			if err != nil {
				return apperr.Persistencef(err, "load product %d", req.ProductID)
			}

			if product.Stock == 0 {
				return apperr.Conflictf("quantity", "product %d is out of stock", product.ID)
			}
			requested[product.ID] += req.Quantity
			if requested[product.ID] > product.Stock {
				return apperr.Conflictf("quantity",
					"quantity %d exceeds available stock %d for product %d",
					requested[product.ID], product.Stock, product.ID)
			}

			total += product.Price.Amount * float64(req.Quantity)
			items = append(items, models.OrderItem{
				ProductID: product.ID,
				PriceID:   product.PriceID,
				Quantity:  req.Quantity,
			})
		}

		order := models.Order{
			AccountID:   principal.ID,
			TotalAmount: total,
			Address:     in.Address,
			Status:      models.StatusPending,
			Items:       items,
		}
		if err := s.orders.CreateOrder(tx, &order); err != nil {
			return apperr.Persistencef(err, "insert order")
		}

		for _, req := range in.Items {
			if err := s.orders.DecrementStock(tx, req.ProductID, req.Quantity); err != nil {
				return apperr.Persistencef(err, "decrement stock for product %d", req.ProductID)
			}
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		if kind, ok := apperr.KindOf(err); ok {
			metrics.OrdersRejected.WithLabelValues(kind.String()).Inc()
		}
		return 0, err
	}

	metrics.OrdersCreated.Inc()
	logger.Info("order created", "order_id", orderID, "account_id", principal.ID, "items", len(in.Items))
	return orderID, nil
}

// DeleteItem removes one order item, restores the product's stock by the
// item's quantity, drops the parent order if it is now empty, and garbage
// collects the price snapshot if nothing references it anymore. Admin only.
func (s *OrderService) DeleteItem(principal auth.Principal, itemID uint) error {
	if !principal.IsAdmin() {
		return apperr.Unauthorized("admin role required")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.orders.FindItem(tx, itemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("order item %d not found", itemID)
		}
		if err != nil {
			return apperr.Persistencef(err, "load order item %d", itemID)
		}

		if err := s.orders.DeleteItem(tx, item.ID); err != nil {
			return apperr.Persistencef(err, "delete order item %d", itemID)
		}

		remaining, err := s.orders.CountItems(tx, item.OrderID)
		if err != nil {
			return apperr.Persistencef(err, "count items for order %d", item.OrderID)
		}
		if remaining == 0 {
			if err := s.orders.DeleteOrder(tx, item.OrderID); err != nil {
				return apperr.Persistencef(err, "delete emptied order %d", item.OrderID)
			}
		}

		if err := s.orders.IncrementStock(tx, item.ProductID, item.Quantity); err != nil {
			return apperr.Persistencef(err, "restore stock for product %d", item.ProductID)
		}
		metrics.StockRestored.Add(float64(item.Quantity))

		if err := s.catalog.DeletePriceIfOrphaned(tx, item.PriceID); err != nil {
			return apperr.Persistencef(err, "collect orphaned price %d", item.PriceID)
		}

		return nil
	})
}

// Delete removes a whole order: every item's stock is restored, the items
// and the order row go together, and orphaned price snapshots are collected.
// Admin only.
func (s *OrderService) Delete(principal auth.Principal, orderID uint) error {
	if !principal.IsAdmin() {
		return apperr.Unauthorized("admin role required")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.orders.FindOrder(tx, orderID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("order %d not found", orderID)
			}
			return apperr.Persistencef(err, "load order %d", orderID)
		}

		items, err := s.orders.ItemsForOrder(tx, orderID)
		if err != nil {
			return apperr.Persistencef(err, "load items for order %d", orderID)
		}

		for _, item := range items {
			if err := s.orders.IncrementStock(tx, item.ProductID, item.Quantity); err != nil {
				return apperr.Persistencef(err, "restore stock for product %d", item.ProductID)
			}
			metrics.StockRestored.Add(float64(item.Quantity))

			if err := s.orders.DeleteItem(tx, item.ID); err != nil {
				return apperr.Persistencef(err, "delete order item %d", item.ID)
			}
		}

		if err := s.orders.DeleteOrder(tx, orderID); err != nil {
			return apperr.Persistencef(err, "delete order %d", orderID)
		}

		// Distinct price snapshots may now be orphaned.
		seen := make(map[uint]bool, len(items))
		for _, item := range items {
			if seen[item.PriceID] {
				continue
			}
			seen[item.PriceID] = true
			if err := s.catalog.DeletePriceIfOrphaned(tx, item.PriceID); err != nil {
				return apperr.Persistencef(err, "collect orphaned price %d", item.PriceID)
			}
		}

		return nil
	})
}

// UpdateStatus moves an order to a new workflow state. The identity
// transition is rejected; any other enumerated value may follow any other.
// Admin only.
func (s *OrderService) UpdateStatus(principal auth.Principal, orderID uint, status string) error {
	if !principal.IsAdmin() {
		return apperr.Unauthorized("admin role required")
	}
	if !models.ValidStatus(status) {
		return apperr.Validationf("status", "unknown status %q", status)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.orders.FindOrder(tx, orderID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("order %d not found", orderID)
		}
		if err != nil {
			return apperr.Persistencef(err, "load order %d", orderID)
		}

		if order.Status == status {
			return apperr.Conflictf("status", "order is already %s", status)
		}

		if err := s.orders.UpdateStatus(tx, orderID, status); err != nil {
			return apperr.Persistencef(err, "update status for order %d", orderID)
		}
		return nil
	})
}

// ── Aggregation ──────────────────────────────────────────────────────────────

// AggregateItem is one line of an aggregated order.
type AggregateItem struct {
	Quantity           int     `json:"quantity"`
	Price              float64 `json:"price"`
	ProductName        string  `json:"product_name"`
	ProductDescription string  `json:"product_description"`
}

// OrderAggregate is one order with its scalar fields carried once and its
// item lines appended.
type OrderAggregate struct {
	ID          uint            `json:"id"`
	TotalAmount float64         `json:"total_amount"`
	Address     string          `json:"address"`
	OrderDate   time.Time       `json:"order_date"`
	Status      string          `json:"status"`
	Customer    string          `json:"customer,omitempty"`
	Items       []AggregateItem `json:"items"`
}

// List returns the principal's own orders, newest first.
func (s *OrderService) List(principal auth.Principal) ([]OrderAggregate, error) {
	rows, err := s.orders.RowsForAccount(s.db, principal.ID)
	if err != nil {
		return nil, apperr.Persistencef(err, "list orders for account %d", principal.ID)
	}
	return foldOrderRows(rows, false), nil
}

// ListAll returns every order across accounts, newest first. Admin only.
func (s *OrderService) ListAll(principal auth.Principal) ([]OrderAggregate, error) {
	if !principal.IsAdmin() {
		return nil, apperr.Unauthorized("admin role required")
	}

	rows, err := s.orders.RowsForAll(s.db)
	if err != nil {
		return nil, apperr.Persistencef(err, "list all orders")
	}
	return foldOrderRows(rows, true), nil
}

// foldOrderRows groups flat join rows into one aggregate per order id.
// First-seen order of ids is preserved, which follows the query's ORDER BY
// on creation time.
func foldOrderRows(rows []repositories.OrderRow, withCustomer bool) []OrderAggregate {
	aggregates := make([]OrderAggregate, 0)
	index := make(map[uint]int, len(rows))

	for _, row := range rows {
		i, ok := index[row.OrderID]
		if !ok {
			agg := OrderAggregate{
				ID:          row.OrderID,
				TotalAmount: row.TotalAmount,
				Address:     row.Address,
				OrderDate:   row.OrderDate,
				Status:      row.Status,
			}
			if withCustomer {
				agg.Customer = row.Customer
			}
			aggregates = append(aggregates, agg)
			i = len(aggregates) - 1
			index[row.OrderID] = i
		}

		aggregates[i].Items = append(aggregates[i].Items, AggregateItem{
			Quantity:           row.Quantity,
			Price:              row.Price,
			ProductName:        row.ProductName,
			ProductDescription: row.ProductDescription,
		})
	}

	return aggregates
}

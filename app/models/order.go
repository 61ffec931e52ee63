package models

import "gorm.io/gorm"

// Order statuses. Any status may follow any other except itself; cancelled
// is terminal only by convention.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// ValidStatus reports whether s is one of the enumerated order statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Order is a customer purchase. TotalAmount equals the sum of
// quantity × snapshot price over its items at creation time; later price
// changes never alter it.
type Order struct {
	gorm.Model
	AccountID   uint        `gorm:"not null;index" json:"account_id"`
	TotalAmount float64     `gorm:"not null"       json:"total_amount"`
	Address     string      `gorm:"size:500"       json:"address"`
	Status      string      `gorm:"size:50;not null;default:pending" json:"status"`
	Items       []OrderItem `json:"items"`
}

// OrderItem is one line of an order. PriceID references the price row in
// effect at purchase time, so order history pins prices.
type OrderItem struct {
	gorm.Model
	OrderID   uint  `gorm:"not null;index" json:"order_id"`
	ProductID uint  `gorm:"not null;index" json:"product_id"`
	PriceID   uint  `gorm:"not null;index" json:"-"`
	Quantity  int   `gorm:"not null"       json:"quantity"`
	Price     Price `json:"price"`
}

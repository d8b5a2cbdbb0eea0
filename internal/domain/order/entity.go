// internal/domain/order/entity.go
package order

import (
	"time"
)

// Order represents a finalized purchase. Either UserID or GuestEmail is
// set, mirroring the cart identity the order was placed from. Item rows
// snapshot the catalog at purchase time; later price or name changes
// never rewrite an order.
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderNumber string      `gorm:"uniqueIndex;not null;size:32" json:"order_number"`
	UserID      *uint       `gorm:"index" json:"user_id,omitempty"`
	GuestEmail  string      `gorm:"size:255" json:"guest_email,omitempty"`
	Items       []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	TotalPrice  int64       `gorm:"not null" json:"total_price"`
	IsPaid      bool        `gorm:"default:false" json:"is_paid"`
	PaidAt      *time.Time  `json:"paid_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// TableName overrides the table name
func (Order) TableName() string {
	return "orders"
}

// OrderItem is a point-in-time snapshot of one purchased line.
type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	ProductID uint      `gorm:"not null" json:"product_id"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	ImageURL  string    `gorm:"size:500" json:"image_url"`
	Size      string    `gorm:"not null;size:10" json:"size"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	UnitPrice int64     `gorm:"not null" json:"unit_price"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the table name
func (OrderItem) TableName() string {
	return "order_items"
}

// LineTotal returns the snapshot price for the full line quantity.
func (i OrderItem) LineTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

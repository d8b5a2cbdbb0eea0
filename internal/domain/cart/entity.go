// internal/domain/cart/entity.go
package cart

import (
	"time"
)

// Cart is the persistent cart record. A reachable cart is addressed by
// exactly one identity channel: UserID for account carts, GuestToken for
// guest carts. Carts are hard-deleted (no soft delete) so the unique
// owner indexes stay free for the next cart.
type Cart struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     *uint      `gorm:"uniqueIndex" json:"user_id,omitempty"`
	GuestToken *string    `gorm:"uniqueIndex;size:64" json:"guest_token,omitempty"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName overrides the table name
func (Cart) TableName() string {
	return "carts"
}

// CartItem is a line item within a cart. Line identity is the pair
// (ProductID, Size); the composite unique index enforces that a cart
// never holds two lines for the same pair.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"not null;index;uniqueIndex:idx_cart_line" json:"cart_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_line" json:"product_id"`
	Size      string    `gorm:"not null;size:10;uniqueIndex:idx_cart_line" json:"size"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// internal/domain/product/entity.go
package product

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Product categories carried by the catalog.
const (
	CategoryMen   = "Men"
	CategoryWomen = "Women"
	CategoryKids  = "Kids"
)

// Product represents a catalog product. Price is stored in cents.
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       int64          `gorm:"not null" json:"price"`
	ImageURL    string         `gorm:"not null;size:500" json:"image_url"`
	Category    string         `gorm:"not null;size:50;index" json:"category"`
	Sizes       string         `gorm:"size:100" json:"sizes"` // Comma-separated, e.g. "S,M,L,XL"
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Product) TableName() string {
	return "products"
}

// SizeList returns the offered sizes as a slice.
func (p *Product) SizeList() []string {
	if p.Sizes == "" {
		return nil
	}

	parts := strings.Split(p.Sizes, ",")
	sizes := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			sizes = append(sizes, trimmed)
		}
	}
	return sizes
}

// HasSize reports whether the product is offered in the given size.
func (p *Product) HasSize(size string) bool {
	for _, s := range p.SizeList() {
		if s == size {
			return true
		}
	}
	return false
}

// GetFormattedPrice returns the price as dollars.
func (p *Product) GetFormattedPrice() float64 {
	return float64(p.Price) / 100
}

// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Anand95733/clothify-backend/internal/domain/cart"
	"github.com/Anand95733/clothify-backend/internal/domain/order"
	"github.com/Anand95733/clothify-backend/internal/domain/product"
	"github.com/Anand95733/clothify-backend/internal/domain/user"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		&user.User{},
		&product.Product{},
		&cart.Cart{},
		&cart.CartItem{},
		&order.Order{},
		&order.OrderItem{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_category_price ON products(category, price)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
	}

	for _, index := range indexes {
		if err := m.db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// SeedInitialData seeds an admin account and a starter catalog for
// development environments.
func (m *Migration) SeedInitialData() error {
	if err := m.seedAdminUser(); err != nil {
		return err
	}
	return m.seedProducts()
}

func (m *Migration) seedAdminUser() error {
	var count int64
	m.db.Model(&user.User{}).Where("is_admin = ?", true).Count(&count)
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := user.User{
		Email:        "admin@clothify.local",
		PasswordHash: string(hash),
		FirstName:    "Admin",
		IsAdmin:      true,
		IsActive:     true,
	}
	if err := m.db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	log.Println("Seeded admin user: admin@clothify.local")
	return nil
}

func (m *Migration) seedProducts() error {
	var count int64
	m.db.Model(&product.Product{}).Count(&count)
	if count > 0 {
		return nil
	}

	products := []product.Product{
		{Name: "Classic Cotton T-Shirt", Description: "Everyday crew-neck tee in soft combed cotton", Price: 1999, Category: product.CategoryMen, Sizes: "S,M,L,XL,XXL", ImageURL: "/images/mens-classic-tee.jpg"},
		{Name: "Slim Fit Denim Jeans", Description: "Stretch denim with a tapered leg", Price: 5499, Category: product.CategoryMen, Sizes: "S,M,L,XL", ImageURL: "/images/mens-slim-jeans.jpg"},
		{Name: "Hooded Sweatshirt", Description: "Fleece-lined pullover hoodie", Price: 3999, Category: product.CategoryMen, Sizes: "M,L,XL,XXL", ImageURL: "/images/mens-hoodie.jpg"},
		{Name: "Floral Summer Dress", Description: "Lightweight midi dress with floral print", Price: 4599, Category: product.CategoryWomen, Sizes: "XS,S,M,L", ImageURL: "/images/womens-floral-dress.jpg"},
		{Name: "High-Waist Leggings", Description: "Four-way stretch leggings for training or lounging", Price: 2999, Category: product.CategoryWomen, Sizes: "XS,S,M,L,XL", ImageURL: "/images/womens-leggings.jpg"},
		{Name: "Knit Cardigan", Description: "Open-front cardigan in chunky knit", Price: 5299, Category: product.CategoryWomen, Sizes: "S,M,L", ImageURL: "/images/womens-cardigan.jpg"},
		{Name: "Dino Print Pajama Set", Description: "Two-piece cotton pajamas", Price: 2499, Category: product.CategoryKids, Sizes: "XS,S,M", ImageURL: "/images/kids-dino-pajamas.jpg"},
		{Name: "Rainbow Stripe Hoodie", Description: "Zip-up hoodie with rainbow stripes", Price: 2899, Category: product.CategoryKids, Sizes: "XS,S,M,L", ImageURL: "/images/kids-rainbow-hoodie.jpg"},
	}

	if err := m.db.Create(&products).Error; err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	log.Printf("Seeded %d products", len(products))
	return nil
}

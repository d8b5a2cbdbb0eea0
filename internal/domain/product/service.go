// internal/domain/product/service.go
package product

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Anand95733/clothify-backend/internal/config"
	"github.com/Anand95733/clothify-backend/internal/pkg/apperror"
)

const (
	productCacheKeyFormat = "product:%d"
	productCacheTTL       = 10 * time.Minute
)

// Service handles catalog business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new product service. The Redis client is optional;
// without it product reads skip the cache and hit the database directly.
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// ProductListRequest represents catalog list query parameters
type ProductListRequest struct {
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=10"`
	Query    string `form:"q"`
	Category string `form:"category"` // Comma-separated list
	Size     string `form:"size"`
	MinPrice int64  `form:"min_price"`
	MaxPrice int64  `form:"max_price"`
}

// ProductListResponse represents products with pagination
type ProductListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// ListProducts retrieves products with filtering and pagination
func (s *Service) ListProducts(ctx context.Context, req *ProductListRequest) (*ProductListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 10
	}

	var products []Product
	var total int64

	query := s.db.WithContext(ctx).Model(&Product{})

	if req.Query != "" {
		search := "%" + strings.ToLower(req.Query) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", search, search)
	}

	if req.Category != "" {
		categories := strings.Split(req.Category, ",")
		for i := range categories {
			categories[i] = strings.TrimSpace(categories[i])
		}
		query = query.Where("category IN ?", categories)
	}

	if req.Size != "" {
		// Sizes are stored comma-separated; bracket with commas so "S"
		// cannot match inside another token.
		query = query.Where("(',' || sizes || ',') LIKE ?", "%,"+req.Size+",%")
	}

	if req.MinPrice > 0 {
		query = query.Where("price >= ?", req.MinPrice)
	}

	if req.MaxPrice > 0 {
		query = query.Where("price <= ?", req.MaxPrice)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	pagination := Pagination{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		HasPrev:    req.Page > 1,
	}

	return &ProductListResponse{
		Products:   products,
		Pagination: pagination,
	}, nil
}

// GetProduct retrieves a single product by ID, consulting the cache first.
func (s *Service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	if cached := s.getCached(ctx, id); cached != nil {
		return cached, nil
	}

	var product Product
	result := s.db.WithContext(ctx).Where("id = ?", id).First(&product)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	s.setCached(ctx, &product)

	return &product, nil
}

func (s *Service) getCached(ctx context.Context, id uint) *Product {
	if s.redisClient == nil {
		return nil
	}

	key := fmt.Sprintf(productCacheKeyFormat, id)
	data, err := s.redisClient.Get(ctx, key).Result()
	if err != nil {
		// Cache miss or Redis down, fall through to the database either way.
		return nil
	}

	var product Product
	if err := json.Unmarshal([]byte(data), &product); err != nil {
		return nil
	}
	return &product
}

func (s *Service) setCached(ctx context.Context, product *Product) {
	if s.redisClient == nil {
		return
	}

	data, err := json.Marshal(product)
	if err != nil {
		return
	}

	key := fmt.Sprintf(productCacheKeyFormat, product.ID)
	s.redisClient.Set(ctx, key, data, productCacheTTL)
}

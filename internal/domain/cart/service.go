// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Anand95733/clothify-backend/internal/config"
	"github.com/Anand95733/clothify-backend/internal/domain/product"
	"github.com/Anand95733/clothify-backend/internal/pkg/apperror"
)

// Service handles cart business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a new cart service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		logger: logger,
	}
}

// AddToCartRequest represents a request to add an item to the cart
type AddToCartRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents a request to change a line's quantity
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// CartItemResponse is one line of a cart as returned to clients.
// UnitPrice and LineTotal always reflect the live catalog price.
type CartItemResponse struct {
	ID        uint             `json:"id"`
	ProductID uint             `json:"product_id"`
	Size      string           `json:"size"`
	Quantity  int              `json:"quantity"`
	UnitPrice int64            `json:"unit_price"`
	LineTotal int64            `json:"line_total"`
	Product   *product.Product `json:"product,omitempty"`
}

// CartTotals summarizes a cart
type CartTotals struct {
	ItemCount     int   `json:"item_count"`
	TotalQuantity int   `json:"total_quantity"`
	SubTotal      int64 `json:"sub_total"`
}

// CartResponse represents a cart as returned to clients. CartID carries
// the guest token for guest carts and is omitted for account carts.
type CartResponse struct {
	CartID string             `json:"cart_id,omitempty"`
	UserID *uint              `json:"user_id,omitempty"`
	Items  []CartItemResponse `json:"items"`
	Totals CartTotals         `json:"totals"`
}

// GetCart returns the cart addressed by identity. An identity with no
// cart yet gets an empty response rather than an error, so clients never
// have to special-case first contact.
func (s *Service) GetCart(ctx context.Context, identity Identity) (*CartResponse, error) {
	c, err := s.findCart(ctx, s.db, identity)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return emptyCartResponse(identity), nil
	}
	return s.buildCartResponse(ctx, c)
}

// AddItem adds quantity units of (product, size) to the identity's cart,
// creating the cart lazily. For a guest with no token yet a fresh token
// is minted; the caller must surface the returned CartID to the client.
func (s *Service) AddItem(ctx context.Context, identity Identity, req *AddToCartRequest) (*CartResponse, error) {
	if req.Quantity < 1 {
		return nil, apperror.InvalidInput("quantity must be at least 1")
	}
	if req.Size == "" {
		return nil, apperror.InvalidInput("size is required")
	}

	var prod product.Product
	if err := s.db.WithContext(ctx).First(&prod, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, apperror.Internal(err)
	}
	if !prod.HasSize(req.Size) {
		return nil, apperror.InvalidInput("size %s is not offered for this product", req.Size)
	}

	c, err := s.findCart(ctx, s.db, identity)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c, identity, err = s.createCart(ctx, identity)
		if err != nil {
			return nil, err
		}
	}

	// Increment in place when the line already exists. The update runs
	// against the database value, not the loaded struct, so two
	// concurrent adds to the same line both land.
	res := s.db.WithContext(ctx).Model(&CartItem{}).
		Where("cart_id = ? AND product_id = ? AND size = ?", c.ID, req.ProductID, req.Size).
		Update("quantity", gorm.Expr("quantity + ?", req.Quantity))
	if res.Error != nil {
		return nil, apperror.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		item := CartItem{
			CartID:    c.ID,
			ProductID: req.ProductID,
			Size:      req.Size,
			Quantity:  req.Quantity,
		}
		if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
			return nil, apperror.Internal(err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"cart_id":    c.ID,
		"product_id": req.ProductID,
		"size":       req.Size,
		"quantity":   req.Quantity,
	}).Debug("Item added to cart")

	return s.getCartResponse(ctx, identity)
}

// UpdateItemQuantity sets (does not add to) a line's quantity.
func (s *Service) UpdateItemQuantity(ctx context.Context, identity Identity, itemID uint, req *UpdateCartItemRequest) (*CartResponse, error) {
	if req.Quantity < 1 {
		return nil, apperror.InvalidInput("quantity must be at least 1")
	}

	c, err := s.findCart(ctx, s.db, identity)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCartNotFound
	}

	res := s.db.WithContext(ctx).Model(&CartItem{}).
		Where("id = ? AND cart_id = ?", itemID, c.ID).
		Update("quantity", req.Quantity)
	if res.Error != nil {
		return nil, apperror.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrItemNotFound
	}

	return s.getCartResponse(ctx, identity)
}

// RemoveItem deletes a line from the cart. A missing cart is an error;
// a missing line is not, so retried removals stay idempotent.
func (s *Service) RemoveItem(ctx context.Context, identity Identity, itemID uint) (*CartResponse, error) {
	c, err := s.findCart(ctx, s.db, identity)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCartNotFound
	}

	if err := s.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, c.ID).
		Delete(&CartItem{}).Error; err != nil {
		return nil, apperror.Internal(err)
	}

	return s.getCartResponse(ctx, identity)
}

// FindCartWithItems loads the cart addressed by identity, items included,
// or nil when no such cart exists. Used by checkout, which needs the raw
// rows rather than a client-facing response.
func (s *Service) FindCartWithItems(ctx context.Context, identity Identity) (*Cart, error) {
	return s.findCart(ctx, s.db, identity)
}

// DeleteCart removes a cart and its items inside the given transaction.
func (s *Service) DeleteCart(tx *gorm.DB, cartID uint) error {
	if err := tx.Where("cart_id = ?", cartID).Delete(&CartItem{}).Error; err != nil {
		return apperror.Internal(err)
	}
	if err := tx.Delete(&Cart{}, cartID).Error; err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *Service) findCart(ctx context.Context, db *gorm.DB, identity Identity) (*Cart, error) {
	query := db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("cart_items.id ASC")
	})

	switch {
	case identity.UserID != nil:
		query = query.Where("user_id = ?", *identity.UserID)
	case identity.GuestToken != "":
		query = query.Where("guest_token = ?", identity.GuestToken)
	default:
		return nil, nil
	}

	var c Cart
	if err := query.First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.Internal(err)
	}
	return &c, nil
}

// createCart lazily creates a cart for identity, minting a guest token
// when the caller has neither a user nor a token. Returns the identity
// the caller must use from here on.
func (s *Service) createCart(ctx context.Context, identity Identity) (*Cart, Identity, error) {
	c := Cart{}
	switch {
	case identity.UserID != nil:
		c.UserID = identity.UserID
	case identity.GuestToken != "":
		token := identity.GuestToken
		c.GuestToken = &token
	default:
		token, err := NewGuestToken()
		if err != nil {
			return nil, identity, apperror.Internal(err)
		}
		c.GuestToken = &token
		identity = ForGuest(token)
	}

	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, identity, apperror.Internal(err)
	}

	s.logger.WithField("cart_id", c.ID).Debug("Cart created")
	return &c, identity, nil
}

func (s *Service) getCartResponse(ctx context.Context, identity Identity) (*CartResponse, error) {
	c, err := s.findCart(ctx, s.db, identity)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return emptyCartResponse(identity), nil
	}
	return s.buildCartResponse(ctx, c)
}

func (s *Service) buildCartResponse(ctx context.Context, c *Cart) (*CartResponse, error) {
	resp := &CartResponse{
		UserID: c.UserID,
		Items:  make([]CartItemResponse, 0, len(c.Items)),
	}
	if c.GuestToken != nil {
		resp.CartID = *c.GuestToken
	}

	products, err := s.loadProducts(ctx, c.Items)
	if err != nil {
		return nil, err
	}

	for _, item := range c.Items {
		line := CartItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Size:      item.Size,
			Quantity:  item.Quantity,
		}
		if prod, ok := products[item.ProductID]; ok {
			line.Product = prod
			line.UnitPrice = prod.Price
			line.LineTotal = prod.Price * int64(item.Quantity)
		}
		resp.Items = append(resp.Items, line)
		resp.Totals.ItemCount++
		resp.Totals.TotalQuantity += item.Quantity
		resp.Totals.SubTotal += line.LineTotal
	}
	return resp, nil
}

// loadProducts fetches the catalog rows for a cart in one query. Lines
// whose product has since been removed keep a nil Product and price zero.
func (s *Service) loadProducts(ctx context.Context, items []CartItem) (map[uint]*product.Product, error) {
	if len(items) == 0 {
		return map[uint]*product.Product{}, nil
	}
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	var products []product.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, apperror.Internal(err)
	}

	byID := make(map[uint]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return byID, nil
}

func emptyCartResponse(identity Identity) *CartResponse {
	resp := &CartResponse{
		UserID: identity.UserID,
		Items:  []CartItemResponse{},
	}
	if identity.UserID == nil {
		resp.CartID = identity.GuestToken
	}
	return resp
}

// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Anand95733/clothify-backend/internal/config"
	"github.com/Anand95733/clothify-backend/internal/domain/cart"
	"github.com/Anand95733/clothify-backend/internal/domain/product"
	"github.com/Anand95733/clothify-backend/internal/domain/user"
	"github.com/Anand95733/clothify-backend/internal/pkg/apperror"
	"github.com/Anand95733/clothify-backend/internal/pkg/email"
	"github.com/Anand95733/clothify-backend/internal/pkg/notify"
)

// ConfirmationSender delivers order confirmation emails. Satisfied by
// email.EmailService; tests substitute a fake.
type ConfirmationSender interface {
	SendOrderConfirmation(ctx context.Context, to string, data email.OrderConfirmationData) error
}

// Service handles order business logic
type Service struct {
	db          *gorm.DB
	cartService *cart.Service
	config      *config.Config
	logger      *logrus.Logger
	mailer      ConfirmationSender
	dispatcher  *notify.Dispatcher
}

// NewService creates a new order service. Mailer and dispatcher may be
// nil, in which case confirmations are skipped.
func NewService(db *gorm.DB, cartService *cart.Service, cfg *config.Config, logger *logrus.Logger, mailer ConfirmationSender, dispatcher *notify.Dispatcher) *Service {
	return &Service{
		db:          db,
		cartService: cartService,
		config:      cfg,
		logger:      logger,
		mailer:      mailer,
		dispatcher:  dispatcher,
	}
}

// CheckoutRequest represents a checkout submission. Email is required
// for guests and ignored for logged-in users, whose account email wins.
type CheckoutRequest struct {
	Email string `json:"email" binding:"omitempty,email"`
}

// Checkout converts the identity's cart into an order. Every line is
// repriced against the live catalog; if any product has disappeared the
// whole checkout fails rather than silently shipping a partial order.
// Order creation and cart deletion commit together, so the cart can
// never be spent twice. Payment is captured inline (single simulated
// provider), so the order is marked paid immediately.
func (s *Service) Checkout(ctx context.Context, identity cart.Identity, req *CheckoutRequest) (*Order, error) {
	c, err := s.cartService.FindCartWithItems(ctx, identity)
	if err != nil {
		return nil, err
	}
	if c == nil || len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}

	toEmail, err := s.resolveEmail(ctx, identity, req)
	if err != nil {
		return nil, err
	}

	products, err := s.loadProductsStrict(ctx, c.Items)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := Order{
		UserID: c.UserID,
		IsPaid: true,
		PaidAt: &now,
	}
	if c.UserID == nil {
		order.GuestEmail = toEmail
	}
	for _, item := range c.Items {
		prod := products[item.ProductID]
		order.Items = append(order.Items, OrderItem{
			ProductID: item.ProductID,
			Name:      prod.Name,
			ImageURL:  prod.ImageURL,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: prod.Price,
		})
		order.TotalPrice += prod.Price * int64(item.Quantity)
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperror.Internal(tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, apperror.Internal(fmt.Errorf("failed to create order: %w", err))
	}

	order.OrderNumber = s.generateOrderNumber(order.ID)
	if err := tx.Model(&order).Update("order_number", order.OrderNumber).Error; err != nil {
		tx.Rollback()
		return nil, apperror.Internal(fmt.Errorf("failed to update order number: %w", err))
	}

	if err := s.cartService.DeleteCart(tx, c.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to commit order: %w", err))
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total_price":  order.TotalPrice,
	}).Info("Order placed")

	s.sendConfirmation(&order, toEmail)

	return &order, nil
}

// GetOrder returns one order, scoped to whoever may see it. Logged-in
// users read their own orders; a guest order is read back with the email
// it was placed under, which is how the confirmation page fetches it.
// Any mismatch reads as not-found so order IDs stay unguessable.
func (s *Service) GetOrder(ctx context.Context, userID *uint, orderID uint, guestEmail string) (*Order, error) {
	var order Order
	err := s.db.WithContext(ctx).Preload("Items").First(&order, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, apperror.Internal(err)
	}

	if order.UserID != nil {
		if userID == nil || *userID != *order.UserID {
			return nil, ErrOrderNotFound
		}
		return &order, nil
	}
	if guestEmail == "" || !strings.EqualFold(guestEmail, order.GuestEmail) {
		return nil, ErrOrderNotFound
	}
	return &order, nil
}

// ListOrders returns the user's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, userID uint) ([]Order, error) {
	var orders []Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return orders, nil
}

func (s *Service) resolveEmail(ctx context.Context, identity cart.Identity, req *CheckoutRequest) (string, error) {
	if identity.UserID != nil {
		var u user.User
		if err := s.db.WithContext(ctx).First(&u, *identity.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", apperror.NotFound("user not found")
			}
			return "", apperror.Internal(err)
		}
		return u.Email, nil
	}
	if req.Email == "" {
		return "", ErrEmailRequired
	}
	return req.Email, nil
}

// loadProductsStrict fetches live catalog rows for every cart line and
// fails if any referenced product has been removed.
func (s *Service) loadProductsStrict(ctx context.Context, items []cart.CartItem) (map[uint]*product.Product, error) {
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
	for _, item := range items {
		if _, ok := byID[item.ProductID]; !ok {
			return nil, apperror.NotFound("product %d is no longer available", item.ProductID)
		}
	}
	return byID, nil
}

// sendConfirmation queues the confirmation email after the order has
// committed. Delivery problems are the dispatcher's to log; the placed
// order is never affected.
func (s *Service) sendConfirmation(order *Order, toEmail string) {
	if s.mailer == nil || s.dispatcher == nil || toEmail == "" {
		return
	}

	data := email.OrderConfirmationData{
		OrderNumber: order.OrderNumber,
		OrderDate:   order.CreatedAt.Format("January 2, 2006"),
		TotalPrice:  order.TotalPrice,
	}
	for _, item := range order.Items {
		data.Items = append(data.Items, email.OrderLine{
			Name:      item.Name,
			Size:      item.Size,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice,
			LineTotal: item.LineTotal(),
		})
	}

	orderNumber := order.OrderNumber
	s.dispatcher.Dispatch("order_confirmation", func(ctx context.Context) error {
		if err := s.mailer.SendOrderConfirmation(ctx, toEmail, data); err != nil {
			return fmt.Errorf("order %s: %w", orderNumber, err)
		}
		return nil
	})
}

func (s *Service) generateOrderNumber(orderID uint) string {
	// Format: ORD-YYYYMMDD-XXXXX
	return fmt.Sprintf("ORD-%s-%05d", time.Now().Format("20060102"), orderID)
}

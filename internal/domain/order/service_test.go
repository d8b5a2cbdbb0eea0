package order

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Anand95733/clothify-backend/internal/config"
	"github.com/Anand95733/clothify-backend/internal/domain/cart"
	"github.com/Anand95733/clothify-backend/internal/domain/product"
	"github.com/Anand95733/clothify-backend/internal/domain/user"
	"github.com/Anand95733/clothify-backend/internal/pkg/email"
	"github.com/Anand95733/clothify-backend/internal/pkg/notify"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentConfirmation
}

type sentConfirmation struct {
	to   string
	data email.OrderConfirmationData
}

func (f *fakeMailer) SendOrderConfirmation(_ context.Context, to string, data email.OrderConfirmationData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentConfirmation{to: to, data: data})
	return nil
}

func (f *fakeMailer) Sent() []sentConfirmation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentConfirmation(nil), f.sent...)
}

type orderTestEnv struct {
	db          *gorm.DB
	cartService *cart.Service
	service     *Service
	mailer      *fakeMailer
	dispatcher  *notify.Dispatcher
}

func setupOrderTest(t *testing.T) *orderTestEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&user.User{}, &product.Product{}, &cart.Cart{}, &cart.CartItem{}, &Order{}, &OrderItem{})
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{}
	cartService := cart.NewService(db, cfg, logger)
	mailer := &fakeMailer{}
	dispatcher := notify.NewDispatcher(logger, 8)
	t.Cleanup(dispatcher.Close)

	return &orderTestEnv{
		db:          db,
		cartService: cartService,
		service:     NewService(db, cartService, cfg, logger, mailer, dispatcher),
		mailer:      mailer,
		dispatcher:  dispatcher,
	}
}

func (e *orderTestEnv) seedProduct(t *testing.T, name string, price int64) product.Product {
	p := product.Product{Name: name, Price: price, Category: product.CategoryMen, Sizes: "S,M,L"}
	require.NoError(t, e.db.Create(&p).Error)
	return p
}

func (e *orderTestEnv) seedUser(t *testing.T, emailAddr string) user.User {
	u := user.User{Email: emailAddr, PasswordHash: "x", IsActive: true}
	require.NoError(t, e.db.Create(&u).Error)
	return u
}

func TestCheckout_EmptyCart(t *testing.T) {
	env := setupOrderTest(t)
	ctx := context.Background()

	t.Run("no cart at all", func(t *testing.T) {
		_, err := env.service.Checkout(ctx, cart.ForGuest("deadbeef"), &CheckoutRequest{Email: "g@example.com"})
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("cart with no lines", func(t *testing.T) {
		u := env.seedUser(t, "empty@example.com")
		p := env.seedProduct(t, "Classic Tee", 1999)

		resp, err := env.cartService.AddItem(ctx, cart.ForUser(u.ID), &cart.AddToCartRequest{ProductID: p.ID, Size: "M", Quantity: 1})
		require.NoError(t, err)
		_, err = env.cartService.RemoveItem(ctx, cart.ForUser(u.ID), resp.Items[0].ID)
		require.NoError(t, err)

		_, err = env.service.Checkout(ctx, cart.ForUser(u.ID), &CheckoutRequest{})
		assert.ErrorIs(t, err, ErrEmptyCart)
	})
}

func TestCheckout_GuestRequiresEmail(t *testing.T) {
	env := setupOrderTest(t)
	ctx := context.Background()
	p := env.seedProduct(t, "Classic Tee", 1999)

	resp, err := env.cartService.AddItem(ctx, cart.Identity{}, &cart.AddToCartRequest{ProductID: p.ID, Size: "M", Quantity: 1})
	require.NoError(t, err)

	_, err = env.service.Checkout(ctx, cart.ForGuest(resp.CartID), &CheckoutRequest{})
	assert.ErrorIs(t, err, ErrEmailRequired)
}

func TestCheckout_PlacesOrder(t *testing.T) {
	env := setupOrderTest(t)
	ctx := context.Background()
	u := env.seedUser(t, "buyer@example.com")
	tee := env.seedProduct(t, "Classic Tee", 1999)
	jeans := env.seedProduct(t, "Slim Jeans", 5499)

	_, err := env.cartService.AddItem(ctx, cart.ForUser(u.ID), &cart.AddToCartRequest{ProductID: tee.ID, Size: "M", Quantity: 2})
	require.NoError(t, err)
	_, err = env.cartService.AddItem(ctx, cart.ForUser(u.ID), &cart.AddToCartRequest{ProductID: jeans.ID, Size: "S", Quantity: 1})
	require.NoError(t, err)

	placed, err := env.service.Checkout(ctx, cart.ForUser(u.ID), &CheckoutRequest{})
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("ORD-%s-%05d", time.Now().Format("20060102"), placed.ID), placed.OrderNumber)
	assert.Equal(t, int64(2*1999+5499), placed.TotalPrice)
	assert.True(t, placed.IsPaid)
	assert.NotNil(t, placed.PaidAt)
	require.Len(t, placed.Items, 2)
	assert.Equal(t, "Classic Tee", placed.Items[0].Name)
	assert.Equal(t, int64(1999), placed.Items[0].UnitPrice)

	// Cart is consumed by the purchase
	after, err := env.cartService.GetCart(ctx, cart.ForUser(u.ID))
	require.NoError(t, err)
	assert.Empty(t, after.Items)

	// Checking out again finds nothing to buy
	_, err = env.service.Checkout(ctx, cart.ForUser(u.ID), &CheckoutRequest{})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_UsesLivePrices(t *testing.T) {
	env := setupOrderTest(t)
	ctx := context.Background()
	u := env.seedUser(t, "buyer@example.com")
	tee := env.seedProduct(t, "Classic Tee", 1999)

	_, err := env.cartService.AddItem(ctx, cart.ForUser(u.ID), &cart.AddToCartRequest{ProductID: tee.ID, Size: "M", Quantity: 2})
	require.NoError(t, err)

	// Price changes while the item sits in the cart
	require.NoError(t, env.db.Model(&tee).Update("price", 2499).Error)

	placed, err := env.service.Checkout(ctx, cart.ForUser(u.ID), &CheckoutRequest{})
	require.NoError(t, err)

	assert.Equal(t, int64(2*2499), placed.TotalPrice)
	assert.Equal(t, int64(2499), placed.Items[0].UnitPrice)
}

// Once the order has committed, catalog edits must not reach into it:
// the snapshot keeps the name and price the shopper actually paid.
func TestCheckout_SnapshotSurvivesCatalogChanges(t *testing.T) {
	env := setupOrderTest(t)
	ctx := context.Background()
	u := env.seedUser(t, "buyer@example.com")
	tee := env.seedProduct(t, "Classic Tee", 1999)

	_, err := env.cartService.AddItem(ctx, cart.ForUser(u.ID), &cart.AddToCartRequest{ProductID: tee.ID, Size: "M", Quantity: 2})
	require.NoError(t, err)

	placed, err := env.service.Checkout(ctx, cart.ForUser(u.ID), &CheckoutRequest{})
	require.NoError(t, err)

	// The product is repriced and renamed after the sale
	require.NoError(t, env.db.Model(&tee).Updates(map[string]interface{}{
		"price": 2999,
		"name":  "Heritage Tee",
	}).Error)

	got, err := env.service.GetOrder(ctx, &u.ID, placed.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2*1999), got.TotalPrice)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(1999), got.Items[0].UnitPrice)
	assert.Equal(t, "Classic Tee", got.Items[0].Name)
}

func TestCheckout_VanishedProductFailsWholeOrder(t *testing.T) {
	env := setupOrderTest(t)
	ctx := context.Background()
	u := env.seedUser(t, "buyer@example.com")
	tee := env.seedProduct(t, "Classic Tee", 1999)
	jeans := env.seedProduct(t, "Slim Jeans", 5499)

	_, err := env.cartService.AddItem(ctx, cart.ForUser(u.ID), &cart.AddToCartRequest{ProductID: tee.ID, Size: "M", Quantity: 1})
	require.NoError(t, err)
	_, err = env.cartService.AddItem(ctx, cart.ForUser(u.ID), &cart.AddToCartRequest{ProductID: jeans.ID, Size: "S", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, env.db.Unscoped().Delete(&jeans).Error)

	_, err = env.service.Checkout(ctx, cart.ForUser(u.ID), &CheckoutRequest{})
	require.Error(t, err)

	// Nothing was partially ordered and the cart survives untouched
	var orderCount int64
	env.db.Model(&Order{}).Count(&orderCount)
	assert.Zero(t, orderCount)

	after, err := env.cartService.GetCart(ctx, cart.ForUser(u.ID))
	require.NoError(t, err)
	assert.Len(t, after.Items, 2)
}

func TestCheckout_SendsConfirmationEmail(t *testing.T) {
	env := setupOrderTest(t)
	ctx := context.Background()
	p := env.seedProduct(t, "Classic Tee", 1999)

	resp, err := env.cartService.AddItem(ctx, cart.Identity{}, &cart.AddToCartRequest{ProductID: p.ID, Size: "M", Quantity: 2})
	require.NoError(t, err)

	placed, err := env.service.Checkout(ctx, cart.ForGuest(resp.CartID), &CheckoutRequest{Email: "guest@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "guest@example.com", placed.GuestEmail)

	// Close drains the queue so the assertion below is deterministic
	env.dispatcher.Close()

	sent := env.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "guest@example.com", sent[0].to)
	assert.Equal(t, placed.OrderNumber, sent[0].data.OrderNumber)
	assert.Equal(t, placed.TotalPrice, sent[0].data.TotalPrice)
	require.Len(t, sent[0].data.Items, 1)
	assert.Equal(t, int64(2*1999), sent[0].data.Items[0].LineTotal)
}

func TestGetOrder_Ownership(t *testing.T) {
	env := setupOrderTest(t)
	ctx := context.Background()
	u := env.seedUser(t, "buyer@example.com")
	other := env.seedUser(t, "other@example.com")
	p := env.seedProduct(t, "Classic Tee", 1999)

	_, err := env.cartService.AddItem(ctx, cart.ForUser(u.ID), &cart.AddToCartRequest{ProductID: p.ID, Size: "M", Quantity: 1})
	require.NoError(t, err)
	placed, err := env.service.Checkout(ctx, cart.ForUser(u.ID), &CheckoutRequest{})
	require.NoError(t, err)

	t.Run("owner can read", func(t *testing.T) {
		got, err := env.service.GetOrder(ctx, &u.ID, placed.ID, "")
		require.NoError(t, err)
		assert.Equal(t, placed.OrderNumber, got.OrderNumber)
		require.Len(t, got.Items, 1)
	})

	t.Run("other user cannot", func(t *testing.T) {
		_, err := env.service.GetOrder(ctx, &other.ID, placed.ID, "")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("anonymous caller cannot", func(t *testing.T) {
		_, err := env.service.GetOrder(ctx, nil, placed.ID, "buyer@example.com")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestGetOrder_GuestByEmail(t *testing.T) {
	env := setupOrderTest(t)
	ctx := context.Background()
	p := env.seedProduct(t, "Classic Tee", 1999)

	resp, err := env.cartService.AddItem(ctx, cart.Identity{}, &cart.AddToCartRequest{ProductID: p.ID, Size: "M", Quantity: 1})
	require.NoError(t, err)
	placed, err := env.service.Checkout(ctx, cart.ForGuest(resp.CartID), &CheckoutRequest{Email: "guest@example.com"})
	require.NoError(t, err)

	t.Run("matching email reads the order back", func(t *testing.T) {
		got, err := env.service.GetOrder(ctx, nil, placed.ID, "guest@example.com")
		require.NoError(t, err)
		assert.Equal(t, placed.OrderNumber, got.OrderNumber)
		require.Len(t, got.Items, 1)
	})

	t.Run("email comparison is case-insensitive", func(t *testing.T) {
		_, err := env.service.GetOrder(ctx, nil, placed.ID, "Guest@Example.COM")
		require.NoError(t, err)
	})

	t.Run("wrong email cannot", func(t *testing.T) {
		_, err := env.service.GetOrder(ctx, nil, placed.ID, "stranger@example.com")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("no email cannot", func(t *testing.T) {
		_, err := env.service.GetOrder(ctx, nil, placed.ID, "")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestListOrders(t *testing.T) {
	env := setupOrderTest(t)
	ctx := context.Background()
	u := env.seedUser(t, "buyer@example.com")
	p := env.seedProduct(t, "Classic Tee", 1999)

	for i := 0; i < 2; i++ {
		_, err := env.cartService.AddItem(ctx, cart.ForUser(u.ID), &cart.AddToCartRequest{ProductID: p.ID, Size: "M", Quantity: 1})
		require.NoError(t, err)
		_, err = env.service.Checkout(ctx, cart.ForUser(u.ID), &CheckoutRequest{})
		require.NoError(t, err)
	}

	orders, err := env.service.ListOrders(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

// Full storefront walk: a guest fills a cart, signs in, the carts merge,
// and checkout spends the combined cart.
func TestGuestToUserPurchaseFlow(t *testing.T) {
	env := setupOrderTest(t)
	ctx := context.Background()
	u := env.seedUser(t, "shopper@example.com")
	tee := env.seedProduct(t, "Classic Tee", 1999)
	jeans := env.seedProduct(t, "Slim Jeans", 5499)

	// Shopping signed out
	guest, err := env.cartService.AddItem(ctx, cart.Identity{}, &cart.AddToCartRequest{ProductID: tee.ID, Size: "M", Quantity: 1})
	require.NoError(t, err)
	_, err = env.cartService.AddItem(ctx, cart.ForGuest(guest.CartID), &cart.AddToCartRequest{ProductID: jeans.ID, Size: "S", Quantity: 1})
	require.NoError(t, err)

	// The account already had a tee in the same size from last visit
	_, err = env.cartService.AddItem(ctx, cart.ForUser(u.ID), &cart.AddToCartRequest{ProductID: tee.ID, Size: "M", Quantity: 1})
	require.NoError(t, err)

	// Sign in
	require.NoError(t, env.cartService.MergeGuestCart(ctx, u.ID, guest.CartID))

	placed, err := env.service.Checkout(ctx, cart.ForUser(u.ID), &CheckoutRequest{})
	require.NoError(t, err)

	assert.Equal(t, int64(2*1999+5499), placed.TotalPrice)
	require.Len(t, placed.Items, 2)
	assert.Equal(t, &u.ID, placed.UserID)
	assert.Empty(t, placed.GuestEmail)

	// Both carts are gone
	var cartCount int64
	env.db.Model(&cart.Cart{}).Count(&cartCount)
	assert.Zero(t, cartCount)

	env.dispatcher.Close()
	sent := env.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "shopper@example.com", sent[0].to)
}

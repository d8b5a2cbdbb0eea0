package cart

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Anand95733/clothify-backend/internal/config"
	"github.com/Anand95733/clothify-backend/internal/domain/product"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&product.Product{}, &Cart{}, &CartItem{})
	require.NoError(t, err)

	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	db := setupCartTestDB(t)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return NewService(db, &config.Config{}, logger), db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price int64, sizes string) product.Product {
	p := product.Product{
		Name:     name,
		Price:    price,
		Category: product.CategoryMen,
		Sizes:    sizes,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestGetCart_NoCartYet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("guest without token gets empty cart", func(t *testing.T) {
		resp, err := svc.GetCart(ctx, Identity{})
		require.NoError(t, err)
		assert.Empty(t, resp.Items)
		assert.Empty(t, resp.CartID)
		assert.Zero(t, resp.Totals.SubTotal)
	})

	t.Run("unknown guest token gets empty cart", func(t *testing.T) {
		resp, err := svc.GetCart(ctx, ForGuest("deadbeef"))
		require.NoError(t, err)
		assert.Empty(t, resp.Items)
	})

	t.Run("user without cart gets empty cart", func(t *testing.T) {
		resp, err := svc.GetCart(ctx, ForUser(42))
		require.NoError(t, err)
		assert.Empty(t, resp.Items)
		assert.Empty(t, resp.CartID)
	})
}

func TestAddItem_MintsGuestToken(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Classic Tee", 1999, "S,M,L")

	resp, err := svc.AddItem(ctx, Identity{}, &AddToCartRequest{ProductID: p.ID, Size: "M", Quantity: 2})
	require.NoError(t, err)

	require.NotEmpty(t, resp.CartID)
	assert.Len(t, resp.CartID, 32)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Items[0].Quantity)
	assert.Equal(t, int64(1999), resp.Items[0].UnitPrice)
	assert.Equal(t, int64(3998), resp.Totals.SubTotal)

	// The minted token addresses the same cart on subsequent requests
	again, err := svc.GetCart(ctx, ForGuest(resp.CartID))
	require.NoError(t, err)
	require.Len(t, again.Items, 1)
	assert.Equal(t, resp.CartID, again.CartID)
}

func TestAddItem_ReusesExistingCart(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Classic Tee", 1999, "S,M,L")

	first, err := svc.AddItem(ctx, Identity{}, &AddToCartRequest{ProductID: p.ID, Size: "M", Quantity: 1})
	require.NoError(t, err)

	second, err := svc.AddItem(ctx, ForGuest(first.CartID), &AddToCartRequest{ProductID: p.ID, Size: "M", Quantity: 3})
	require.NoError(t, err)

	assert.Equal(t, first.CartID, second.CartID)

	var count int64
	db.Model(&Cart{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAddItem_LineIdentity(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Classic Tee", 1999, "S,M,L")

	t.Run("same product and size sums quantities", func(t *testing.T) {
		resp, err := svc.AddItem(ctx, ForUser(1), &AddToCartRequest{ProductID: p.ID, Size: "M", Quantity: 2})
		require.NoError(t, err)
		require.Len(t, resp.Items, 1)

		resp, err = svc.AddItem(ctx, ForUser(1), &AddToCartRequest{ProductID: p.ID, Size: "M", Quantity: 3})
		require.NoError(t, err)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, 5, resp.Items[0].Quantity)
	})

	t.Run("same product in another size is a separate line", func(t *testing.T) {
		resp, err := svc.AddItem(ctx, ForUser(1), &AddToCartRequest{ProductID: p.ID, Size: "L", Quantity: 1})
		require.NoError(t, err)
		assert.Len(t, resp.Items, 2)
	})
}

func TestAddItem_Validation(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Classic Tee", 1999, "S,M,L")

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.AddItem(ctx, Identity{}, &AddToCartRequest{ProductID: 9999, Size: "M", Quantity: 1})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("size not offered", func(t *testing.T) {
		_, err := svc.AddItem(ctx, Identity{}, &AddToCartRequest{ProductID: p.ID, Size: "XXL", Quantity: 1})
		assert.Error(t, err)
	})

	t.Run("zero quantity", func(t *testing.T) {
		_, err := svc.AddItem(ctx, Identity{}, &AddToCartRequest{ProductID: p.ID, Size: "M", Quantity: 0})
		assert.Error(t, err)
	})

	t.Run("failed add does not create a cart", func(t *testing.T) {
		var count int64
		db.Model(&Cart{}).Count(&count)
		assert.Zero(t, count)
	})
}

func TestUpdateItemQuantity(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Classic Tee", 1999, "S,M,L")

	resp, err := svc.AddItem(ctx, ForUser(7), &AddToCartRequest{ProductID: p.ID, Size: "S", Quantity: 2})
	require.NoError(t, err)
	itemID := resp.Items[0].ID

	t.Run("sets quantity instead of adding", func(t *testing.T) {
		updated, err := svc.UpdateItemQuantity(ctx, ForUser(7), itemID, &UpdateCartItemRequest{Quantity: 5})
		require.NoError(t, err)
		assert.Equal(t, 5, updated.Items[0].Quantity)
	})

	t.Run("missing line", func(t *testing.T) {
		_, err := svc.UpdateItemQuantity(ctx, ForUser(7), 9999, &UpdateCartItemRequest{Quantity: 1})
		assert.ErrorIs(t, err, ErrItemNotFound)
	})

	t.Run("missing cart", func(t *testing.T) {
		_, err := svc.UpdateItemQuantity(ctx, ForUser(8), itemID, &UpdateCartItemRequest{Quantity: 1})
		assert.ErrorIs(t, err, ErrCartNotFound)
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		_, err := svc.UpdateItemQuantity(ctx, ForUser(7), itemID, &UpdateCartItemRequest{Quantity: 0})
		assert.Error(t, err)
	})
}

func TestRemoveItem(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Classic Tee", 1999, "S,M,L")

	resp, err := svc.AddItem(ctx, ForUser(7), &AddToCartRequest{ProductID: p.ID, Size: "S", Quantity: 2})
	require.NoError(t, err)
	itemID := resp.Items[0].ID

	t.Run("missing cart", func(t *testing.T) {
		_, err := svc.RemoveItem(ctx, ForUser(8), itemID)
		assert.ErrorIs(t, err, ErrCartNotFound)
	})

	t.Run("removes the line", func(t *testing.T) {
		after, err := svc.RemoveItem(ctx, ForUser(7), itemID)
		require.NoError(t, err)
		assert.Empty(t, after.Items)
	})

	t.Run("removing an already removed line is a no-op", func(t *testing.T) {
		after, err := svc.RemoveItem(ctx, ForUser(7), itemID)
		require.NoError(t, err)
		assert.Empty(t, after.Items)
	})
}

func TestCartResponse_SkipsVanishedProductPrice(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Classic Tee", 1999, "S,M,L")

	resp, err := svc.AddItem(ctx, ForUser(1), &AddToCartRequest{ProductID: p.ID, Size: "M", Quantity: 1})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)

	require.NoError(t, db.Unscoped().Delete(&product.Product{}, p.ID).Error)

	resp, err = svc.GetCart(ctx, ForUser(1))
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Nil(t, resp.Items[0].Product)
	assert.Zero(t, resp.Items[0].UnitPrice)
	assert.Zero(t, resp.Totals.SubTotal)
}

func TestNewGuestToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := NewGuestToken()
		require.NoError(t, err)
		assert.Len(t, token, 32)
		assert.False(t, seen[token], "tokens must not repeat")
		seen[token] = true
	}
}

// internal/domain/order/errors.go
package order

import (
	"net/http"

	"github.com/Anand95733/clothify-backend/internal/pkg/apperror"
)

var (
	// ErrEmptyCart is returned when checkout finds no purchasable lines
	ErrEmptyCart = apperror.New(apperror.CodeEmptyCart, "cart is empty", http.StatusConflict)
	// ErrOrderNotFound is returned when an order does not exist or is not owned by the caller
	ErrOrderNotFound = apperror.NotFound("order not found")
	// ErrEmailRequired is returned when a guest checks out without an email address
	ErrEmailRequired = apperror.InvalidInput("email is required for guest checkout")
)

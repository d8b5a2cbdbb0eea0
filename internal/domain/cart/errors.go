// internal/domain/cart/errors.go
package cart

import "github.com/Anand95733/clothify-backend/internal/pkg/apperror"

var (
	// ErrCartNotFound is returned when an identity addresses no cart
	ErrCartNotFound = apperror.NotFound("cart not found")
	// ErrItemNotFound is returned when a line is missing from the cart
	ErrItemNotFound = apperror.NotFound("item not found in cart")
	// ErrProductNotFound is returned when the referenced product does not exist
	ErrProductNotFound = apperror.NotFound("product not found")
)

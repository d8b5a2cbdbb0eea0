// internal/domain/cart/identity.go
package cart

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const guestTokenBytes = 16

// Identity names the owner of a cart for the duration of one request.
// When UserID is set the request acts on the account cart and GuestToken
// is ignored; otherwise GuestToken (possibly empty) selects a guest cart.
type Identity struct {
	UserID     *uint
	GuestToken string
}

// IsAuthenticated reports whether the identity belongs to a logged-in user.
func (id Identity) IsAuthenticated() bool {
	return id.UserID != nil
}

// IsZero reports whether the identity can address no cart at all.
func (id Identity) IsZero() bool {
	return id.UserID == nil && id.GuestToken == ""
}

// ForUser returns an identity for the given account.
func ForUser(userID uint) Identity {
	return Identity{UserID: &userID}
}

// ForGuest returns an identity for the given guest token.
func ForGuest(token string) Identity {
	return Identity{GuestToken: token}
}

// NewGuestToken mints an unguessable token for a new guest cart.
func NewGuestToken() (string, error) {
	buf := make([]byte, guestTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate guest token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

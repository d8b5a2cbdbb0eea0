// internal/domain/cart/merge.go
package cart

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Anand95733/clothify-backend/internal/pkg/apperror"
)

// MergeGuestCart folds the guest cart identified by guestToken into the
// account cart of userID. Quantities of matching (product, size) lines
// are summed, other lines move across, and the guest cart ceases to
// exist. A missing or already-consumed guest token is a no-op, which
// makes the call safe to repeat.
func (s *Service) MergeGuestCart(ctx context.Context, userID uint, guestToken string) error {
	if guestToken == "" {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var guestCart Cart
		if err := tx.Preload("Items").Where("guest_token = ?", guestToken).First(&guestCart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		var userCart Cart
		err := tx.Preload("Items").Where("user_id = ?", userID).First(&userCart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No account cart yet: adopt the guest cart wholesale by
			// re-keying it, without touching its lines.
			return tx.Model(&guestCart).Updates(map[string]interface{}{
				"user_id":     userID,
				"guest_token": nil,
			}).Error
		}
		if err != nil {
			return err
		}

		userLines := make(map[lineKey]uint, len(userCart.Items))
		for _, item := range userCart.Items {
			userLines[lineKey{item.ProductID, item.Size}] = item.ID
		}

		for _, item := range guestCart.Items {
			if id, ok := userLines[lineKey{item.ProductID, item.Size}]; ok {
				if err := tx.Model(&CartItem{}).Where("id = ?", id).
					Update("quantity", gorm.Expr("quantity + ?", item.Quantity)).Error; err != nil {
					return err
				}
				continue
			}
			moved := CartItem{
				CartID:    userCart.ID,
				ProductID: item.ProductID,
				Size:      item.Size,
				Quantity:  item.Quantity,
			}
			if err := tx.Create(&moved).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("cart_id = ?", guestCart.ID).Delete(&CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Cart{}, guestCart.ID).Error
	})
	if err != nil {
		return apperror.DependencyFailure(err, "cart merge failed")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
	}).Info("Guest cart merged")
	return nil
}

type lineKey struct {
	productID uint
	size      string
}

// ReplayMerge is the degraded path used when MergeGuestCart fails: it
// replays the guest cart line by line through AddItem, skipping lines
// that no longer validate, then discards the guest cart. Unlike
// MergeGuestCart it is not atomic, so a crash mid-replay can leave a
// partially merged cart, which is still better than losing it entirely.
func (s *Service) ReplayMerge(ctx context.Context, userID uint, guestToken string) error {
	if guestToken == "" {
		return nil
	}

	guestCart, err := s.findCart(ctx, s.db, ForGuest(guestToken))
	if err != nil {
		return err
	}
	if guestCart == nil {
		return nil
	}

	identity := ForUser(userID)
	for _, item := range guestCart.Items {
		req := &AddToCartRequest{
			ProductID: item.ProductID,
			Size:      item.Size,
			Quantity:  item.Quantity,
		}
		if _, err := s.AddItem(ctx, identity, req); err != nil {
			s.logger.WithFields(logrus.Fields{
				"user_id":    userID,
				"product_id": item.ProductID,
				"size":       item.Size,
			}).WithError(err).Warn("Skipping cart line during merge replay")
		}
	}

	if err := s.DeleteCart(s.db.WithContext(ctx), guestCart.ID); err != nil {
		s.logger.WithError(err).Warn("Failed to discard guest cart after replay")
	}
	return nil
}
